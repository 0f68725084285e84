// Package log 提供了一个通用的日志接口和基于zap的实现
// 支持分级日志、结构化字段与文件轮转
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	logconfig "github.com/weisyn/oreminer/internal/config/log"
	logInterface "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
)

// 日志级别定义
const (
	DebugLevel = string(logInterface.DebugLevel)
	InfoLevel  = string(logInterface.InfoLevel)
	WarnLevel  = string(logInterface.WarnLevel)
	ErrorLevel = string(logInterface.ErrorLevel)
	FatalLevel = string(logInterface.FatalLevel)
)

var (
	// 全局日志实例
	globalLogger logInterface.Logger
	mu           sync.RWMutex
)

// Logger 是日志记录器的结构体，实现了log.Logger接口
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

var _ logInterface.Logger = (*Logger)(nil)

func init() {
	ResetDefault()
}

// ResetDefault 重置全局日志记录器为默认配置
func ResetDefault() {
	logger, err := New(logconfig.New(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize default logger: %v\n", err)
		return
	}
	SetLogger(logger)
}

// createFileWriter 创建带轮转的日志文件写入器
func createFileWriter(logPath string, opts *logconfig.LogOptions) zapcore.WriteSyncer {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "创建日志目录失败 %s: %v\n", logDir, err)
		return zapcore.AddSync(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    opts.MaxSize, // megabytes
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge, // days
		Compress:   opts.Compress,
	})
}

// New 根据配置创建新的日志记录器
//
// 控制台使用可读编码，文件使用 JSON 编码；FilePath 为 "stdout"/"stderr" 时只输出到对应流。
func New(config *logconfig.Config) (logInterface.Logger, error) {
	opts := config.GetOptions()
	level := zap.NewAtomicLevelAt(config.ZapLevel())
	outputPath := opts.FilePath

	var cores []zapcore.Core
	switch {
	case outputPath == "stderr":
		cores = append(cores, zapcore.NewCore(config.ConsoleEncoder(), zapcore.AddSync(os.Stderr), level))
	case outputPath == "stdout" || opts.ToConsole:
		cores = append(cores, zapcore.NewCore(config.ConsoleEncoder(), zapcore.AddSync(os.Stdout), level))
	}

	if outputPath != "" && outputPath != "stdout" && outputPath != "stderr" {
		absPath, err := filepath.Abs(outputPath)
		if err != nil {
			return nil, fmt.Errorf("获取日志文件绝对路径失败: %w", err)
		}
		cores = append(cores, zapcore.NewCore(config.FileEncoder(), createFileWriter(absPath, opts), level))
	}

	var zapOptions []zap.Option
	if opts.EnableCaller {
		// 跳过封装层，使调用位置指向业务代码
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if opts.EnableStacktrace {
		zapOptions = append(zapOptions, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zapOptions...)
	return &Logger{zapLogger: zapLogger, sugar: zapLogger.Sugar()}, nil
}

// NewFromZap 包装已有的 zap 记录器（测试中常配合 zaptest/observer 使用）
func NewFromZap(z *zap.Logger) logInterface.Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{zapLogger: z, sugar: z.Sugar()}
}

// NewNop 返回丢弃全部输出的记录器
func NewNop() logInterface.Logger { return NewFromZap(zap.NewNop()) }

// GetZapLogger 获取底层的zap日志记录器
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zapLogger
}

// SetLogger 设置全局日志记录器
func SetLogger(logger logInterface.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
}

// GetLogger 获取全局日志记录器
func GetLogger() logInterface.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// ==================== 全局日志函数 ====================

// Debug 记录调试级别的日志
func Debug(msg string) { GetLogger().Debug(msg) }

// Debugf 使用格式化字符串记录调试级别的日志
func Debugf(format string, args ...interface{}) { GetLogger().Debugf(format, args...) }

// Info 记录信息级别的日志
func Info(msg string) { GetLogger().Info(msg) }

// Infof 使用格式化字符串记录信息级别的日志
func Infof(format string, args ...interface{}) { GetLogger().Infof(format, args...) }

// Warn 记录警告级别的日志
func Warn(msg string) { GetLogger().Warn(msg) }

// Warnf 使用格式化字符串记录警告级别的日志
func Warnf(format string, args ...interface{}) { GetLogger().Warnf(format, args...) }

// Error 记录错误级别的日志
func Error(msg string) { GetLogger().Error(msg) }

// Errorf 使用格式化字符串记录错误级别的日志
func Errorf(format string, args ...interface{}) { GetLogger().Errorf(format, args...) }

// With 创建带有额外字段的日志记录器
func With(args ...interface{}) logInterface.Logger { return GetLogger().With(args...) }

// toZapFields 将键值对参数转换为zap字段，奇数个参数时丢弃最后一个
func toZapFields(args ...interface{}) []zap.Field {
	if len(args)%2 != 0 {
		args = args[:len(args)-1]
	}
	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}

// ==================== Logger 方法 ====================

func (l *Logger) Debug(msg string)                          { l.sugar.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(msg string)                           { l.sugar.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(msg string)                           { l.sugar.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(msg string)                          { l.sugar.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *Logger) Fatal(msg string)                          { l.sugar.Fatal(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// With 返回一个带有额外字段的Logger
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	z := l.zapLogger.With(toZapFields(args...)...)
	return &Logger{zapLogger: z, sugar: z.Sugar()}
}

// Sync 同步日志缓冲区到输出
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

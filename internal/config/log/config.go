package log

import (
	"go.uber.org/zap/zapcore"

	"github.com/weisyn/oreminer/pkg/types"
)

// LogOptions 日志配置选项
type LogOptions struct {
	Level     string `json:"level"`      // debug | info | warn | error | fatal
	ToConsole bool   `json:"to_console"` // 前台运行时输出到控制台
	FilePath  string `json:"file_path"`  // 为空不写文件；"stdout"/"stderr" 只写对应流

	// 文件轮转（lumberjack）
	MaxSize    int  `json:"max_size"`    // MB
	MaxBackups int  `json:"max_backups"` // 份
	MaxAge     int  `json:"max_age"`     // 天
	Compress   bool `json:"compress"`

	EnableCaller     bool `json:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace"`
}

// Config 日志配置
type Config struct {
	options *LogOptions
}

// New 以默认值为底合并用户配置，userConfig 为 nil 时全部使用默认值
func New(userConfig *types.UserLogConfig) *Config {
	o := defaultOptions()
	if u := userConfig; u != nil {
		if u.Level != nil {
			o.Level = *u.Level
		}
		if u.FilePath != nil {
			o.FilePath = *u.FilePath
		}
		if u.ToConsole != nil {
			o.ToConsole = *u.ToConsole
		}
		if u.MaxSizeMB != nil && *u.MaxSizeMB > 0 {
			o.MaxSize = *u.MaxSizeMB
		}
		if u.MaxBackups != nil && *u.MaxBackups >= 0 {
			o.MaxBackups = *u.MaxBackups
		}
		if u.EnableCaller != nil {
			o.EnableCaller = *u.EnableCaller
		}
	}
	return &Config{options: o}
}

// NewFromOptions 直接使用完整选项
func NewFromOptions(options *LogOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

// GetOptions 获取完整的日志配置选项
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

// ZapLevel 无法识别的级别按 info 处理
func (c *Config) ZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.options.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// FileEncoder 文件输出为逐行 JSON，便于按轮次检索
func (c *Config) FileEncoder() zapcore.Encoder {
	cfg := baseEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// ConsoleEncoder 控制台输出与挖矿横幅交错，只保留时分秒
func (c *Config) ConsoleEncoder() zapcore.Encoder {
	cfg := baseEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func baseEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// Package log 定义挖矿客户端统一的日志接口
//
// 各模块只依赖本接口，具体实现位于 internal/core/infrastructure/log（基于 zap）。
package log

import "go.uber.org/zap"

// Logger 定义日志记录器接口
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})

	Info(msg string)
	Infof(format string, args ...interface{})

	Warn(msg string)
	Warnf(format string, args ...interface{})

	Error(msg string)
	Errorf(format string, args ...interface{})

	// Fatal 记录后退出进程，仅允许在 cmd 层使用
	Fatal(msg string)
	Fatalf(format string, args ...interface{})

	// With 返回带有额外键值对的 Logger
	With(args ...interface{}) Logger

	// Sync 刷新缓冲区
	Sync() error

	// GetZapLogger 获取底层 zap 记录器，供需要结构化字段的模块使用
	GetZapLogger() *zap.Logger
}

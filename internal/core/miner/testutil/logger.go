package testutil

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logimpl "github.com/weisyn/oreminer/internal/core/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
)

// NopLogger 丢弃全部输出
func NopLogger() log.Logger { return logimpl.NewNop() }

// ObservedLogger 记录全部日志条目，供断言告警是否输出
func ObservedLogger() (log.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return logimpl.NewFromZap(zap.New(core)), logs
}

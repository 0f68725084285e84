// Package clock provides configuration for the local time source.
package clock

import "time"

// 时钟服务配置默认值
const (
	// defaultType 默认使用系统时钟；链上时间以 clock sysvar 为准
	defaultType = "system"

	defaultNTPServer = "time.google.com"
)

var (
	defaultSyncInterval = 10 * time.Minute

	// defaultOffsetThreshold 超过 1 秒的偏移会让截止时间明显失真
	defaultOffsetThreshold = time.Second

	defaultBackoffInitial = 5 * time.Second
	defaultBackoffMax     = 5 * time.Minute
)

// Package clock provides local time source interfaces.
package clock

import "time"

// Clock 本地时间源（基础设施层接口）
//
// 挖矿截止判断使用单调时钟（time.Since），这里的 Clock 仅用于
// 展示、事件时间戳与 epoch 策略的本地兜底，可替换为 NTP 校正时钟或 Mock。
type Clock interface {
	// Now 获取当前时间
	Now() time.Time

	// Since 计算从指定时间到现在的持续时间
	Since(t time.Time) time.Duration

	// Unix 获取当前Unix时间戳（秒）
	Unix() int64
}

// HealthReporter 可上报健康状态的时钟（NTP 时钟实现）
type HealthReporter interface {
	Health() (healthy bool, offset time.Duration, lastSync time.Time, lastError error)
}

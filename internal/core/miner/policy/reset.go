// Package policy 挖矿轮次中的纯策略计算：epoch 重置判定、截止时间、收益展示
package policy

import (
	"math"
	"math/rand/v2"
)

// ShouldReset 是否已到（或即将到）epoch 重置时间
//
//	now >= lastResetAt + epochDuration - safetyBuffer
//
// 全程饱和运算，不会溢出。
func ShouldReset(lastResetAt, epochDuration, safetyBuffer, now int64) bool {
	return satSub(satAdd(lastResetAt, epochDuration), safetyBuffer) <= now
}

// ResetThrottle 多个矿工同时满足重置条件时，以 1/OneIn 的概率附带 reset 指令
type ResetThrottle struct {
	OneIn uint32

	// intN 随机源，nil 时使用 math/rand/v2
	intN func(n int) int
}

// NewResetThrottle 创建节流器
func NewResetThrottle(oneIn uint32) *ResetThrottle {
	return &ResetThrottle{OneIn: oneIn}
}

// Allow 本次是否附带 reset；OneIn 为 0 或 1 时总是附带
func (t *ResetThrottle) Allow() bool {
	if t == nil || t.OneIn <= 1 {
		return true
	}
	intN := t.intN
	if intN == nil {
		intN = rand.IntN
	}
	return intN(int(t.OneIn)) == 0
}

func satAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}
	return a + b
}

func satSub(a, b int64) int64 {
	if b == math.MinInt64 {
		if a >= 0 {
			return math.MaxInt64
		}
		return a - b
	}
	return satAdd(a, -b)
}

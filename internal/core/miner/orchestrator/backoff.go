package orchestrator

import (
	"math/rand/v2"
	"time"
)

// backoff 提交失败后的指数退避（带抖动），成功后重置
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration

	int64N func(n int64) int64
}

func newBackoff(initial, max time.Duration) *backoff {
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	if max < initial {
		max = initial
	}
	return &backoff{initial: initial, max: max, current: initial, int64N: rand.Int64N}
}

// Next 本次等待时长，落在 [d/2, d]，d 每次翻倍直到上限
func (b *backoff) Next() time.Duration {
	d := b.current
	if next := b.current * 2; next <= b.max {
		b.current = next
	} else {
		b.current = b.max
	}
	half := d / 2
	return half + time.Duration(b.int64N(int64(d-half)+1))
}

// Reset 恢复初始值
func (b *backoff) Reset() { b.current = b.initial }

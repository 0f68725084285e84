package search

import (
	"math"
	"math/bits"
)

// Range 工作线程的 nonce 区间 [Start, End)
//
// 2^64 无法用 uint64 表示，覆盖到空间末尾的区间以 End = MaxUint64 且
// Inclusive = true 表示 [Start, 2^64)。
type Range struct {
	Start     uint64
	End       uint64
	Inclusive bool
}

// FullSpace 完整的 64 位 nonce 空间
var FullSpace = Range{Start: 0, End: math.MaxUint64, Inclusive: true}

// size 返回区间长度的 128 位表示 (hi, lo)
func (r Range) size() (hi, lo uint64) {
	if r.End < r.Start {
		return 0, 0
	}
	lo = r.End - r.Start
	if r.Inclusive {
		var carry uint64
		lo, carry = bits.Add64(lo, 1, 0)
		hi = carry
	}
	return hi, lo
}

// Empty 区间内没有 nonce
func (r Range) Empty() bool {
	hi, lo := r.size()
	return hi == 0 && lo == 0
}

// Partition 把空间整除切分为 n 段，最后一段吸收余数
//
// 段数不超过空间内的 nonce 数量，保证每段非空。
func Partition(space Range, n int) []Range {
	if n < 1 {
		n = 1
	}
	hi, lo := space.size()
	if hi == 0 {
		if lo == 0 {
			return nil
		}
		if uint64(n) > lo {
			n = int(lo)
		}
	}
	if n == 1 {
		return []Range{space}
	}

	step, _ := bits.Div64(hi, lo, uint64(n))
	ranges := make([]Range, n)
	for i := 0; i < n-1; i++ {
		start := space.Start + uint64(i)*step
		ranges[i] = Range{Start: start, End: start + step}
	}
	ranges[n-1] = Range{
		Start:     space.Start + uint64(n-1)*step,
		End:       space.End,
		Inclusive: space.Inclusive,
	}
	return ranges
}

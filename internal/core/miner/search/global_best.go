package search

import "sync/atomic"

// GlobalBest 所有工作线程共享的最优难度（只增不减）
//
// 仅作为提前结束的信号；最终结果以合并各线程的局部最优为准。
type GlobalBest struct {
	v atomic.Uint32
}

// Load 当前值
func (g *GlobalBest) Load() uint32 { return g.v.Load() }

// Raise 当 d 大于当前值时更新，返回是否更新
func (g *GlobalBest) Raise(d uint32) bool {
	for {
		cur := g.v.Load()
		if d <= cur {
			return false
		}
		if g.v.CompareAndSwap(cur, d) {
			return true
		}
	}
}

package search

import (
	"github.com/pbnjay/memory"

	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
)

// memoryBudget 工作区内存预算
type memoryBudget struct {
	ratio float64
	total func() uint64
}

func newMemoryBudget(ratio float64) *memoryBudget {
	return &memoryBudget{ratio: ratio, total: memory.TotalMemory}
}

// limit 在预算内能容纳的工作线程数（至少 1）
//
// 物理内存未知或未设置比例时不做限制。
func (b *memoryBudget) limit(workers, perWorker int, logger log.Logger) int {
	if b == nil || b.ratio <= 0 || perWorker <= 0 {
		return workers
	}
	total := b.total()
	if total == 0 {
		return workers
	}
	allowed := uint64(float64(total)*b.ratio) / uint64(perWorker)
	if allowed >= uint64(workers) {
		return workers
	}
	if allowed < 1 {
		allowed = 1
	}
	if logger != nil {
		logger.Warnf("工作区内存 %d×%d 字节超过预算（物理内存 %d 字节的 %.0f%%），工作线程降为 %d",
			workers, perWorker, total, b.ratio*100, allowed)
	}
	return int(allowed)
}

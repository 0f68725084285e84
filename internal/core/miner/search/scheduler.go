// Package search 实现并行 nonce 搜索
//
// 一次搜索把 64 位 nonce 空间切分给 N 个工作线程，每个线程独占一块哈希工作区、
// 锁定 OS 线程并尽力绑定到独立核心。线程之间只共享两个原子量：全局最优难度
// （提前结束信号）与哈希计数（算力统计）。全部线程结束后按难度合并结果，
// 难度相同时取 nonce 最小者。
package search

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/weisyn/oreminer/internal/core/infrastructure/affinity"
	cryptointf "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/types"
)

// Options 调度器参数
type Options struct {
	// Workers 请求的工作线程数，0 表示全部逻辑核
	Workers int

	// PinCores 是否尝试绑核
	PinCores bool

	// MaxMemoryRatio 工作区总量占物理内存的上限，0 表示不检查
	MaxMemoryRatio float64
}

// Result 一次搜索的结果
type Result struct {
	Solution   types.Solution
	Hash       types.Hash
	Nonce      uint64
	Difficulty uint32
	Hashes     uint64
	Workers    int
	Elapsed    time.Duration
}

// HashRate 平均算力（H/s）
func (r *Result) HashRate() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Hashes) / secs
}

// Scheduler 并行搜索调度器
type Scheduler struct {
	opts      Options
	hasher    cryptointf.HashFunction
	pinner    affinity.Pinner
	logger    log.Logger
	topology  affinity.Topology
	available int
	budget    *memoryBudget
}

// NewScheduler 创建调度器；pinner 为 nil 时使用平台默认实现
func NewScheduler(opts Options, hasher cryptointf.HashFunction, pinner affinity.Pinner, logger log.Logger) *Scheduler {
	if pinner == nil {
		pinner = affinity.Default()
	}
	topo := affinity.Detect()
	if logger != nil && opts.PinCores {
		logger.Debugf("CPU 拓扑: %s, %d 物理核 / %d 逻辑核, 可用 %v", topo.Brand, topo.PhysicalCores, topo.LogicalCores, topo.CPUs)
	}
	return &Scheduler{
		opts:      opts,
		hasher:    hasher,
		pinner:    pinner,
		logger:    logger,
		topology:  topo,
		available: topo.Available(),
		budget:    newMemoryBudget(opts.MaxMemoryRatio),
	}
}

// WorkerCount 本机实际使用的工作线程数
func (s *Scheduler) WorkerCount() int {
	n := s.opts.Workers
	if n <= 0 || n > s.available {
		if n > s.available && s.logger != nil {
			s.logger.Debugf("请求 %d 个工作线程，超过可用核心数 %d，使用全部可用核心", n, s.available)
		}
		n = s.available
	}
	return s.budget.limit(n, s.hasher.MemorySize(), s.logger)
}

// Search 在完整 nonce 空间上搜索，阻塞直到全部工作线程结束
//
// 即使最优难度低于 minDifficulty 也返回最优候选。ctx 取消时提前返回已有结果与 ctx.Err()。
func (s *Scheduler) Search(ctx context.Context, challenge types.Challenge, cutoff time.Duration, minDifficulty uint32) (*Result, error) {
	return s.SearchRange(ctx, FullSpace, challenge, cutoff, minDifficulty)
}

// SearchRange 在给定空间上搜索
func (s *Scheduler) SearchRange(ctx context.Context, space Range, challenge types.Challenge, cutoff time.Duration, minDifficulty uint32) (*Result, error) {
	ranges := Partition(space, s.WorkerCount())
	if len(ranges) == 0 {
		return nil, fmt.Errorf("empty nonce space [%d, %d)", space.Start, space.End)
	}

	var hashes atomic.Uint64
	st := &roundState{
		challenge:     challenge,
		start:         time.Now(),
		cutoff:        cutoff,
		minDifficulty: minDifficulty,
		best:          &GlobalBest{},
		hashes:        &hashes,
	}

	cores := affinity.Assign(len(ranges), s.topology)
	results := make([]workerResult, len(ranges))
	var pinWarn sync.Once
	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(i int, r Range) {
			defer wg.Done()
			// 绑核成功的线程保持锁定，goroutine 退出时线程随之销毁，亲和性不会带回线程池
			runtime.LockOSThread()
			if !s.pin(cores[i], &pinWarn) {
				defer runtime.UnlockOSThread()
			}
			mem := s.hasher.NewMemory()
			results[i] = solve(ctx, r, st, s.hasher, mem)
		}(i, r)
	}
	wg.Wait()

	best := results[0]
	for _, r := range results[1:] {
		if r.better(best) {
			best = r
		}
	}

	res := &Result{
		Solution:   types.NewSolution(best.hash.D, best.nonce),
		Hash:       best.hash,
		Nonce:      best.nonce,
		Difficulty: best.difficulty,
		Hashes:     hashes.Load(),
		Workers:    len(ranges),
		Elapsed:    time.Since(st.start),
	}
	if s.logger != nil {
		s.logger.Infof("Best hash: %s (difficulty %d, %.2f H/s)", res.Hash, res.Difficulty, res.HashRate())
	}
	return res, ctx.Err()
}

func (s *Scheduler) pin(core int, warn *sync.Once) bool {
	if !s.opts.PinCores {
		return false
	}
	if err := s.pinner.Pin(core); err != nil {
		warn.Do(func() {
			if s.logger != nil {
				s.logger.Warnf("绑核失败，工作线程不绑核运行: %v", err)
			}
		})
		return false
	}
	return true
}

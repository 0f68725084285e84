package search

import (
	"context"
	"sync/atomic"
	"time"

	cryptointf "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/oreminer/pkg/types"
)

// ctxCheckInterval 每处理多少个 nonce 检查一次 ctx
const ctxCheckInterval = 64

// roundState 一次搜索内所有工作线程共享的只读参数与计数器
type roundState struct {
	challenge     types.Challenge
	start         time.Time
	cutoff        time.Duration
	minDifficulty uint32

	best   *GlobalBest
	hashes *atomic.Uint64
}

// workerResult 单个工作线程的局部最优
type workerResult struct {
	nonce      uint64
	difficulty uint32
	hash       types.Hash
	evaluated  uint64
}

// better 难度更高者胜；难度相同时 nonce 更小者胜
func (w workerResult) better(o workerResult) bool {
	if w.difficulty != o.difficulty {
		return w.difficulty > o.difficulty
	}
	return w.nonce < o.nonce
}

// solve 在区间内升序扫描
//
// 至少处理一个 nonce 后才检查结束条件：已过截止时间且全局最优达到最低难度。
// 哈希失败（ErrNoSolution）的 nonce 直接跳过，但仍计入哈希数。
func solve(ctx context.Context, r Range, st *roundState, hasher cryptointf.HashFunction, mem cryptointf.SolverMemory) workerResult {
	res := workerResult{nonce: r.Start}
	if r.Empty() {
		return res
	}

	nonce := r.Start
	for {
		hx, err := hasher.HashWithMemory(mem, st.challenge, types.NonceBytes(nonce))
		if err == nil {
			if d := hx.Difficulty(); d > res.difficulty {
				res.nonce = nonce
				res.difficulty = d
				res.hash = hx
				st.best.Raise(d)
			}
		}
		st.hashes.Add(1)
		res.evaluated++

		if time.Since(st.start) >= st.cutoff && st.best.Load() >= st.minDifficulty {
			break
		}
		if res.evaluated%ctxCheckInterval == 0 && ctx.Err() != nil {
			break
		}
		if r.Inclusive && nonce == r.End {
			break
		}
		nonce++
		if !r.Inclusive && nonce >= r.End {
			break
		}
	}
	return res
}

// Package crypto 定义挖矿所需的密码学能力接口
package crypto

import (
	"errors"

	"github.com/weisyn/oreminer/pkg/types"
)

// ErrNoSolution 当前 nonce 没有可用候选解（正常情况，直接跳过）
var ErrNoSolution = errors.New("no solution for nonce")

// SolverMemory 哈希函数的可复用工作内存
//
// 每个工作线程独占一块，整个搜索期间在所有 nonce 之间复用，不得跨线程共享。
type SolverMemory interface {
	// Size 工作内存字节数
	Size() int
}

// HashFunction 工作量证明哈希函数
type HashFunction interface {
	// NewMemory 分配一块工作内存
	NewMemory() SolverMemory

	// HashWithMemory 在给定工作内存上计算 (challenge, nonce) 的哈希
	// 无解时返回 ErrNoSolution
	HashWithMemory(mem SolverMemory, challenge types.Challenge, nonce [8]byte) (types.Hash, error)

	// Verify 校验答案是否与 challenge 匹配，返回其哈希
	Verify(challenge types.Challenge, solution types.Solution) (types.Hash, error)

	// MemorySize 单块工作内存的字节数（用于启动前的内存预算检查）
	MemorySize() int
}

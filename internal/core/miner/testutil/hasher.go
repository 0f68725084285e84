// Package testutil 挖矿模块测试用的内存实现
package testutil

import (
	"encoding/binary"
	"sort"
	"sync"
	"time"

	cryptointf "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/oreminer/pkg/types"
)

// HashWithDifficulty 构造恰好有 d 个前导零位的哈希，D 的前 8 字节为 nonce
func HashWithDifficulty(d uint32, nonce uint64) types.Hash {
	var h types.Hash
	binary.LittleEndian.PutUint64(h.D[:8], nonce)
	if d < 256 {
		h.H[d/8] = 0x80 >> (d % 8)
	}
	return h
}

type fakeMemory struct{}

func (fakeMemory) Size() int { return 64 }

// FakeHasher 按表返回难度的哈希函数
//
// Difficulties 中没有的 nonce 返回 Default；NoSolution 中的 nonce 返回 ErrNoSolution。
type FakeHasher struct {
	Difficulties map[uint64]uint32
	NoSolution   map[uint64]bool
	Default      uint32

	// Delay 每次哈希的耗时，用于截止时间相关的测试
	Delay time.Duration

	mu        sync.Mutex
	evaluated map[uint64]int
	memories  int
}

var _ cryptointf.HashFunction = (*FakeHasher)(nil)

// NewFakeHasher 创建 FakeHasher
func NewFakeHasher(difficulties map[uint64]uint32) *FakeHasher {
	return &FakeHasher{Difficulties: difficulties}
}

func (f *FakeHasher) NewMemory() cryptointf.SolverMemory {
	f.mu.Lock()
	f.memories++
	f.mu.Unlock()
	return fakeMemory{}
}

func (f *FakeHasher) MemorySize() int { return 64 }

func (f *FakeHasher) HashWithMemory(_ cryptointf.SolverMemory, _ types.Challenge, nonce [8]byte) (types.Hash, error) {
	n := binary.LittleEndian.Uint64(nonce[:])
	f.mu.Lock()
	if f.evaluated == nil {
		f.evaluated = map[uint64]int{}
	}
	f.evaluated[n]++
	f.mu.Unlock()

	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	if f.NoSolution[n] {
		return types.Hash{}, cryptointf.ErrNoSolution
	}
	d, ok := f.Difficulties[n]
	if !ok {
		d = f.Default
	}
	return HashWithDifficulty(d, n), nil
}

func (f *FakeHasher) Verify(challenge types.Challenge, solution types.Solution) (types.Hash, error) {
	return f.HashWithMemory(fakeMemory{}, challenge, solution.N)
}

// Evaluated 已计算过的 nonce（升序，去重）
func (f *FakeHasher) Evaluated() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, 0, len(f.evaluated))
	for n := range f.evaluated {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count nonce 被计算的次数
func (f *FakeHasher) Count(nonce uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.evaluated[nonce]
}

// Memories 分配过的工作区数量
func (f *FakeHasher) Memories() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memories
}

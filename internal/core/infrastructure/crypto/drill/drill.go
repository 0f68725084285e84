// Package drill 实现挖矿使用的内存硬哈希函数
//
// 计算流程：
//  1. seed = BLAKE2b-512(challenge ‖ nonce)
//  2. 由 seed 展开填充工作区（每线程独占，跨 nonce 复用）
//  3. 在工作区上做数据相关的随机读写游走，得到 16 字节摘要 D
//  4. H = Keccak256(sorted(D) ‖ nonce)，难度为 H 的前导零位数
//
// 约 1/256 的 nonce 在游走结束时落在无效状态，此时返回 ErrNoSolution。
package drill

import (
	"encoding/binary"
	"errors"
	"math/bits"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	cryptointf "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/oreminer/pkg/types"
)

const (
	// ArenaWords 工作区 uint64 数量（256 KiB）
	ArenaWords = 1 << 15

	walkSteps = 2048
	lanes     = 4
)

// ErrInvalidSolution 答案摘要与重新计算的结果不一致
var ErrInvalidSolution = errors.New("solution digest mismatch")

// Memory 单个工作线程的工作区
type Memory struct {
	arena []uint64
}

// Size 工作区字节数
func (m *Memory) Size() int { return len(m.arena) * 8 }

// Hasher drill 哈希函数
type Hasher struct{}

var _ cryptointf.HashFunction = (*Hasher)(nil)

// New 创建哈希函数实例（无状态，可在线程间共享）
func New() *Hasher { return &Hasher{} }

// NewMemory 分配一块工作区
func (h *Hasher) NewMemory() cryptointf.SolverMemory {
	return &Memory{arena: make([]uint64, ArenaWords)}
}

// MemorySize 单块工作区字节数
func (h *Hasher) MemorySize() int { return ArenaWords * 8 }

// HashWithMemory 计算 (challenge, nonce) 的哈希
func (h *Hasher) HashWithMemory(mem cryptointf.SolverMemory, challenge types.Challenge, nonce [8]byte) (types.Hash, error) {
	m, ok := mem.(*Memory)
	if !ok || len(m.arena) != ArenaWords {
		m = &Memory{arena: make([]uint64, ArenaWords)}
	}
	d, err := digest(m, challenge, nonce)
	if err != nil {
		return types.Hash{}, err
	}
	return types.Hash{D: d, H: finalize(d, nonce)}, nil
}

// Verify 重新计算并校验答案
func (h *Hasher) Verify(challenge types.Challenge, solution types.Solution) (types.Hash, error) {
	hash, err := h.HashWithMemory(h.NewMemory(), challenge, solution.N)
	if err != nil {
		return types.Hash{}, err
	}
	if hash.D != solution.D {
		return types.Hash{}, ErrInvalidSolution
	}
	return hash, nil
}

// digest 填充工作区并游走，返回 16 字节摘要
func digest(m *Memory, challenge types.Challenge, nonce [8]byte) ([16]byte, error) {
	var input [types.ChallengeLength + 8]byte
	copy(input[:], challenge[:])
	copy(input[types.ChallengeLength:], nonce[:])
	seed := blake2b.Sum512(input[:])

	var s [8]uint64
	for i := range s {
		s[i] = binary.LittleEndian.Uint64(seed[i*8:])
	}

	// 填充：8 路 splitmix 链，相邻字交错
	arena := m.arena
	for i := 0; i < len(arena); i++ {
		lane := i & 7
		s[lane] += 0x9e3779b97f4a7c15
		arena[i] = mix64(s[lane] ^ uint64(i))
	}

	// 游走：读取位置由上一步结果决定，并回写工作区
	var acc [lanes]uint64
	for i := range acc {
		acc[i] = s[i] ^ s[i+lanes]
	}
	mask := uint64(len(arena) - 1)
	idx := acc[0] & mask
	for step := 0; step < walkSteps; step++ {
		v := arena[idx]
		l := step % lanes
		acc[l] = bits.RotateLeft64(acc[l]^v, 23) + acc[(l+1)%lanes]*0xff51afd7ed558ccd
		arena[idx] = v ^ acc[l]
		idx = (acc[l] ^ (v >> 17)) & mask
	}

	if byte(acc[0]^acc[2]) == 0 {
		return [16]byte{}, cryptointf.ErrNoSolution
	}

	var folded [lanes * 8]byte
	for i, a := range acc {
		binary.LittleEndian.PutUint64(folded[i*8:], mix64(a))
	}
	sum := blake2b.Sum256(folded[:])
	var d [16]byte
	copy(d[:], sum[:16])
	return d, nil
}

// finalize H = Keccak256(sorted(D) ‖ nonce)
//
// 摘要按 8 个小端 uint16 排序，使同一组候选值的不同排列得到相同 H。
func finalize(d [16]byte, nonce [8]byte) [32]byte {
	var parts [8]uint16
	for i := range parts {
		parts[i] = binary.LittleEndian.Uint16(d[i*2:])
	}
	sort.Slice(parts[:], func(i, j int) bool { return parts[i] < parts[j] })

	var sorted [16]byte
	for i, p := range parts {
		binary.LittleEndian.PutUint16(sorted[i*2:], p)
	}

	k := sha3.NewLegacyKeccak256()
	k.Write(sorted[:])
	k.Write(nonce[:])
	var out [32]byte
	k.Sum(out[:0])
	return out
}

func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

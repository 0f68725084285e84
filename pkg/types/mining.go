package types

import (
	"encoding/binary"
	"math/bits"

	"github.com/mr-tron/base58"
)

// ChallengeLength 挑战值长度
const ChallengeLength = 32

// Challenge 协议下发的本轮挑战值，整轮不变
type Challenge [ChallengeLength]byte

// Hash 哈希函数输出
//
//   - D: 16 字节摘要（作为解提交上链）
//   - H: 32 字节哈希，难度由其前导零位数决定
type Hash struct {
	D [16]byte
	H [32]byte
}

// Difficulty 返回 H 的前导零位数
func (h Hash) Difficulty() uint32 {
	var count uint32
	for _, b := range h.H {
		if b == 0 {
			count += 8
			continue
		}
		count += uint32(bits.LeadingZeros8(b))
		break
	}
	return count
}

// IsZero 是否为空哈希（工作线程尚未找到任何候选时的初值）
func (h Hash) IsZero() bool { return h == Hash{} }

// String 以 base58 输出 H
func (h Hash) String() string { return base58.Encode(h.H[:]) }

// Solution 一轮挖矿的答案：摘要 + 小端序 nonce
type Solution struct {
	D [16]byte
	N [8]byte
}

// NewSolution 由摘要与 nonce 构造答案
func NewSolution(d [16]byte, nonce uint64) Solution {
	s := Solution{D: d}
	binary.LittleEndian.PutUint64(s.N[:], nonce)
	return s
}

// Nonce 返回答案中的 nonce
func (s Solution) Nonce() uint64 { return binary.LittleEndian.Uint64(s.N[:]) }

// NonceBytes 小端序编码 nonce
func NonceBytes(nonce uint64) [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], nonce)
	return b
}

// Package pda 实现 Solana program-derived address 推导，以及 ORE 协议使用的固定地址
//
// 推导规则：
//
//	address = sha256(seed_0 ‖ … ‖ seed_n ‖ bump ‖ program_id ‖ "ProgramDerivedAddress")
//
// bump 从 255 向下尝试，取第一个不在 ed25519 曲线上的结果。
package pda

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/weisyn/oreminer/pkg/types"
)

const (
	// MaxSeeds 单个地址的最大种子数（含 bump）
	MaxSeeds = 16

	// MaxSeedLength 单个种子的最大长度
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	// ErrMaxSeedLengthExceeded 种子过长
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrInvalidSeeds 推导结果落在曲线上（该组种子不可用）
	ErrInvalidSeeds = errors.New("provided seeds do not result in a valid address")

	// ErrNoViableBump 所有 bump 均落在曲线上
	ErrNoViableBump = errors.New("unable to find a viable program address bump seed")
)

// IsOnCurve 判断 32 字节是否为合法的 ed25519 点编码
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress 用给定种子（已包含 bump）计算地址
func CreateProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return types.Pubkey{}, fmt.Errorf("%w: %d seeds", ErrMaxSeedLengthExceeded, len(seeds))
	}
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > MaxSeedLength {
			return types.Pubkey{}, fmt.Errorf("%w: %d bytes", ErrMaxSeedLengthExceeded, len(s))
		}
		h.Write(s)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var out types.Pubkey
	copy(out[:], h.Sum(nil))
	if IsOnCurve(out[:]) {
		return types.Pubkey{}, ErrInvalidSeeds
	}
	return out, nil
}

// FindProgramAddress 搜索第一个可用 bump，返回地址与 bump
func FindProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.Is(err, ErrInvalidSeeds):
			continue
		default:
			return types.Pubkey{}, 0, err
		}
	}
	return types.Pubkey{}, 0, ErrNoViableBump
}

// MustFindProgramAddress 用于固定种子的包级地址，失败直接 panic
func MustFindProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, uint8) {
	addr, bump, err := FindProgramAddress(seeds, programID)
	if err != nil {
		panic(fmt.Sprintf("find program address: %v", err))
	}
	return addr, bump
}

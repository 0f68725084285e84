package pda

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/oreminer/pkg/constants"
	"github.com/weisyn/oreminer/pkg/types"
)

func TestFindProgramAddress(t *testing.T) {
	seeds := [][]byte{[]byte("proof"), bytes.Repeat([]byte{7}, 32)}

	t.Run("结果确定且不在曲线上", func(t *testing.T) {
		a1, b1, err := FindProgramAddress(seeds, constants.OreProgramID)
		require.NoError(t, err)
		a2, b2, err := FindProgramAddress(seeds, constants.OreProgramID)
		require.NoError(t, err)
		assert.Equal(t, a1, a2)
		assert.Equal(t, b1, b2)
		assert.False(t, IsOnCurve(a1[:]))
	})

	t.Run("bump 可复算", func(t *testing.T) {
		addr, bump, err := FindProgramAddress(seeds, constants.OreProgramID)
		require.NoError(t, err)
		again, err := CreateProgramAddress(append(append([][]byte{}, seeds...), []byte{bump}), constants.OreProgramID)
		require.NoError(t, err)
		assert.Equal(t, addr, again)
	})

	t.Run("不同 program 得到不同地址", func(t *testing.T) {
		a1, _, err := FindProgramAddress(seeds, constants.OreProgramID)
		require.NoError(t, err)
		a2, _, err := FindProgramAddress(seeds, constants.NoopProgramID)
		require.NoError(t, err)
		assert.NotEqual(t, a1, a2)
	})

	t.Run("种子过长", func(t *testing.T) {
		_, _, err := FindProgramAddress([][]byte{make([]byte, 33)}, constants.OreProgramID)
		assert.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
	})

	t.Run("种子过多", func(t *testing.T) {
		many := make([][]byte, MaxSeeds)
		for i := range many {
			many[i] = []byte{byte(i)}
		}
		_, _, err := FindProgramAddress(many, constants.OreProgramID)
		assert.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
	})
}

func TestIsOnCurve(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	assert.True(t, IsOnCurve(pub))
	assert.False(t, IsOnCurve([]byte{1, 2, 3}))
}

func TestOreAddresses(t *testing.T) {
	buses := BusAddresses()
	require.Len(t, buses, constants.BusCount)

	seen := map[types.Pubkey]bool{}
	for i, b := range buses {
		assert.False(t, IsOnCurve(b[:]), "bus %d", i)
		assert.False(t, seen[b], "bus %d duplicated", i)
		seen[b] = true
	}

	// 返回副本，调用方修改不影响缓存
	buses[0] = types.Pubkey{}
	assert.NotEqual(t, types.Pubkey{}, BusAddresses()[0])

	for _, addr := range []types.Pubkey{ConfigAddress(), MintAddress(), TreasuryAddress(), TreasuryTokensAddress()} {
		assert.False(t, addr.IsZero())
		assert.False(t, seen[addr])
		seen[addr] = true
	}

	assert.Equal(t, TreasuryTokensAddress(), AssociatedTokenAddress(TreasuryAddress(), MintAddress()))
}

func TestProofAddress(t *testing.T) {
	var alice, bob types.Pubkey
	alice[0], bob[0] = 1, 2

	a1, bump := ProofAddress(alice)
	a2, _ := ProofAddress(alice)
	b1, _ := ProofAddress(bob)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b1)

	again, err := CreateProgramAddress([][]byte{constants.ProofSeed, alice[:], {bump}}, constants.OreProgramID)
	require.NoError(t, err)
	assert.Equal(t, a1, again)
}

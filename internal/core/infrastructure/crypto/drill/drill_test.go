package drill

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptointf "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/oreminer/pkg/types"
)

func testChallenge() types.Challenge {
	var c types.Challenge
	for i := range c {
		c[i] = byte(i * 7)
	}
	return c
}

// firstSolution 返回从 start 开始第一个有解的 nonce
func firstSolution(t *testing.T, h *Hasher, mem cryptointf.SolverMemory, c types.Challenge, start uint64) (uint64, types.Hash) {
	t.Helper()
	for n := start; n < start+4096; n++ {
		hash, err := h.HashWithMemory(mem, c, types.NonceBytes(n))
		if errors.Is(err, cryptointf.ErrNoSolution) {
			continue
		}
		require.NoError(t, err)
		return n, hash
	}
	t.Fatal("4096 个 nonce 内没有解")
	return 0, types.Hash{}
}

func TestDeterministicAcrossMemoryReuse(t *testing.T) {
	h := New()
	c := testChallenge()
	mem := h.NewMemory()

	n, first := firstSolution(t, h, mem, c, 0)

	// 中间算一些别的 nonce 污染工作区
	for i := uint64(100); i < 110; i++ {
		_, _ = h.HashWithMemory(mem, c, types.NonceBytes(i))
	}

	again, err := h.HashWithMemory(mem, c, types.NonceBytes(n))
	require.NoError(t, err)
	assert.Equal(t, first, again)

	fresh, err := h.HashWithMemory(h.NewMemory(), c, types.NonceBytes(n))
	require.NoError(t, err)
	assert.Equal(t, first, fresh)
}

func TestVerify(t *testing.T) {
	h := New()
	c := testChallenge()
	n, hash := firstSolution(t, h, h.NewMemory(), c, 1000)

	got, err := h.Verify(c, types.NewSolution(hash.D, n))
	require.NoError(t, err)
	assert.Equal(t, hash.Difficulty(), got.Difficulty())

	bad := types.NewSolution(hash.D, n)
	bad.D[0] ^= 0xff
	_, err = h.Verify(c, bad)
	assert.ErrorIs(t, err, ErrInvalidSolution)
}

func TestDifferentChallengeDifferentHash(t *testing.T) {
	h := New()
	c1 := testChallenge()
	c2 := c1
	c2[31] ^= 1

	n, h1 := firstSolution(t, h, h.NewMemory(), c1, 0)
	h2, err := h.HashWithMemory(h.NewMemory(), c2, types.NonceBytes(n))
	if err == nil {
		assert.NotEqual(t, h1.H, h2.H)
	}
}

func TestFinalizeIgnoresDigestLanePermutation(t *testing.T) {
	var d [16]byte
	for i := range d {
		d[i] = byte(i + 1)
	}
	// 交换前两个 uint16
	swapped := d
	swapped[0], swapped[1], swapped[2], swapped[3] = d[2], d[3], d[0], d[1]

	nonce := types.NonceBytes(42)
	assert.Equal(t, finalize(d, nonce), finalize(swapped, nonce))
	assert.NotEqual(t, finalize(d, nonce), finalize(d, types.NonceBytes(43)))
}

func TestSomeNoncesReachModestDifficulty(t *testing.T) {
	h := New()
	c := testChallenge()
	mem := h.NewMemory()

	var best uint32
	for n := uint64(0); n < 2000; n++ {
		hash, err := h.HashWithMemory(mem, c, types.NonceBytes(n))
		if err != nil {
			continue
		}
		if d := hash.Difficulty(); d > best {
			best = d
		}
	}
	// 2000 次尝试的期望最大难度约为 log2(2000) ≈ 11
	assert.GreaterOrEqual(t, best, uint32(5))
}

func TestMemorySize(t *testing.T) {
	h := New()
	assert.Equal(t, 256*1024, h.MemorySize())
	assert.Equal(t, h.MemorySize(), h.NewMemory().Size())
}

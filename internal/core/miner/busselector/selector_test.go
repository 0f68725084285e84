package busselector

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/oreminer/internal/core/chain/pda"
	"github.com/weisyn/oreminer/internal/core/infrastructure/metrics"
	minertest "github.com/weisyn/oreminer/internal/core/miner/testutil"
	"github.com/weisyn/oreminer/pkg/types"
)

func TestSelectMaxRewards(t *testing.T) {
	fc := minertest.NewFakeChain()
	buses := pda.BusAddresses()
	for i, r := range []uint64{10, 500, 30, 499, 0, 12, 7, 1} {
		fc.SetBus(i, r)
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.NewMinerMetrics(reg)
	require.NoError(t, err)

	s := New(fc, minertest.NopLogger(), m)
	assert.Equal(t, buses[1], s.Select(context.Background(), buses))

	count, err := testutil.GatherAndCount(reg, "ore_bus_rewards_grains")
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestSelectSkipsMissingAndUndecodable(t *testing.T) {
	fc := minertest.NewFakeChain()
	buses := pda.BusAddresses()
	fc.SetBus(2, 50)
	fc.SetBus(5, 70)
	// 类型标识错误的账户
	fc.SetAccount(buses[6], (&types.Config{TopBalance: 1 << 40}).Encode())
	// 数据过短
	fc.SetAccount(buses[7], []byte{100, 0, 0})

	s := New(fc, nil, nil)
	assert.Equal(t, buses[5], s.Select(context.Background(), buses))
}

func TestSelectNothingDecodes(t *testing.T) {
	fc := minertest.NewFakeChain()
	buses := pda.BusAddresses()
	fc.SetAccount(buses[3], []byte{1, 2, 3})

	s := New(fc, nil, nil)
	assert.Equal(t, buses[0], s.Select(context.Background(), buses))
}

func TestSelectBatchFailure(t *testing.T) {
	fc := minertest.NewFakeChain()
	fc.MultipleErr = errors.New("connection refused")
	logger, logs := minertest.ObservedLogger()

	var a, b types.Pubkey
	a[0], b[0] = 1, 2
	set := []types.Pubkey{a, b}

	s := New(fc, logger, nil)
	seen := map[types.Pubkey]bool{}
	for i := 0; i < 64; i++ {
		got := s.Select(context.Background(), set)
		require.Contains(t, set, got)
		seen[got] = true
	}
	assert.Len(t, seen, 2, "随机选择应覆盖整个集合")
	assert.Equal(t, 64, logs.FilterMessageSnippet("随机选择").Len())

	t.Run("随机源可替换", func(t *testing.T) {
		s.intN = func(int) int { return 1 }
		assert.Equal(t, b, s.Select(context.Background(), set))
	})
}

func TestSelectEmptySet(t *testing.T) {
	s := New(minertest.NewFakeChain(), nil, nil)
	assert.True(t, s.Select(context.Background(), nil).IsZero())
}

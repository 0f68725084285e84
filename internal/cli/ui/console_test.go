package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventimpl "github.com/weisyn/oreminer/internal/core/infrastructure/event"
	"github.com/weisyn/oreminer/pkg/constants/events"
	"github.com/weisyn/oreminer/pkg/types"
)

func output(buf *bytes.Buffer) string {
	return pterm.RemoveColorFromString(buf.String())
}

func TestStakeBanner(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	t.Run("首轮不显示变化", func(t *testing.T) {
		c.StakeBanner(&types.RoundRecord{Balance: 150_000_000_000, LastBalance: 150_000_000_000, Multiplier: 1.5})
		out := output(&buf)
		assert.Contains(t, out, "Stake: 1.50000000000 ORE")
		assert.NotContains(t, out, "Change")
		assert.Contains(t, out, "Multiplier:          1.5x")
	})

	t.Run("后续轮次显示变化", func(t *testing.T) {
		buf.Reset()
		c.StakeBanner(&types.RoundRecord{Balance: 150_000_000_123, LastBalance: 150_000_000_000, Multiplier: 2})
		out := output(&buf)
		assert.Contains(t, out, "Change: 0.00000000123 ORE")
		assert.Contains(t, out, "Multiplier:            2x")
	})
}

func TestStatusLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Warning("Cannot exceed available cores (8)")
	c.Error("blockhash not found")
	c.Success("Transaction confirmed successfully.")

	lines := strings.Split(strings.TrimSpace(output(&buf)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "WARNING Cannot exceed available cores (8)", lines[0])
	assert.Equal(t, "ERROR: blockhash not found", lines[1])
	assert.Equal(t, "Transaction confirmed successfully.", lines[2])
}

func TestSubscribe(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	bus := eventimpl.New()
	require.NoError(t, c.Subscribe(bus))

	bus.Publish(events.EventTypeRoundStarted, &types.RoundRecord{Balance: 1, Multiplier: 1})
	bus.Publish(events.EventTypeRoundFailed, &types.RoundRecord{Error: "rpc down"})
	bus.Publish(events.EventTypeRoundStarted, &types.RoundRecord{Balance: 2, LastBalance: 1, Multiplier: 1})
	bus.Publish(events.EventTypeRoundConfirmed, &types.RoundRecord{})

	out := output(&buf)
	assert.Contains(t, out, "Stake: 0.00000000001 ORE")
	assert.Contains(t, out, "ERROR: rpc down")
	assert.Contains(t, out, "Change: 0.00000000001 ORE")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "Transaction confirmed successfully."))
}

func TestHistoryTable(t *testing.T) {
	t.Run("空历史", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsole(&buf).HistoryTable(nil))
		assert.Contains(t, output(&buf), "No rounds recorded.")
	})

	t.Run("输出每轮一行", func(t *testing.T) {
		var buf bytes.Buffer
		start := time.Unix(1_700_000_000, 0)
		records := []*types.RoundRecord{
			{
				Status:     types.RoundStatusConfirmed,
				StartedAt:  start,
				EndedAt:    start.Add(75 * time.Second),
				Difficulty: 23,
				HashRate:   1234.5,
				Balance:    100_000_000_000,
				Signature:  "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW",
			},
			{Status: types.RoundStatusFailed, StartedAt: start.Add(time.Minute)},
		}
		require.NoError(t, NewConsole(&buf).HistoryTable(records))
		out := output(&buf)
		assert.Contains(t, out, "Difficulty")
		assert.Contains(t, out, "confirmed")
		assert.Contains(t, out, "01:15")
		assert.Contains(t, out, "1234.50 H/s")
		assert.Contains(t, out, "1.00000000000")
		assert.Contains(t, out, "5VERv8NMvzbJMEkV...")
		assert.Contains(t, out, "failed")
	})
}

func TestBusTable(t *testing.T) {
	var buf bytes.Buffer
	addrs := []types.Pubkey{{1}, {2}}
	buses := []*types.Bus{{ID: 0, Rewards: 250_000_000_000, TopBalance: 1}, nil}

	require.NoError(t, NewConsole(&buf).BusTable(addrs, buses))
	out := output(&buf)
	assert.Contains(t, out, addrs[0].String())
	assert.Contains(t, out, "2.50000000000")
	assert.Contains(t, out, addrs[1].String())
	assert.Contains(t, out, "-")
}

package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/oreminer/pkg/constants/events"
	"github.com/weisyn/oreminer/pkg/types"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()
	var got *types.RoundRecord
	require.NoError(t, bus.Subscribe(events.EventTypeRoundConfirmed, func(r *types.RoundRecord) {
		got = r
	}))

	record := &types.RoundRecord{ID: "r-1", Difficulty: 20}
	bus.Publish(events.EventTypeRoundConfirmed, record)

	require.NotNil(t, got)
	assert.Equal(t, "r-1", got.ID)
	assert.True(t, bus.HasSubscribers(events.EventTypeRoundConfirmed))
	assert.Equal(t, uint64(1), bus.PublishedCount())

	args, ok := bus.Last(events.EventTypeRoundConfirmed)
	require.True(t, ok)
	assert.Same(t, record, args[0])
}

func TestSubscribeAsync(t *testing.T) {
	bus := New()
	var count atomic.Int32
	handler := func(*types.RoundRecord) { count.Add(1) }
	require.NoError(t, bus.SubscribeAsync(events.EventTypeSolutionFound, handler, true))

	for i := 0; i < 5; i++ {
		bus.Publish(events.EventTypeSolutionFound, &types.RoundRecord{})
	}
	bus.WaitAsync()
	assert.Equal(t, int32(5), count.Load())

	require.NoError(t, bus.Unsubscribe(events.EventTypeSolutionFound, handler))
	assert.False(t, bus.HasSubscribers(events.EventTypeSolutionFound))
}

func TestLastUnknownTopic(t *testing.T) {
	_, ok := New().Last(events.EventTypeRoundFailed)
	assert.False(t, ok)
}

package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	minerconfig "github.com/weisyn/oreminer/internal/config/miner"
	memoryconfig "github.com/weisyn/oreminer/internal/config/storage/memory"
	"github.com/weisyn/oreminer/internal/core/chain/pda"
	"github.com/weisyn/oreminer/internal/core/chain/tx"
	"github.com/weisyn/oreminer/internal/core/infrastructure/affinity"
	clockimpl "github.com/weisyn/oreminer/internal/core/infrastructure/clock"
	eventimpl "github.com/weisyn/oreminer/internal/core/infrastructure/event"
	"github.com/weisyn/oreminer/internal/core/infrastructure/metrics"
	"github.com/weisyn/oreminer/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/oreminer/internal/core/miner/busselector"
	"github.com/weisyn/oreminer/internal/core/miner/search"
	"github.com/weisyn/oreminer/internal/core/miner/submitter"
	minertest "github.com/weisyn/oreminer/internal/core/miner/testutil"
	"github.com/weisyn/oreminer/pkg/constants"
	"github.com/weisyn/oreminer/pkg/constants/events"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/oreminer/pkg/types"
)

const chainNow = int64(1_700_000_000)

// ==================== 测试替身 ====================

type stubSearcher struct {
	mu      sync.Mutex
	cutoffs []time.Duration
	minDiff []uint32
	result  search.Result
	err     error
}

func (s *stubSearcher) Search(_ context.Context, _ types.Challenge, cutoff time.Duration, minDifficulty uint32) (*search.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	s.minDiff = append(s.minDiff, minDifficulty)
	res := s.result
	return &res, s.err
}

type submission struct {
	ixs   []tx.Instruction
	units uint32
}

type stubSubmitter struct {
	mu    sync.Mutex
	calls []submission
	fn    func(n int) (types.Signature, error)
}

func (s *stubSubmitter) Submit(_ context.Context, ixs []tx.Instruction, units uint32) (types.Signature, error) {
	s.mu.Lock()
	s.calls = append(s.calls, submission{ixs: ixs, units: units})
	n := len(s.calls)
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(n)
	}
	return types.Signature{9}, nil
}

type topicRecorder struct {
	mu      sync.Mutex
	topics  []event.EventType
	records []*types.RoundRecord
}

func (r *topicRecorder) subscribe(t *testing.T, bus event.EventBus) {
	for _, topic := range events.AllRoundEvents {
		topic := topic
		require.NoError(t, bus.Subscribe(topic, func(rec *types.RoundRecord) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.topics = append(r.topics, topic)
			r.records = append(r.records, rec)
		}))
	}
}

type fixture struct {
	chain     *minertest.FakeChain
	searcher  *stubSearcher
	submitter *stubSubmitter
	bus       *eventimpl.EventBus
	recorder  *topicRecorder
	registry  *prometheus.Registry
	opts      *minerconfig.MinerOptions
	authority types.Pubkey
	ctrl      *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		chain:     minertest.NewFakeChain(),
		searcher:  &stubSearcher{result: search.Result{Nonce: 42, Difficulty: 17, Hashes: 1000, Workers: 4, Elapsed: time.Second}},
		submitter: &stubSubmitter{},
		bus:       eventimpl.New(),
		recorder:  &topicRecorder{},
		registry:  prometheus.NewRegistry(),
		opts:      minerconfig.New(nil).GetOptions(),
		authority: minertest.NewKeypair(t, 7).Pubkey(),
	}
	f.searcher.result.Solution = types.NewSolution([16]byte{1}, 42)
	f.recorder.subscribe(t, f.bus)

	f.chain.SetConfig(&types.Config{LastResetAt: chainNow, MinDifficulty: 8, TopBalance: 1000})
	f.chain.SetProof(&types.Proof{Authority: f.authority, Balance: 500, LastHashAt: chainNow - 20})
	f.chain.SetClock(&types.Clock{UnixTimestamp: chainNow})
	for i := 0; i < constants.BusCount; i++ {
		f.chain.SetBus(i, uint64(i))
	}

	m, err := metrics.NewMinerMetrics(f.registry)
	require.NoError(t, err)

	f.ctrl = New(Deps{
		Chain:     f.chain,
		Authority: f.authority,
		Searcher:  f.searcher,
		Selector:  busselector.New(f.chain, nil, m),
		Submitter: f.submitter,
		EventBus:  f.bus,
		Clock:     clockimpl.NewMockClock(time.Unix(chainNow, 0)),
		Metrics:   m,
		Options:   f.opts,
		Logger:    minertest.NopLogger(),
	})
	return f
}

// ==================== 单轮 ====================

func TestRunRoundConfirmed(t *testing.T) {
	f := newFixture(t)

	rec, err := f.ctrl.RunRound(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.RoundStatusConfirmed, rec.Status)
	assert.Equal(t, types.Signature{9}.String(), rec.Signature)
	assert.Equal(t, uint64(42), rec.Nonce)
	assert.Equal(t, uint32(17), rec.Difficulty)
	assert.Equal(t, uint32(8), rec.MinDifficulty)
	assert.Equal(t, 1.5, rec.Multiplier)
	assert.Equal(t, pda.BusAddresses()[7], rec.Bus, "选择 rewards 最多的 bus")
	assert.False(t, rec.Reset)

	// lastHashAt + 60 - now = 40
	assert.Equal(t, uint64(40), rec.CutoffSeconds)
	assert.Equal(t, []time.Duration{40 * time.Second}, f.searcher.cutoffs)
	assert.Equal(t, []uint32{8}, f.searcher.minDiff)

	assert.Equal(t, []event.EventType{
		events.EventTypeRoundStarted,
		events.EventTypeSolutionFound,
		events.EventTypeRoundConfirmed,
	}, f.recorder.topics)
	assert.Equal(t, types.RoundStatusStarted, f.recorder.records[0].Status, "事件参数为快照")

	require.Len(t, f.submitter.calls, 1)
	call := f.submitter.calls[0]
	assert.Equal(t, constants.MineComputeUnits, call.units)
	require.Len(t, call.ixs, 2)
	proofAddr, _ := pda.ProofAddress(f.authority)
	assert.Equal(t, tx.Auth(proofAddr), call.ixs[0])
	assert.Equal(t, tx.Mine(f.authority, f.authority, rec.Bus, f.searcher.result.Solution), call.ixs[1])

	assert.Equal(t, 1.0, counterValue(t, f.registry, "ore_rounds_total", "confirmed"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == status {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{status=%q} not found", name, status)
	return 0
}

func TestRunRoundWithReset(t *testing.T) {
	f := newFixture(t)
	f.ctrl.allowReset = func() bool { return true }
	// 已到 epoch 末尾
	f.chain.SetConfig(&types.Config{LastResetAt: chainNow - constants.EpochDuration, MinDifficulty: 8, TopBalance: 1000})

	rec, err := f.ctrl.RunRound(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.Reset)

	call := f.submitter.calls[0]
	assert.Equal(t, constants.MineComputeUnits+constants.ResetComputeUnits, call.units)
	require.Len(t, call.ixs, 3)
	assert.Equal(t, tx.Reset(f.authority), call.ixs[1])
}

func TestRunRoundResetThrottled(t *testing.T) {
	f := newFixture(t)
	f.chain.SetConfig(&types.Config{LastResetAt: chainNow - constants.EpochDuration, MinDifficulty: 8, TopBalance: 1000})
	f.ctrl.allowReset = func() bool { return false }

	rec, err := f.ctrl.RunRound(context.Background())
	require.NoError(t, err)
	assert.False(t, rec.Reset)
	assert.Equal(t, constants.MineComputeUnits, f.submitter.calls[0].units)
}

func TestRunRoundClockUnavailable(t *testing.T) {
	f := newFixture(t)
	f.chain.SetAccount(constants.SysvarClockID, nil)
	f.chain.SetConfig(&types.Config{LastResetAt: 0, MinDifficulty: 8, TopBalance: 1000})
	f.ctrl.allowReset = func() bool { return true }

	rec, err := f.ctrl.RunRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultCutoffSeconds, rec.CutoffSeconds)
	assert.False(t, rec.Reset, "时钟不可用时不附带 reset")
}

func TestRunRoundBusFallback(t *testing.T) {
	f := newFixture(t)
	f.chain.MultipleErr = errors.New("rate limited")

	rec, err := f.ctrl.RunRound(context.Background())
	require.NoError(t, err)
	assert.Contains(t, pda.BusAddresses(), rec.Bus)
}

func TestRunRoundSubmitFailure(t *testing.T) {
	f := newFixture(t)
	f.submitter.fn = func(int) (types.Signature, error) { return types.Signature{}, submitter.ErrNotConfirmed }

	rec, err := f.ctrl.RunRound(context.Background())
	require.ErrorIs(t, err, submitter.ErrNotConfirmed)
	assert.Equal(t, types.RoundStatusFailed, rec.Status)
	assert.Contains(t, rec.Error, "not confirmed")
	assert.Empty(t, rec.Signature)
	assert.Equal(t, events.EventTypeRoundFailed, f.recorder.topics[len(f.recorder.topics)-1])
}

func TestRunRoundAccountErrors(t *testing.T) {
	f := newFixture(t)
	f.chain.SetAccount(pda.ConfigAddress(), nil)
	_, err := f.ctrl.RunRound(context.Background())
	assert.Error(t, err)
	assert.Empty(t, f.searcher.cutoffs, "未开始搜索")
}

func TestLastBalanceTracking(t *testing.T) {
	f := newFixture(t)

	first, err := f.ctrl.RunRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Balance, first.LastBalance)

	f.chain.SetProof(&types.Proof{Authority: f.authority, Balance: 800, LastHashAt: chainNow})
	second, err := f.ctrl.RunRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(800), second.Balance)
	assert.Equal(t, uint64(500), second.LastBalance)
}

// ==================== 循环 ====================

func TestRunBacksOffAndStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.submitter.fn = func(n int) (types.Signature, error) {
		switch {
		case n <= 2:
			return types.Signature{}, errors.New("boom")
		case n == 3:
			return types.Signature{3}, nil
		case n == 4:
			return types.Signature{}, errors.New("boom")
		default:
			cancel()
			return types.Signature{}, context.Canceled
		}
	}
	var waits []time.Duration
	f.ctrl.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	f.ctrl.backoff.int64N = func(n int64) int64 { return n - 1 }

	require.NoError(t, f.ctrl.Run(ctx))
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, 500 * time.Millisecond}, waits,
		"成功后退避重置")
	assert.Len(t, f.submitter.calls, 5)
}

func TestRunOpensMissingProof(t *testing.T) {
	f := newFixture(t)
	proofAddr, _ := pda.ProofAddress(f.authority)
	f.chain.SetAccount(proofAddr, nil)

	ctx, cancel := context.WithCancel(context.Background())
	f.submitter.fn = func(n int) (types.Signature, error) {
		cancel()
		return types.Signature{1}, nil
	}

	require.NoError(t, f.ctrl.Run(ctx))
	require.Len(t, f.submitter.calls, 1)
	assert.Equal(t, constants.OpenComputeUnits, f.submitter.calls[0].units)
	assert.Equal(t, []tx.Instruction{tx.Open(f.authority)}, f.submitter.calls[0].ixs)
}

func TestEnsureProofErrors(t *testing.T) {
	t.Run("RPC 不可达", func(t *testing.T) {
		f := newFixture(t)
		f.chain.AccountErr = errors.New("connection refused")
		assert.Error(t, f.ctrl.Run(context.Background()))
		assert.Empty(t, f.submitter.calls)
	})

	t.Run("open 提交失败", func(t *testing.T) {
		f := newFixture(t)
		proofAddr, _ := pda.ProofAddress(f.authority)
		f.chain.SetAccount(proofAddr, nil)
		f.submitter.fn = func(int) (types.Signature, error) { return types.Signature{}, errors.New("insufficient funds") }
		assert.ErrorContains(t, f.ctrl.EnsureProof(context.Background()), "insufficient funds")
	})
}

func TestBackoff(t *testing.T) {
	b := newBackoff(500*time.Millisecond, 8*time.Second)
	b.int64N = func(n int64) int64 { return n - 1 }

	var got []time.Duration
	for i := 0; i < 7; i++ {
		got = append(got, b.Next())
	}
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second,
		8 * time.Second, 8 * time.Second, 8 * time.Second,
	}, got)

	b.Reset()
	assert.Equal(t, 500*time.Millisecond, b.Next())

	t.Run("抖动下界", func(t *testing.T) {
		b := newBackoff(time.Second, 4*time.Second)
		b.int64N = func(int64) int64 { return 0 }
		assert.Equal(t, 500*time.Millisecond, b.Next())
	})
}

// ==================== 集成 ====================

func TestRoundWithRealComponents(t *testing.T) {
	fc := minertest.NewFakeChain()
	kp := minertest.NewKeypair(t, 9)
	fc.SetConfig(&types.Config{LastResetAt: chainNow, MinDifficulty: 0, TopBalance: 10})
	// cutoff = 0
	fc.SetProof(&types.Proof{Authority: kp.Pubkey(), Balance: 5, LastHashAt: chainNow - 60})
	fc.SetClock(&types.Clock{UnixTimestamp: chainNow})
	fc.SetBus(3, 99)

	hasher := minertest.NewFakeHasher(map[uint64]uint32{0: 12})
	sched := search.NewScheduler(search.Options{Workers: 1}, hasher, affinity.NopPinner, nil)

	store, err := memory.New(memoryconfig.New(nil))
	require.NoError(t, err)
	defer store.Close()

	bus := eventimpl.New()
	require.NoError(t, NewHistoryRecorder(store, nil).Subscribe(bus))

	ctrl := New(Deps{
		Chain:     fc,
		Authority: kp.Pubkey(),
		Searcher:  sched,
		Selector:  busselector.New(fc, nil, nil),
		Submitter: submitter.New(fc, kp, submitter.Options{ConfirmAttempts: 3, ConfirmInterval: time.Millisecond}, nil),
		EventBus:  bus,
		Clock:     clockimpl.NewMockClock(time.Unix(chainNow, 0)),
		Options:   minerconfig.New(nil).GetOptions(),
	})

	rec, err := ctrl.RunRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.RoundStatusConfirmed, rec.Status)
	assert.Equal(t, uint64(0), rec.Nonce)
	assert.Equal(t, uint32(12), rec.Difficulty)
	assert.Equal(t, pda.BusAddresses()[3], rec.Bus)
	require.Len(t, fc.Sent(), 1)

	bus.WaitAsync()
	saved, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, rec.ID, saved[0].ID)
	assert.Equal(t, types.RoundStatusConfirmed, saved[0].Status)
}

package search

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/weisyn/oreminer/internal/core/infrastructure/affinity"
	"github.com/weisyn/oreminer/internal/core/miner/testutil"
	"github.com/weisyn/oreminer/pkg/types"
)

const longCutoff = time.Hour

func newTestScheduler(workers int, hasher *testutil.FakeHasher) *Scheduler {
	s := NewScheduler(Options{Workers: workers}, hasher, affinity.NopPinner, testutil.NopLogger())
	s.available = 64
	return s
}

func TestPartition(t *testing.T) {
	t.Run("完整空间无缝覆盖", func(t *testing.T) {
		for _, n := range []int{1, 2, 3, 7, 16, 64} {
			ranges := Partition(FullSpace, n)
			require.Len(t, ranges, n)
			assert.Equal(t, uint64(0), ranges[0].Start)
			for i := 0; i+1 < len(ranges); i++ {
				assert.False(t, ranges[i].Inclusive)
				assert.Equal(t, ranges[i].End, ranges[i+1].Start, "n=%d i=%d", n, i)
				assert.Less(t, ranges[i].Start, ranges[i].End)
			}
			last := ranges[n-1]
			assert.Equal(t, uint64(math.MaxUint64), last.End)
			assert.True(t, last.Inclusive)
		}
	})

	t.Run("整除切分，余数归最后一段", func(t *testing.T) {
		assert.Equal(t, []Range{{0, 3, false}, {3, 6, false}, {6, 10, false}}, Partition(Range{Start: 0, End: 10}, 3))
		assert.Equal(t, []Range{{0, 8, false}, {8, 16, false}}, Partition(Range{Start: 0, End: 16}, 2))
	})

	t.Run("段数不超过 nonce 数", func(t *testing.T) {
		ranges := Partition(Range{Start: 100, End: 103}, 8)
		assert.Equal(t, []Range{{100, 101, false}, {101, 102, false}, {102, 103, false}}, ranges)
	})

	t.Run("空区间", func(t *testing.T) {
		assert.Nil(t, Partition(Range{Start: 5, End: 5}, 4))
		assert.True(t, Range{Start: 5, End: 5}.Empty())
		assert.False(t, Range{Start: 5, End: 5, Inclusive: true}.Empty())
	})
}

func TestGlobalBest(t *testing.T) {
	var g GlobalBest
	assert.True(t, g.Raise(5))
	assert.False(t, g.Raise(5))
	assert.False(t, g.Raise(3))
	assert.Equal(t, uint32(5), g.Load())

	var done atomic.Int32
	for i := 0; i < 32; i++ {
		go func(d uint32) {
			g.Raise(d)
			done.Add(1)
		}(uint32(i))
	}
	require.Eventually(t, func() bool { return done.Load() == 32 }, time.Second, time.Millisecond)
	assert.Equal(t, uint32(31), g.Load())
}

func TestSearchTwoWorkersSmallSpace(t *testing.T) {
	hasher := testutil.NewFakeHasher(map[uint64]uint32{
		1: 3, 5: 10, 9: 7, 14: 9,
	})
	s := newTestScheduler(2, hasher)

	res, err := s.SearchRange(context.Background(), Range{Start: 0, End: 16}, types.Challenge{}, longCutoff, 20)
	require.NoError(t, err)

	assert.Equal(t, uint64(5), res.Nonce)
	assert.Equal(t, uint32(10), res.Difficulty)
	assert.Equal(t, uint64(5), res.Solution.Nonce())
	assert.Equal(t, testutil.HashWithDifficulty(10, 5).D, res.Solution.D)
	assert.Equal(t, 2, res.Workers)
	assert.Equal(t, 2, hasher.Memories(), "每个工作线程一块工作区")

	// 未达到最低难度，所有 nonce 都被计算
	assert.Equal(t, uint64(16), res.Hashes)
	assert.Len(t, hasher.Evaluated(), 16)
}

func TestSearchReturnsMaxOverWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		table := map[uint64]uint32{}
		var wantNonce uint64
		var wantDiff uint32
		for n := uint64(0); n < 64; n++ {
			d := uint32(rng.Intn(12))
			table[n] = d
			if d > wantDiff {
				wantDiff, wantNonce = d, n
			}
		}
		workers := 1 + rng.Intn(8)
		res, err := newTestScheduler(workers, testutil.NewFakeHasher(table)).
			SearchRange(context.Background(), Range{Start: 0, End: 64}, types.Challenge{}, longCutoff, 64)
		require.NoError(t, err)
		assert.Equal(t, wantDiff, res.Difficulty, "round %d workers %d", round, workers)
		assert.Equal(t, wantNonce, res.Nonce, "round %d workers %d", round, workers)
	}
}

func TestSearchTieBreakLowestNonce(t *testing.T) {
	t.Run("跨线程", func(t *testing.T) {
		hasher := testutil.NewFakeHasher(map[uint64]uint32{3: 7, 9: 7, 12: 7})
		res, err := newTestScheduler(4, hasher).
			SearchRange(context.Background(), Range{Start: 0, End: 16}, types.Challenge{}, longCutoff, 32)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), res.Nonce)
	})

	t.Run("线程内", func(t *testing.T) {
		hasher := testutil.NewFakeHasher(map[uint64]uint32{10: 7, 12: 7})
		res, err := newTestScheduler(2, hasher).
			SearchRange(context.Background(), Range{Start: 0, End: 16}, types.Challenge{}, longCutoff, 32)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), res.Nonce)
	})
}

func TestSearchZeroCutoffEvaluatesAtLeastOne(t *testing.T) {
	hasher := testutil.NewFakeHasher(nil)
	s := newTestScheduler(4, hasher)

	res, err := s.SearchRange(context.Background(), Range{Start: 0, End: 400}, types.Challenge{}, 0, 0)
	require.NoError(t, err)

	// 每个线程恰好处理区间首个 nonce
	assert.Equal(t, []uint64{0, 100, 200, 300}, hasher.Evaluated())
	assert.Equal(t, uint64(4), res.Hashes)
	assert.Equal(t, uint32(0), res.Difficulty)
	assert.Equal(t, uint64(0), res.Nonce)
	assert.True(t, res.Hash.IsZero())
}

func TestSearchStopsWhenMinDifficultyReached(t *testing.T) {
	hasher := testutil.NewFakeHasher(map[uint64]uint32{5: 10})
	s := newTestScheduler(2, hasher)

	res, err := s.SearchRange(context.Background(), Range{Start: 0, End: 16}, types.Challenge{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), res.Nonce)
	assert.Equal(t, uint32(10), res.Difficulty)

	// 线程 0 在 nonce 5 处结束
	assert.Zero(t, hasher.Count(6))
	assert.Zero(t, hasher.Count(7))
	assert.LessOrEqual(t, res.Hashes, uint64(14))
}

func TestSearchKeepsGoingBelowMinDifficulty(t *testing.T) {
	hasher := testutil.NewFakeHasher(map[uint64]uint32{2: 4})
	res, err := newTestScheduler(1, hasher).
		SearchRange(context.Background(), Range{Start: 0, End: 8}, types.Challenge{}, 0, 5)
	require.NoError(t, err)

	// 截止时间已过但未达最低难度：扫完整个区间，仍返回最优候选
	assert.Equal(t, uint64(8), res.Hashes)
	assert.Equal(t, uint64(2), res.Nonce)
	assert.Equal(t, uint32(4), res.Difficulty)
}

func TestSearchSkipsNoSolution(t *testing.T) {
	hasher := testutil.NewFakeHasher(map[uint64]uint32{3: 9, 4: 2})
	hasher.NoSolution = map[uint64]bool{3: true}

	res, err := newTestScheduler(1, hasher).
		SearchRange(context.Background(), Range{Start: 0, End: 8}, types.Challenge{}, longCutoff, 32)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.Nonce)
	assert.Equal(t, uint64(8), res.Hashes, "无解的 nonce 也计入哈希数")
}

func TestSearchContextCancel(t *testing.T) {
	hasher := testutil.NewFakeHasher(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestScheduler(2, hasher).
		SearchRange(ctx, Range{Start: 0, End: 10_000}, types.Challenge{}, longCutoff, 32)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, res)
	assert.LessOrEqual(t, res.Hashes, uint64(2*ctxCheckInterval))
}

func TestSearchPinning(t *testing.T) {
	var calls atomic.Int32
	pinner := affinity.PinnerFunc(func(int) error {
		calls.Add(1)
		return affinity.ErrUnsupported
	})
	logger, logs := testutil.ObservedLogger()

	s := NewScheduler(Options{Workers: 3, PinCores: true}, testutil.NewFakeHasher(map[uint64]uint32{7: 5}), pinner, logger)
	s.available = 8

	res, err := s.SearchRange(context.Background(), Range{Start: 0, End: 9}, types.Challenge{}, longCutoff, 32)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), res.Nonce)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1, logs.FilterMessageSnippet("绑核失败").Len(), "绑核失败只告警一次")
}

func TestSearchPinsDistinctPhysicalCores(t *testing.T) {
	var mu sync.Mutex
	var pinned []int
	pinner := affinity.PinnerFunc(func(core int) error {
		mu.Lock()
		defer mu.Unlock()
		pinned = append(pinned, core)
		return nil
	})

	s := NewScheduler(Options{Workers: 2, PinCores: true}, testutil.NewFakeHasher(nil), pinner, testutil.NopLogger())
	// 容器只允许 4-7：4/6 与 5/7 为超线程兄弟
	s.topology = affinity.Topology{
		PhysicalCores:  2,
		ThreadsPerCore: 2,
		CPUs:           []int{4, 5, 6, 7},
		CoreOf:         map[int]int{4: 0, 6: 0, 5: 1, 7: 1},
	}
	s.available = s.topology.Available()

	_, err := s.SearchRange(context.Background(), Range{Start: 0, End: 8}, types.Challenge{}, longCutoff, 32)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{4, 5}, pinned, "两个线程分别绑定到不同物理核")
}

func TestWorkerCount(t *testing.T) {
	logger, logs := testutil.ObservedLogger()
	s := NewScheduler(Options{Workers: 16}, testutil.NewFakeHasher(nil), affinity.NopPinner, logger)
	s.available = 4

	assert.Equal(t, 4, s.WorkerCount())
	clamped := logs.FilterMessageSnippet("超过可用核心数").All()
	require.Len(t, clamped, 1)
	assert.Equal(t, zapcore.DebugLevel, clamped[0].Level, "告警由命令行控制台输出，调度器只记调试日志")

	s.opts.Workers = 0
	assert.Equal(t, 4, s.WorkerCount())
	s.opts.Workers = 2
	assert.Equal(t, 2, s.WorkerCount())
}

func TestMemoryBudget(t *testing.T) {
	b := &memoryBudget{ratio: 0.5, total: func() uint64 { return 1000 }}
	assert.Equal(t, 5, b.limit(8, 100, nil))
	assert.Equal(t, 3, b.limit(3, 100, nil))
	assert.Equal(t, 1, b.limit(8, 10_000, nil))

	unknown := &memoryBudget{ratio: 0.5, total: func() uint64 { return 0 }}
	assert.Equal(t, 8, unknown.limit(8, 100, nil))

	disabled := &memoryBudget{total: func() uint64 { return 1 }}
	assert.Equal(t, 8, disabled.limit(8, 100, nil))
}

func TestResultHashRate(t *testing.T) {
	r := &Result{Hashes: 100, Elapsed: 2 * time.Second}
	assert.InDelta(t, 50.0, r.HashRate(), 1e-9)
	assert.Zero(t, (&Result{Hashes: 5}).HashRate())
}

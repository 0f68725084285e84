// Package busselector 选择奖励余额最多的 bus
package busselector

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/weisyn/oreminer/internal/core/infrastructure/metrics"
	"github.com/weisyn/oreminer/pkg/interfaces/chain"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/types"
)

// Selector bus 选择器
type Selector struct {
	reader  chain.AccountReader
	logger  log.Logger
	metrics *metrics.MinerMetrics

	// intN 批量读取失败时的随机源
	intN func(n int) int
}

// New 创建选择器；m 可为 nil
func New(reader chain.AccountReader, logger log.Logger, m *metrics.MinerMetrics) *Selector {
	return &Selector{reader: reader, logger: logger, metrics: m, intN: rand.IntN}
}

type topBus struct {
	mu      sync.Mutex
	rewards uint64
	address types.Pubkey
}

func (t *topBus) offer(rewards uint64, address types.Pubkey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rewards > t.rewards {
		t.rewards = rewards
		t.address = address
	}
}

// Select 一次批量读取全部 bus，返回 rewards 最大者
//
//   - 缺失或无法解析的账户不参与比较
//   - 全部无法解析时返回 buses[0]
//   - 批量读取失败时从 buses 中均匀随机选一个
func (s *Selector) Select(ctx context.Context, buses []types.Pubkey) types.Pubkey {
	if len(buses) == 0 {
		return types.Pubkey{}
	}
	accounts, err := s.reader.GetMultipleAccounts(ctx, buses)
	if err != nil || len(accounts) != len(buses) {
		if s.logger != nil {
			s.logger.Warnf("读取 bus 账户失败，随机选择: %v", err)
		}
		return buses[s.intN(len(buses))]
	}

	top := &topBus{address: buses[0]}
	var wg sync.WaitGroup
	for i, data := range accounts {
		if data == nil {
			continue
		}
		wg.Add(1)
		go func(addr types.Pubkey, data []byte) {
			defer wg.Done()
			bus, err := types.DecodeBus(data)
			if err != nil {
				return
			}
			s.metrics.ObserveBus(bus.ID, bus.Rewards)
			top.offer(bus.Rewards, addr)
		}(buses[i], data)
	}
	wg.Wait()

	top.mu.Lock()
	defer top.mu.Unlock()
	return top.address
}

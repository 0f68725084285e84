// Package orchestrator 挖矿轮次控制
//
// 每一轮：读取 Config 与 Proof → 计算截止时间 → 并行搜索 → 判定是否附带 reset →
// 选择 bus → 构建并提交交易。轮次内的任何失败都不会终止循环；只有 ctx 取消
// （SIGINT/SIGTERM）才会退出。轮次的各个阶段以事件形式发布，终端输出、
// 通知、历史记录与 WebSocket 推送都通过订阅接入。
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	minerconfig "github.com/weisyn/oreminer/internal/config/miner"
	"github.com/weisyn/oreminer/internal/core/chain/pda"
	"github.com/weisyn/oreminer/internal/core/chain/tx"
	"github.com/weisyn/oreminer/internal/core/infrastructure/metrics"
	"github.com/weisyn/oreminer/internal/core/miner/policy"
	"github.com/weisyn/oreminer/internal/core/miner/search"
	"github.com/weisyn/oreminer/pkg/constants"
	"github.com/weisyn/oreminer/pkg/constants/events"
	"github.com/weisyn/oreminer/pkg/interfaces/chain"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/types"
)

// Searcher 并行 nonce 搜索（search.Scheduler 实现）
type Searcher interface {
	Search(ctx context.Context, challenge types.Challenge, cutoff time.Duration, minDifficulty uint32) (*search.Result, error)
}

// BusSelector bus 选择（busselector.Selector 实现）
type BusSelector interface {
	Select(ctx context.Context, buses []types.Pubkey) types.Pubkey
}

// Submitter 交易提交（submitter.Submitter 实现）
type Submitter interface {
	Submit(ctx context.Context, ixs []tx.Instruction, computeUnits uint32) (types.Signature, error)
}

// Deps 控制器依赖
type Deps struct {
	Chain     chain.Client
	Authority types.Pubkey
	Searcher  Searcher
	Selector  BusSelector
	Submitter Submitter
	EventBus  event.EventBus
	Clock     clock.Clock
	Metrics   *metrics.MinerMetrics
	Options   *minerconfig.MinerOptions
	Logger    log.Logger
}

// Controller 挖矿轮次控制器
type Controller struct {
	Deps
	allowReset  func() bool
	backoff     *backoff
	lastBalance *uint64
	sleep       func(ctx context.Context, d time.Duration) error
}

// New 创建控制器
func New(d Deps) *Controller {
	return &Controller{
		Deps:       d,
		allowReset: policy.NewResetThrottle(d.Options.ResetOneIn).Allow,
		backoff:    newBackoff(d.Options.BackoffInitial, d.Options.BackoffMax),
		sleep:      sleepContext,
	}
}

// Run 先确保 proof 账户存在，然后循环挖矿直到 ctx 取消
func (c *Controller) Run(ctx context.Context) error {
	if err := c.EnsureProof(ctx); err != nil {
		return err
	}
	for ctx.Err() == nil {
		if _, err := c.RunRound(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			wait := c.backoff.Next()
			c.warnf("本轮失败，%s 后重试: %v", wait, err)
			if c.sleep(ctx, wait) != nil {
				break
			}
			continue
		}
		c.backoff.Reset()
	}
	return nil
}

// EnsureProof proof 账户不存在时先提交 open
func (c *Controller) EnsureProof(ctx context.Context) error {
	_, err := c.Chain.GetProof(ctx, c.Authority)
	if err == nil {
		return nil
	}
	if !errors.Is(err, chain.ErrAccountNotFound) {
		return fmt.Errorf("读取 proof 账户: %w", err)
	}

	c.infof("proof 账户不存在，提交 open 指令")
	sig, err := c.Submitter.Submit(ctx, []tx.Instruction{tx.Open(c.Authority)}, constants.OpenComputeUnits)
	if err != nil {
		return fmt.Errorf("创建 proof 账户: %w", err)
	}
	c.infof("proof 账户已创建: %s", sig)
	return nil
}

// RunRound 执行一轮挖矿，返回本轮记录
func (c *Controller) RunRound(ctx context.Context) (*types.RoundRecord, error) {
	config, err := c.Chain.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取 config: %w", err)
	}
	proof, err := c.Chain.GetProof(ctx, c.Authority)
	if err != nil {
		return nil, fmt.Errorf("读取 proof: %w", err)
	}

	rec := &types.RoundRecord{
		ID:          uuid.NewString(),
		Status:      types.RoundStatusStarted,
		Authority:   c.Authority,
		StartedAt:   c.Clock.Now(),
		Balance:     proof.Balance,
		LastBalance: proof.Balance,
		Multiplier:  policy.Multiplier(proof.Balance, config.TopBalance),
	}
	if c.lastBalance != nil {
		rec.LastBalance = *c.lastBalance
	}
	balance := proof.Balance
	c.lastBalance = &balance

	// 截止时间：链上时钟不可用时使用默认值
	rec.CutoffSeconds = c.Options.DefaultCutoff
	if clk, err := c.Chain.GetClock(ctx); err == nil {
		rec.CutoffSeconds = policy.Cutoff(proof.LastHashAt, c.Options.BufferTime, clk.UnixTimestamp)
	} else {
		c.warnf("读取链上时钟失败，使用默认截止时间 %ds: %v", rec.CutoffSeconds, err)
	}
	rec.MinDifficulty = uint32(config.MinDifficulty)
	c.publish(events.EventTypeRoundStarted, rec)

	res, err := c.Searcher.Search(ctx, proof.Challenge, time.Duration(rec.CutoffSeconds)*time.Second, rec.MinDifficulty)
	if err != nil {
		return rec, fmt.Errorf("搜索: %w", err)
	}
	rec.Status = types.RoundStatusSolved
	rec.Nonce = res.Nonce
	rec.Difficulty = res.Difficulty
	rec.BestHash = res.Hash.String()
	rec.Hashes = res.Hashes
	rec.HashRate = res.HashRate()
	rec.Workers = res.Workers
	rec.Solution = res.Solution
	c.Metrics.ObserveSearch(rec)
	c.publish(events.EventTypeSolutionFound, rec)

	rec.Reset = c.shouldReset(ctx, config)
	rec.Bus = c.Selector.Select(ctx, pda.BusAddresses())

	proofAddr, _ := pda.ProofAddress(c.Authority)
	ixs := []tx.Instruction{tx.Auth(proofAddr)}
	units := constants.MineComputeUnits
	if rec.Reset {
		units += constants.ResetComputeUnits
		ixs = append(ixs, tx.Reset(c.Authority))
	}
	ixs = append(ixs, tx.Mine(c.Authority, c.Authority, rec.Bus, res.Solution))

	submitStart := time.Now()
	sig, err := c.Submitter.Submit(ctx, ixs, units)
	rec.EndedAt = c.Clock.Now()
	if !sig.IsZero() {
		rec.Signature = sig.String()
	}
	if err != nil {
		rec.Status = types.RoundStatusFailed
		rec.Error = err.Error()
		c.Metrics.ObserveRound(rec, 0)
		c.publish(events.EventTypeRoundFailed, rec)
		return rec, err
	}
	rec.Status = types.RoundStatusConfirmed
	c.Metrics.ObserveRound(rec, time.Since(submitStart).Seconds())
	c.publish(events.EventTypeRoundConfirmed, rec)
	return rec, nil
}

// shouldReset 读取最新链上时钟判定 epoch 重置，再按概率节流
func (c *Controller) shouldReset(ctx context.Context, config *types.Config) bool {
	clk, err := c.Chain.GetClock(ctx)
	if err != nil {
		return false
	}
	if !policy.ShouldReset(config.LastResetAt, constants.EpochDuration, c.Options.ResetBuffer, clk.UnixTimestamp) {
		return false
	}
	return c.allowReset()
}

// publish 发布记录快照，订阅方拿到的副本不受后续阶段修改影响
func (c *Controller) publish(topic event.EventType, rec *types.RoundRecord) {
	if c.EventBus == nil {
		return
	}
	c.EventBus.Publish(topic, rec.Clone())
}

func (c *Controller) infof(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Infof(format, args...)
	}
}

func (c *Controller) warnf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Warnf(format, args...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Package miner 装配挖矿模块：并行搜索、bus 选择、交易提交、通知与轮次控制
package miner

import (
	"context"

	"go.uber.org/fx"

	minerconfig "github.com/weisyn/oreminer/internal/config/miner"
	notifierconfig "github.com/weisyn/oreminer/internal/config/notifier"
	rpcconfig "github.com/weisyn/oreminer/internal/config/rpc"
	"github.com/weisyn/oreminer/internal/core/chain/tx"
	"github.com/weisyn/oreminer/internal/core/infrastructure/affinity"
	logimpl "github.com/weisyn/oreminer/internal/core/infrastructure/log"
	"github.com/weisyn/oreminer/internal/core/infrastructure/metrics"
	"github.com/weisyn/oreminer/internal/core/miner/busselector"
	"github.com/weisyn/oreminer/internal/core/miner/notifier"
	"github.com/weisyn/oreminer/internal/core/miner/orchestrator"
	"github.com/weisyn/oreminer/internal/core/miner/search"
	"github.com/weisyn/oreminer/internal/core/miner/submitter"
	"github.com/weisyn/oreminer/pkg/interfaces/chain"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 挖矿模块依赖
type ModuleParams struct {
	fx.In

	Options  *minerconfig.MinerOptions
	RPC      *rpcconfig.RPCOptions
	Notifier *notifierconfig.NotifierOptions
	Chain    chain.Client
	Signer   tx.Signer
	Hasher   crypto.HashFunction
	EventBus event.EventBus
	Clock    clock.Clock

	Metrics *metrics.MinerMetrics `optional:"true"`
	Logger  log.Logger            `optional:"true"`
}

// ModuleOutput 挖矿模块输出
type ModuleOutput struct {
	fx.Out

	Scheduler  *search.Scheduler
	Notifier   *notifier.Notifier
	Controller *orchestrator.Controller
}

// Module 返回挖矿模块
func Module() fx.Option {
	return fx.Module("miner",
		fx.Provide(ProvideMinerServices),
		fx.Invoke(RegisterSubscribers),
		fx.Invoke(StartMining),
	)
}

// ProvideMinerServices 组装挖矿组件
func ProvideMinerServices(p ModuleParams) ModuleOutput {
	logger := logimpl.NewModuleLogger(p.Logger, "miner")

	var pinner affinity.Pinner = affinity.NopPinner
	if p.Options.PinCores {
		pinner = affinity.Default()
	}
	sched := search.NewScheduler(search.Options{
		Workers:        p.Options.Cores,
		PinCores:       p.Options.PinCores,
		MaxMemoryRatio: p.Options.MaxMemoryRatio,
	}, p.Hasher, pinner, logger.With("component", "search"))

	sub := submitter.New(p.Chain, p.Signer, submitter.Options{
		PriorityFee:     p.RPC.PriorityFee,
		ConfirmAttempts: p.RPC.ConfirmAttempts,
		ConfirmInterval: p.RPC.ConfirmInterval,
	}, logger.With("component", "submitter"))

	ctrl := orchestrator.New(orchestrator.Deps{
		Chain:     p.Chain,
		Authority: p.Signer.Pubkey(),
		Searcher:  sched,
		Selector:  busselector.New(p.Chain, logger.With("component", "bus"), p.Metrics),
		Submitter: sub,
		EventBus:  p.EventBus,
		Clock:     p.Clock,
		Metrics:   p.Metrics,
		Options:   p.Options,
		Logger:    logger,
	})

	return ModuleOutput{
		Scheduler:  sched,
		Notifier:   notifier.New(p.Notifier, logger.With("component", "notifier")),
		Controller: ctrl,
	}
}

// SubscriberParams 事件订阅方
type SubscriberParams struct {
	fx.In

	EventBus event.EventBus
	Notifier *notifier.Notifier
	History  storage.HistoryStore `optional:"true"`
	Logger   log.Logger           `optional:"true"`
}

// RegisterSubscribers 注册通知与历史记录订阅
func RegisterSubscribers(p SubscriberParams) error {
	if err := p.Notifier.Subscribe(p.EventBus); err != nil {
		return err
	}
	if p.History == nil {
		return nil
	}
	recorder := orchestrator.NewHistoryRecorder(p.History, logimpl.NewModuleLogger(p.Logger, "history"))
	return recorder.Subscribe(p.EventBus)
}

// StartParams 挖矿循环的生命周期依赖
type StartParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Controller *orchestrator.Controller
	Logger     log.Logger `optional:"true"`
}

// StartMining 在独立 goroutine 中运行挖矿循环
//
// 启动阶段（读取/创建 proof 账户）失败时以退出码 1 关闭应用。
func StartMining(p StartParams) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	logger := logimpl.NewModuleLogger(p.Logger, "miner")

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := p.Controller.Run(ctx); err != nil {
					logger.Errorf("挖矿启动失败: %v", err)
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// Package metrics 提供 Prometheus 指标：挖矿轮次指标与内存采样
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	logInterface "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
)

const sampleInterval = 30 * time.Second

// RegistryOutput 同一个注册表以 Registerer 与 Gatherer 两种形式提供
type RegistryOutput struct {
	fx.Out

	Registry   *prometheus.Registry
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// ProvideRegistry 提供指标注册表
func ProvideRegistry() RegistryOutput {
	reg := NewRegistry()
	return RegistryOutput{Registry: reg, Registerer: reg, Gatherer: reg}
}

// SamplerParams 内存采样器依赖
type SamplerParams struct {
	fx.In

	Registerer prometheus.Registerer
	Logger     logInterface.Logger `optional:"true"`
}

// ProvideMemorySampler 提供内存采样器
func ProvideMemorySampler(p SamplerParams) (*MemorySampler, error) {
	var logger logInterface.Logger
	if p.Logger != nil {
		logger = p.Logger.With("module", "metrics")
	}
	return NewMemorySampler(p.Registerer, logger, sampleInterval)
}

// Module 返回 metrics 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			ProvideRegistry,
			NewMinerMetrics,
			ProvideMemorySampler,
		),
		fx.Invoke(StartMemorySampler),
	)
}

// StartMemorySampler 启动内存采样的生命周期管理
func StartMemorySampler(lifecycle fx.Lifecycle, sampler *MemorySampler) {
	// OnStart 的 ctx 在钩子返回后即失效，采样循环使用独立 ctx
	ctx, cancel := context.WithCancel(context.Background())
	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sampler.SampleOnce()
			go sampler.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

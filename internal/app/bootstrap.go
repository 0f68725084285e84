package app

import (
	"go.uber.org/fx"

	"github.com/weisyn/oreminer/internal/api"
	"github.com/weisyn/oreminer/internal/config"
	"github.com/weisyn/oreminer/internal/core/chain"
	"github.com/weisyn/oreminer/internal/core/infrastructure/clock"
	"github.com/weisyn/oreminer/internal/core/infrastructure/crypto"
	"github.com/weisyn/oreminer/internal/core/infrastructure/event"
	"github.com/weisyn/oreminer/internal/core/infrastructure/log"
	"github.com/weisyn/oreminer/internal/core/infrastructure/metrics"
	"github.com/weisyn/oreminer/internal/core/infrastructure/storage"
	"github.com/weisyn/oreminer/internal/core/miner"
	configiface "github.com/weisyn/oreminer/pkg/interfaces/config"
	eventiface "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
)

// Bootstrap 按层组织 fx 模块
type Bootstrap struct {
	opts *options
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 基础设施层：配置、日志、时钟、指标、哈希
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configiface.AppOptions { return b.opts }),
		config.Module(),
		log.Module(),
		metrics.Module(),
		clock.Module(),
		crypto.Module(),
	}
}

// SetupCommunicationLayer 通信与数据层：事件总线、历史存储、链访问
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),
		storage.Module(),
		chain.Module(),
	}
}

// SetupBusinessLayer 业务层：挖矿
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		miner.Module(),
	}
}

// SetupApplicationLayer 应用层：状态服务与终端输出
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	var modules []fx.Option
	if b.opts.enableAPI {
		modules = append(modules, api.Module())
	}
	if b.opts.console != nil {
		console := b.opts.console
		modules = append(modules, fx.Invoke(func(bus eventiface.EventBus) error {
			return console.Subscribe(bus)
		}))
	}
	return modules
}

// SetupModules 汇总各层模块，附加选项放在最后
func (b *Bootstrap) SetupModules() []fx.Option {
	var all []fx.Option
	all = append(all, b.SetupInfrastructureLayer()...)
	all = append(all, b.SetupCommunicationLayer()...)
	all = append(all, b.SetupBusinessLayer()...)
	all = append(all, b.SetupApplicationLayer()...)
	all = append(all, b.opts.extra...)
	return all
}

// CreateFxApp 构建 fx 应用；依赖错误通过 fx.App.Err 返回
func (b *Bootstrap) CreateFxApp() *fx.App {
	return fx.New(
		fx.Options(b.SetupModules()...),
		fx.NopLogger,
	)
}

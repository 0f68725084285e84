// Package config 提供应用配置管理功能
package config

import (
	"go.uber.org/fx"

	"github.com/weisyn/oreminer/internal/config/api"
	"github.com/weisyn/oreminer/internal/config/clock"
	"github.com/weisyn/oreminer/internal/config/log"
	"github.com/weisyn/oreminer/internal/config/miner"
	"github.com/weisyn/oreminer/internal/config/notifier"
	"github.com/weisyn/oreminer/internal/config/rpc"
	"github.com/weisyn/oreminer/internal/config/storage"
	"github.com/weisyn/oreminer/pkg/interfaces/config"
	"github.com/weisyn/oreminer/pkg/types"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(p config.Provider) *rpc.RPCOptions { return p.GetRPC() },
			func(p config.Provider) *miner.MinerOptions { return p.GetMiner() },
			func(p config.Provider) *log.LogOptions { return p.GetLog() },
			func(p config.Provider) *clock.ClockOptions { return p.GetClock() },
			func(p config.Provider) *api.APIOptions { return p.GetAPI() },
			func(p config.Provider) *storage.StorageOptions { return p.GetStorage() },
			func(p config.Provider) *notifier.NotifierOptions { return p.GetNotifier() },
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}
	return ConfigOutput{Provider: NewProvider(appConfig)}, nil
}

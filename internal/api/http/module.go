package http

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	apiconfig "github.com/weisyn/oreminer/internal/config/api"
	"github.com/weisyn/oreminer/internal/core/infrastructure/crypto/key"
	eventimpl "github.com/weisyn/oreminer/internal/core/infrastructure/event"
	logimpl "github.com/weisyn/oreminer/internal/core/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	logInterface "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/storage"
)

// ServerParams 状态服务依赖
type ServerParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Options    *apiconfig.APIOptions
	Clock      clock.Clock
	Logger     logInterface.Logger   `optional:"true"`
	Keypair    *key.Keypair          `optional:"true"`
	EventBus   event.EventBus        `optional:"true"`
	Bus        *eventimpl.EventBus   `optional:"true"`
	History    storage.HistoryStore  `optional:"true"`
	Gatherer   prometheus.Gatherer   `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// ProvideServer 创建状态服务；未启用时返回 nil
func ProvideServer(p ServerParams) *Server {
	if !p.Options.HTTP.Enabled {
		return nil
	}
	d := Deps{
		Config:     &p.Options.HTTP,
		Clock:      p.Clock,
		Logger:     logimpl.NewModuleLogger(p.Logger, "api"),
		EventBus:   p.EventBus,
		History:    p.History,
		Gatherer:   p.Gatherer,
		Registerer: p.Registerer,
	}
	if p.Keypair != nil {
		d.Authority = p.Keypair.Pubkey()
	}
	if p.Bus != nil {
		d.Tracker = p.Bus
	}
	server := NewServer(d)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error { return server.Start() },
		OnStop:  server.Stop,
	})
	return server
}

// Module 返回 HTTP 状态服务模块
func Module() fx.Option {
	return fx.Module("api.http",
		fx.Provide(ProvideServer),
		// 触发构造，生命周期钩子随之注册
		fx.Invoke(func(*Server) {}),
	)
}

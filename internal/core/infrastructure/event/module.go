// Package event 提供进程内事件总线
package event

import (
	"context"

	"go.uber.org/fx"

	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
)

// ModuleOutput 事件模块输出
type ModuleOutput struct {
	fx.Out

	EventBus event.EventBus
	Bus      *EventBus
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideEventBus),
	)
}

// ProvideEventBus 提供事件总线；停止时等待异步处理器执行完
func ProvideEventBus(lifecycle fx.Lifecycle) ModuleOutput {
	bus := New()
	lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			bus.WaitAsync()
			return nil
		},
	})
	return ModuleOutput{EventBus: bus, Bus: bus}
}

// Package clock 提供本地时间源：系统时钟、NTP 校正时钟与测试用时钟
package clock

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	clockconfig "github.com/weisyn/oreminer/internal/config/clock"
	infraClock "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/clock"
	logInterface "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
)

// ModuleParams 时钟模块依赖
type ModuleParams struct {
	fx.In

	Options  *clockconfig.ClockOptions
	Logger   logInterface.Logger   `optional:"true"`
	Registry prometheus.Registerer `optional:"true"`
}

// Module 返回时钟模块
func Module() fx.Option {
	return fx.Module("clock",
		fx.Provide(ProvideClock),
	)
}

// ProvideClock 根据配置选择时钟实现；NTP 时钟额外注册健康指标
func ProvideClock(params ModuleParams) (infraClock.Clock, error) {
	switch params.Options.Type {
	case "", "system":
		return NewSystemClock(), nil
	case "ntp":
		c := NewNTPClock(params.Options)
		if ok, offset, _, err := c.Health(); !ok && params.Logger != nil {
			params.Logger.Warnf("NTP 时钟初次同步异常: server=%s offset=%s err=%v", params.Options.NTPServer, offset, err)
		}
		if params.Registry != nil {
			if err := RegisterClockMetrics(params.Registry, c, params.Options.NTPServer); err != nil {
				return nil, fmt.Errorf("注册时钟指标失败: %w", err)
			}
		}
		return c, nil
	default:
		return nil, fmt.Errorf("未知时钟类型: %s", params.Options.Type)
	}
}

// Package api 装配本地状态服务
package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/oreminer/internal/api/http"
)

// Module 返回 API 模块
//
// 状态服务默认关闭（api.http.enabled），关闭时不监听任何端口。
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
	)
}

// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/weisyn/oreminer/internal/config/api"
	clockconfig "github.com/weisyn/oreminer/internal/config/clock"
	logconfig "github.com/weisyn/oreminer/internal/config/log"
	minerconfig "github.com/weisyn/oreminer/internal/config/miner"
	notifierconfig "github.com/weisyn/oreminer/internal/config/notifier"
	rpcconfig "github.com/weisyn/oreminer/internal/config/rpc"
	storageconfig "github.com/weisyn/oreminer/internal/config/storage"
)

// Provider 配置提供者接口
type Provider interface {
	// GetAppName 应用名称
	GetAppName() string

	// GetDataDir 数据目录
	GetDataDir() string

	// GetRPC 获取链上 RPC 配置
	GetRPC() *rpcconfig.RPCOptions

	// GetMiner 获取挖矿配置
	GetMiner() *minerconfig.MinerOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetClock 获取时钟配置
	GetClock() *clockconfig.ClockOptions

	// GetAPI 获取状态服务配置
	GetAPI() *apiconfig.APIOptions

	// GetStorage 获取轮次历史存储配置
	GetStorage() *storageconfig.StorageOptions

	// GetNotifier 获取通知配置
	GetNotifier() *notifierconfig.NotifierOptions
}

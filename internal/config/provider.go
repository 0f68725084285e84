package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

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

const (
	defaultAppName = "ore-miner"
	defaultDataDir = "./data"
)

// Provider 实现配置提供者接口
//
// 每个 GetX 都把对应的用户配置段交给 x.New，由各子包处理默认值与覆盖。
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{appConfig: appConfig}
}

// GetAppName 应用名称
func (p *Provider) GetAppName() string {
	if p.appConfig.AppName != nil && *p.appConfig.AppName != "" {
		return *p.appConfig.AppName
	}
	return defaultAppName
}

// GetDataDir 数据目录
func (p *Provider) GetDataDir() string {
	if p.appConfig.DataDir != nil && *p.appConfig.DataDir != "" {
		return *p.appConfig.DataDir
	}
	return defaultDataDir
}

// GetRPC 获取链上 RPC 配置
func (p *Provider) GetRPC() *rpc.RPCOptions {
	return rpc.New(p.appConfig.RPC).GetOptions()
}

// GetMiner 获取挖矿配置
func (p *Provider) GetMiner() *miner.MinerOptions {
	return miner.New(p.appConfig.Mining).GetOptions()
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetClock 获取时钟配置
func (p *Provider) GetClock() *clock.ClockOptions {
	return clock.New(p.appConfig.Clock).GetOptions()
}

// GetAPI 获取状态服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetStorage 获取轮次历史存储配置
func (p *Provider) GetStorage() *storage.StorageOptions {
	return storage.New(p.appConfig.Storage, p.GetDataDir())
}

// GetNotifier 获取通知配置
func (p *Provider) GetNotifier() *notifier.NotifierOptions {
	return notifier.New(p.appConfig.Notifier).GetOptions()
}

// LoadAppConfig 从 JSON 文件加载用户配置
//
// 文件不存在时返回空配置（全部使用默认值），解析失败返回错误。
func LoadAppConfig(path string) (*types.AppConfig, error) {
	if path == "" {
		return &types.AppConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &types.AppConfig{}, nil
		}
		return nil, fmt.Errorf("读取配置文件失败 %s: %w", path, err)
	}
	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败 %s: %w", path, err)
	}
	return &appConfig, nil
}

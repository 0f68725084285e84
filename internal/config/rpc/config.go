// Package rpc provides Solana RPC client configuration.
package rpc

import (
	"os"
	"path/filepath"
	"time"

	"github.com/weisyn/oreminer/pkg/types"
)

// RPCOptions 链上 RPC 配置
type RPCOptions struct {
	URL         string        `json:"url"`          // JSON-RPC 地址
	KeypairPath string        `json:"keypair"`      // 签名密钥文件
	Timeout     time.Duration `json:"timeout"`      // 单次请求超时
	PriorityFee uint64        `json:"priority_fee"` // micro-lamports / CU，0 表示不设置

	// 交易确认轮询
	ConfirmAttempts int           `json:"confirm_attempts"`
	ConfirmInterval time.Duration `json:"confirm_interval"`
}

const (
	defaultURL             = "https://api.mainnet-beta.solana.com"
	defaultTimeout         = 15 * time.Second
	defaultConfirmAttempts = 24
	defaultConfirmInterval = 2 * time.Second
)

// Config RPC配置实现
type Config struct {
	options *RPCOptions
}

// New 创建配置；优先级：环境变量 > 配置文件 > 默认值
// 环境变量：ORE_RPC_URL、ORE_KEYPAIR
func New(user *types.UserRPCConfig) *Config {
	opts := &RPCOptions{
		URL:             defaultURL,
		KeypairPath:     defaultKeypairPath(),
		Timeout:         defaultTimeout,
		ConfirmAttempts: defaultConfirmAttempts,
		ConfirmInterval: defaultConfirmInterval,
	}
	if user != nil {
		if user.URL != nil {
			opts.URL = *user.URL
		}
		if user.KeypairPath != nil {
			opts.KeypairPath = *user.KeypairPath
		}
		if user.TimeoutSeconds != nil && *user.TimeoutSeconds > 0 {
			opts.Timeout = time.Duration(*user.TimeoutSeconds) * time.Second
		}
		if user.PriorityFee != nil {
			opts.PriorityFee = *user.PriorityFee
		}
	}
	if v := os.Getenv("ORE_RPC_URL"); v != "" {
		opts.URL = v
	}
	if v := os.Getenv("ORE_KEYPAIR"); v != "" {
		opts.KeypairPath = v
	}
	return &Config{options: opts}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *RPCOptions { return c.options }

// defaultKeypairPath Solana CLI 的默认密钥位置
func defaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "id.json"
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}

// Package miner provides mining round configuration.
package miner

import (
	"time"

	"github.com/weisyn/oreminer/pkg/constants"
	"github.com/weisyn/oreminer/pkg/types"
)

// MinerOptions 挖矿配置
type MinerOptions struct {
	// === 搜索 ===
	Cores      int    `json:"cores"`       // 工作线程数，0 表示使用全部逻辑核
	BufferTime uint64 `json:"buffer_time"` // 截止时间提前量（秒）
	PinCores   bool   `json:"pin_cores"`   // 尝试把工作线程绑定到核心

	// === 链上参数 ===
	ResetOneIn     uint32  `json:"reset_one_in"`           // 满足重置条件后以 1/N 概率附带 reset
	ResetBuffer    int64   `json:"reset_buffer_seconds"`   // epoch 重置提前量
	DefaultCutoff  uint64  `json:"default_cutoff_seconds"` // 读取链上时钟失败时的截止时间
	MaxMemoryRatio float64 `json:"max_memory_ratio"`       // 工作区内存占物理内存的上限

	// === 失败退避 ===
	BackoffInitial time.Duration `json:"backoff_initial"`
	BackoffMax     time.Duration `json:"backoff_max"`
}

const (
	defaultBackoffInitial = 500 * time.Millisecond
	defaultBackoffMax     = 8 * time.Second
	defaultMaxMemoryRatio = 0.5
)

// Config 挖矿配置实现
type Config struct {
	options *MinerOptions
}

// New 创建挖矿配置
func New(user *types.UserMiningConfig) *Config {
	opts := defaultMinerOptions()
	if user != nil {
		if user.Cores != nil && *user.Cores >= 0 {
			opts.Cores = *user.Cores
		}
		if user.BufferSeconds != nil {
			opts.BufferTime = *user.BufferSeconds
		}
		if user.PinCores != nil {
			opts.PinCores = *user.PinCores
		}
		if user.ResetOneIn != nil && *user.ResetOneIn > 0 {
			opts.ResetOneIn = *user.ResetOneIn
		}
		if user.ResetBufferSecs != nil {
			opts.ResetBuffer = *user.ResetBufferSecs
		}
		if user.DefaultCutoff != nil {
			opts.DefaultCutoff = *user.DefaultCutoff
		}
		if user.BackoffInitialMs != nil && *user.BackoffInitialMs > 0 {
			opts.BackoffInitial = time.Duration(*user.BackoffInitialMs) * time.Millisecond
		}
		if user.BackoffMaxMs != nil && *user.BackoffMaxMs > 0 {
			opts.BackoffMax = time.Duration(*user.BackoffMaxMs) * time.Millisecond
		}
	}
	if opts.BackoffMax < opts.BackoffInitial {
		opts.BackoffMax = opts.BackoffInitial
	}
	return &Config{options: opts}
}

func defaultMinerOptions() *MinerOptions {
	return &MinerOptions{
		Cores:          0,
		BufferTime:     0,
		PinCores:       true,
		ResetOneIn:     constants.ResetThrottleOneIn,
		ResetBuffer:    constants.ResetSafetyBuffer,
		DefaultCutoff:  constants.DefaultCutoffSeconds,
		MaxMemoryRatio: defaultMaxMemoryRatio,
		BackoffInitial: defaultBackoffInitial,
		BackoffMax:     defaultBackoffMax,
	}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *MinerOptions { return c.options }

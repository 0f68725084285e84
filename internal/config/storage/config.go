// Package storage 轮次历史存储配置：选择后端并汇总各后端选项
package storage

import (
	"github.com/weisyn/oreminer/internal/config/storage/badger"
	"github.com/weisyn/oreminer/internal/config/storage/memory"
	"github.com/weisyn/oreminer/internal/config/storage/redis"
	"github.com/weisyn/oreminer/pkg/types"
)

// 历史存储后端
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// StorageOptions 历史存储配置
type StorageOptions struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend"`

	Badger *badger.BadgerOptions `json:"badger"`
	Memory *memory.MemoryOptions `json:"memory"`
	Redis  *redis.RedisOptions   `json:"redis"`
}

// New 创建历史存储配置；未知后端回落到 badger
func New(user *types.UserStorageConfig, dataDir string) *StorageOptions {
	opts := &StorageOptions{
		Enabled: true,
		Backend: BackendBadger,
		Badger:  badger.New(user, dataDir).GetOptions(),
		Memory:  memory.New(user).GetOptions(),
		Redis:   redis.New(user).GetOptions(),
	}
	if user != nil {
		if user.Enabled != nil {
			opts.Enabled = *user.Enabled
		}
		if user.Backend != nil {
			switch *user.Backend {
			case BackendBadger, BackendMemory, BackendRedis:
				opts.Backend = *user.Backend
			}
		}
	}
	return opts
}

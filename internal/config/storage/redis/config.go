// Package redis provides Redis history sink configuration.
package redis

import (
	"os"
	"time"

	"github.com/weisyn/oreminer/pkg/types"
)

// RedisOptions Redis 历史存储配置
type RedisOptions struct {
	URL         string        `json:"url"`
	Key         string        `json:"key"`     // 轮次列表键名，新记录 LPUSH 到表头
	MaxLen      int64         `json:"max_len"` // LTRIM 保留长度
	DialTimeout time.Duration `json:"dial_timeout"`
}

const (
	defaultURL         = "redis://127.0.0.1:6379/0"
	defaultKey         = "ore:miner:rounds"
	defaultMaxLen      = 10_000
	defaultDialTimeout = 5 * time.Second
)

// Config Redis配置实现
type Config struct {
	options *RedisOptions
}

// New 创建 Redis 配置，环境变量 ORE_REDIS_URL 优先
func New(user *types.UserStorageConfig) *Config {
	opts := &RedisOptions{
		URL:         defaultURL,
		Key:         defaultKey,
		MaxLen:      defaultMaxLen,
		DialTimeout: defaultDialTimeout,
	}
	if user != nil {
		if user.RedisURL != nil && *user.RedisURL != "" {
			opts.URL = *user.RedisURL
		}
		if user.RedisKey != nil && *user.RedisKey != "" {
			opts.Key = *user.RedisKey
		}
	}
	if v := os.Getenv("ORE_REDIS_URL"); v != "" {
		opts.URL = v
	}
	return &Config{options: opts}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *RedisOptions { return c.options }

// NewFromOptions 从选项创建配置
func NewFromOptions(options *RedisOptions) *Config {
	return &Config{options: options}
}

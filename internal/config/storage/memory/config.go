package memory

import (
	"time"

	"github.com/weisyn/oreminer/pkg/types"
)

// MemoryOptions 内存历史存储配置（bigcache）
type MemoryOptions struct {
	RetainWindow time.Duration `json:"retain_window"` // 记录保留时长
	CleanWindow  time.Duration `json:"clean_window"`  // 过期清理间隔
	MaxEntrySize int           `json:"max_entry_size"`
	MaxEntries   int           `json:"max_entries"` // 窗口内预估条目数
}

const (
	defaultRetainWindow = 24 * time.Hour
	defaultCleanWindow  = 10 * time.Minute
	defaultMaxEntrySize = 2048
	defaultMaxEntries   = 4096
)

// Config 内存存储配置实现
type Config struct {
	options *MemoryOptions
}

// New 创建内存存储配置
func New(user *types.UserStorageConfig) *Config {
	opts := &MemoryOptions{
		RetainWindow: defaultRetainWindow,
		CleanWindow:  defaultCleanWindow,
		MaxEntrySize: defaultMaxEntrySize,
		MaxEntries:   defaultMaxEntries,
	}
	if user != nil && user.RetainHour != nil && *user.RetainHour > 0 {
		opts.RetainWindow = time.Duration(*user.RetainHour) * time.Hour
	}
	return &Config{options: opts}
}

// GetOptions 获取完整的内存存储配置选项
func (c *Config) GetOptions() *MemoryOptions {
	return c.options
}

// NewFromOptions 从选项创建配置
func NewFromOptions(options *MemoryOptions) *Config {
	return &Config{options: options}
}

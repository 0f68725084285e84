package badger

import (
	"path/filepath"

	"github.com/weisyn/oreminer/pkg/types"
)

// BadgerOptions 轮次历史存储配置
type BadgerOptions struct {
	// === 基础配置 ===
	Path       string `json:"path"`        // 数据库存储路径
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入

	// === 基础性能配置 ===
	MemTableSize int64 `json:"mem_table_size"` // 内存表大小

	// === 保留策略 ===
	MaxRecords int `json:"max_records"` // 超出后删除最旧的记录，0 表示不限
}

const (
	defaultSyncWrites   = false
	defaultMemTableSize = 8 << 20 // 8MB，历史记录量很小
	defaultMaxRecords   = 100_000
)

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建配置，dataDir 为应用数据目录
func New(user *types.UserStorageConfig, dataDir string) *Config {
	opts := &BadgerOptions{
		Path:         filepath.Join(dataDir, "history"),
		SyncWrites:   defaultSyncWrites,
		MemTableSize: defaultMemTableSize,
		MaxRecords:   defaultMaxRecords,
	}
	if user != nil {
		if user.Path != nil && *user.Path != "" {
			opts.Path = *user.Path
		}
	}
	return &Config{options: opts}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{options: options}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *BadgerOptions { return c.options }

// GetPath 获取数据库存储路径
func (c *Config) GetPath() string { return c.options.Path }

// IsSyncWritesEnabled 是否同步写入
func (c *Config) IsSyncWritesEnabled() bool { return c.options.SyncWrites }

// GetMemTableSize 获取内存表大小
func (c *Config) GetMemTableSize() int64 { return c.options.MemTableSize }

package clock

import (
	"os"
	"strconv"
	"time"

	"github.com/weisyn/oreminer/pkg/types"
)

// ClockOptions 时钟配置
type ClockOptions struct {
	Type            string        `json:"type"` // system | ntp
	NTPServer       string        `json:"ntp_server"`
	SyncInterval    time.Duration `json:"sync_interval"`
	OffsetThreshold time.Duration `json:"offset_threshold"` // 判定不健康的偏移阈值

	// 回退与重试
	BackoffInitial time.Duration `json:"backoff_initial"`
	BackoffMax     time.Duration `json:"backoff_max"`
}

// Config 提供访问选项
type Config struct {
	options *ClockOptions
}

// New 创建配置；优先级：环境变量 > 配置文件 > 默认值
// 环境变量：
//
//	CLOCK_TYPE (system|ntp)
//	CLOCK_NTP_SERVER (如 time.google.com)
//	CLOCK_SYNC_INTERVAL_MS
func New(user *types.UserClockConfig) *Config {
	opts := &ClockOptions{
		Type:            defaultType,
		NTPServer:       defaultNTPServer,
		SyncInterval:    defaultSyncInterval,
		OffsetThreshold: defaultOffsetThreshold,
		BackoffInitial:  defaultBackoffInitial,
		BackoffMax:      defaultBackoffMax,
	}

	if user != nil {
		if user.Type != nil {
			opts.Type = *user.Type
		}
		if user.NTPServer != nil {
			opts.NTPServer = *user.NTPServer
		}
	}

	if v := os.Getenv("CLOCK_TYPE"); v != "" {
		opts.Type = v
	}
	if v := os.Getenv("CLOCK_NTP_SERVER"); v != "" {
		opts.NTPServer = v
	}
	if v := os.Getenv("CLOCK_SYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			opts.SyncInterval = time.Duration(n) * time.Millisecond
		}
	}

	return &Config{options: opts}
}

func (c *Config) GetOptions() *ClockOptions { return c.options }

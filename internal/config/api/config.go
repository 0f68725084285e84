// Package api provides configuration for the local status server.
package api

import (
	"fmt"
	"time"

	"github.com/weisyn/oreminer/pkg/types"
)

// APIOptions 状态服务配置
type APIOptions struct {
	HTTP HTTPConfig `json:"http"`
}

// HTTPConfig HTTP 状态服务配置
type HTTPConfig struct {
	Enabled bool   `json:"enabled"` // 是否启用（默认关闭）
	Host    string `json:"host"`    // 监听地址
	Port    int    `json:"port"`    // 监听端口

	EnableWebSocket bool `json:"enable_websocket"` // 是否启用 /ws 轮次事件推送
	EnableMetrics   bool `json:"enable_metrics"`   // 是否暴露 /metrics

	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// WebSocket 缓冲区
	ReadBufferSize  int `json:"read_buffer_size"`
	WriteBufferSize int `json:"write_buffer_size"`
}

// 默认值
const (
	defaultHTTPEnabled     = false
	defaultHTTPHost        = "127.0.0.1"
	defaultHTTPPort        = 28690
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultBufferSize      = 1024
)

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置
func New(user *types.UserAPIConfig) *Config {
	opts := &APIOptions{
		HTTP: HTTPConfig{
			Enabled:         defaultHTTPEnabled,
			Host:            defaultHTTPHost,
			Port:            defaultHTTPPort,
			EnableWebSocket: true,
			EnableMetrics:   true,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			ReadBufferSize:  defaultBufferSize,
			WriteBufferSize: defaultBufferSize,
		},
	}
	if user != nil {
		if user.HTTPEnabled != nil {
			opts.HTTP.Enabled = *user.HTTPEnabled
		}
		if user.HTTPHost != nil {
			opts.HTTP.Host = *user.HTTPHost
		}
		if user.HTTPPort != nil {
			opts.HTTP.Port = *user.HTTPPort
		}
	}
	return &Config{options: opts}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *APIOptions { return c.options }

// Addr 监听地址
func (o *HTTPConfig) Addr() string { return fmt.Sprintf("%s:%d", o.Host, o.Port) }

// Package notifier provides webhook notification configuration.
package notifier

import (
	"time"

	"github.com/weisyn/oreminer/pkg/types"
)

// NotifierOptions 通知配置
type NotifierOptions struct {
	WebhookURL        string        `json:"webhook_url"`        // 为空表示关闭通知
	MentionDifficulty uint32        `json:"mention_difficulty"` // 达到该难度时附带 @everyone
	ExplorerTxURL     string        `json:"explorer_tx_url"`    // 交易链接前缀
	Timeout           time.Duration `json:"timeout"`
}

const (
	defaultMentionDifficulty = 30
	defaultExplorerTxURL     = "https://solscan.io/tx/"
	defaultTimeout           = 10 * time.Second
)

// Config 通知配置实现
type Config struct {
	options *NotifierOptions
}

// New 创建通知配置
func New(user *types.UserNotifierConfig) *Config {
	opts := &NotifierOptions{
		MentionDifficulty: defaultMentionDifficulty,
		ExplorerTxURL:     defaultExplorerTxURL,
		Timeout:           defaultTimeout,
	}
	if user != nil {
		if user.WebhookURL != nil {
			opts.WebhookURL = *user.WebhookURL
		}
		if user.MentionDifficulty != nil {
			opts.MentionDifficulty = *user.MentionDifficulty
		}
		if user.ExplorerTxURL != nil {
			opts.ExplorerTxURL = *user.ExplorerTxURL
		}
	}
	return &Config{options: opts}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *NotifierOptions { return c.options }

// Enabled 是否配置了 webhook
func (c *Config) Enabled() bool { return c.options.WebhookURL != "" }

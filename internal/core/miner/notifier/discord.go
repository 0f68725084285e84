// Package notifier 挖矿成功后推送 Discord webhook 通知
//
// 通知在事件总线的异步处理器中发送，失败只记录日志，不影响挖矿轮次。
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	notifierconfig "github.com/weisyn/oreminer/internal/config/notifier"
	"github.com/weisyn/oreminer/internal/core/miner/policy"
	"github.com/weisyn/oreminer/pkg/constants/events"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/types"
)

const (
	embedTitle = "Mining Successful!"
	embedColor = 65280 // 绿色
)

// EmbedField Discord embed 字段
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Embed Discord embed
type Embed struct {
	Title       string       `json:"title"`
	Color       int          `json:"color"`
	Description string       `json:"description"`
	Fields      []EmbedField `json:"fields"`
	Timestamp   string       `json:"timestamp"`
}

// Payload webhook 请求体
type Payload struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

// Notifier Discord 通知器
type Notifier struct {
	opts   *notifierconfig.NotifierOptions
	client *http.Client
	logger log.Logger
	now    func() time.Time
}

// New 创建通知器
func New(opts *notifierconfig.NotifierOptions, logger log.Logger) *Notifier {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		opts:   opts,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

// Enabled 是否配置了 webhook
func (n *Notifier) Enabled() bool { return n != nil && n.opts.WebhookURL != "" }

// BuildPayload 由轮次记录构造通知内容
func (n *Notifier) BuildPayload(r *types.RoundRecord) Payload {
	embed := Embed{
		Title:       embedTitle,
		Color:       embedColor,
		Description: fmt.Sprintf("Wallet: %s", r.Authority),
		Fields: []EmbedField{
			{Name: "Stake Balance", Value: policy.AmountToString(r.Balance) + " ORE", Inline: true},
			{Name: "Difficulty", Value: fmt.Sprintf("%d", r.Difficulty), Inline: true},
			{Name: "Details", Value: fmt.Sprintf("[Solscan](%s%s)", n.opts.ExplorerTxURL, r.Signature), Inline: true},
		},
		Timestamp: n.now().UTC().Format(time.RFC3339),
	}
	p := Payload{Embeds: []Embed{embed}}
	if r.Difficulty >= n.opts.MentionDifficulty {
		p.Content = "@everyone"
	}
	return p
}

// Notify 发送通知
func (n *Notifier) Notify(ctx context.Context, r *types.RoundRecord) error {
	body, err := json.Marshal(n.BuildPayload(r))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建 webhook 请求: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送 webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook 返回状态 %d", resp.StatusCode)
	}
	return nil
}

// OnRoundConfirmed 事件处理器：发送通知，失败只记录日志
func (n *Notifier) OnRoundConfirmed(r *types.RoundRecord) {
	if !n.Enabled() || r == nil {
		return
	}
	if err := n.Notify(context.Background(), r); err != nil {
		if n.logger != nil {
			n.logger.Errorf("Discord 通知发送失败: %v", err)
		}
		return
	}
	if n.logger != nil {
		n.logger.Info("Discord notification sent successfully.")
	}
}

// Subscribe 订阅交易确认事件；未配置 webhook 时不订阅
func (n *Notifier) Subscribe(bus event.EventBus) error {
	if !n.Enabled() {
		return nil
	}
	return bus.SubscribeAsync(events.EventTypeRoundConfirmed, n.OnRoundConfirmed, false)
}

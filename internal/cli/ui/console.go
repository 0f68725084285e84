// Package ui 挖矿客户端的终端输出
package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/weisyn/oreminer/internal/core/miner/policy"
	"github.com/weisyn/oreminer/pkg/constants/events"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/oreminer/pkg/types"
)

var (
	warningStyle = pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	errorStyle   = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	successStyle = pterm.NewStyle(pterm.FgGreen, pterm.Bold)
)

// Console 面向用户的逐轮输出
//
// 与日志分开：日志给运维看，Console 输出质押余额与交易结果。
type Console struct {
	out io.Writer

	mu   sync.Mutex
	seen bool // 是否已输出过一轮（首轮不显示 Change）
}

// NewConsole 创建终端输出；out 不是终端时关闭颜色
func NewConsole(out io.Writer) *Console {
	if !IsTerminal(out) {
		pterm.DisableColor()
	}
	return &Console{out: out}
}

// IsTerminal out 是否连接到终端
func IsTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StakeBanner 输出本轮质押余额、相对上轮的变化与收益倍数
func (c *Console) StakeBanner(r *types.RoundRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pterm.Fprintln(c.out, "\n\nStake: "+policy.AmountToString(r.Balance)+" ORE")
	if c.seen {
		pterm.Fprintln(c.out, "  Change: "+policy.AmountChange(r.LastBalance, r.Balance)+" ORE")
	}
	pterm.Fprintln(c.out, fmt.Sprintf("  Multiplier: %12sx", strconv.FormatFloat(r.Multiplier, 'f', -1, 64)))
	c.seen = true
}

// Warning 黄色 WARNING 行
func (c *Console) Warning(msg string) {
	c.line(warningStyle.Sprint("WARNING") + " " + msg)
}

// Error 红色 ERROR 行
func (c *Console) Error(msg string) {
	c.line(errorStyle.Sprint("ERROR") + ": " + msg)
}

// Success 绿色粗体行
func (c *Console) Success(msg string) {
	c.line(successStyle.Sprint(msg))
}

func (c *Console) line(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pterm.Fprintln(c.out, s)
}

// OnRoundStarted 输出质押信息
func (c *Console) OnRoundStarted(r *types.RoundRecord) { c.StakeBanner(r) }

// OnRoundConfirmed 输出交易确认
func (c *Console) OnRoundConfirmed(*types.RoundRecord) {
	c.Success("Transaction confirmed successfully.")
}

// OnRoundFailed 输出提交错误
func (c *Console) OnRoundFailed(r *types.RoundRecord) {
	c.Error(r.Error)
}

// Subscribe 同步订阅轮次事件，输出顺序与轮次推进一致
func (c *Console) Subscribe(bus event.EventBus) error {
	if err := bus.Subscribe(events.EventTypeRoundStarted, c.OnRoundStarted); err != nil {
		return err
	}
	if err := bus.Subscribe(events.EventTypeRoundConfirmed, c.OnRoundConfirmed); err != nil {
		return err
	}
	return bus.Subscribe(events.EventTypeRoundFailed, c.OnRoundFailed)
}

// HistoryTable 以表格输出轮次历史
func (c *Console) HistoryTable(records []*types.RoundRecord) error {
	if len(records) == 0 {
		c.line("No rounds recorded.")
		return nil
	}
	data := [][]string{{"Started", "Status", "Duration", "Difficulty", "Hash rate", "Stake (ORE)", "Signature"}}
	for _, r := range records {
		data = append(data, []string{
			r.StartedAt.Local().Format(time.DateTime),
			string(r.Status),
			roundDuration(r),
			strconv.FormatUint(uint64(r.Difficulty), 10),
			fmt.Sprintf("%.2f H/s", r.HashRate),
			policy.AmountToString(r.Balance),
			shorten(r.Signature, 16),
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("渲染历史表格失败: %w", err)
	}
	c.line(out)
	return nil
}

func roundDuration(r *types.RoundRecord) string {
	if r.EndedAt.IsZero() || r.EndedAt.Before(r.StartedAt) {
		return "-"
	}
	return policy.FormatDuration(uint64(r.EndedAt.Sub(r.StartedAt) / time.Second))
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// BusTable 输出各 bus 的当前奖励；取不到的账户显示为 -
func (c *Console) BusTable(addresses []types.Pubkey, buses []*types.Bus) error {
	data := [][]string{{"ID", "Address", "Rewards (ORE)", "Top balance (ORE)"}}
	for i, addr := range addresses {
		row := []string{strconv.Itoa(i), addr.String(), "-", "-"}
		if i < len(buses) && buses[i] != nil {
			b := buses[i]
			row[0] = strconv.FormatUint(b.ID, 10)
			row[2] = policy.AmountToString(b.Rewards)
			row[3] = policy.AmountToString(b.TopBalance)
		}
		data = append(data, row)
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("渲染 bus 表格失败: %w", err)
	}
	c.line(out)
	return nil
}

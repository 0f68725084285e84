// Package types provides event type definitions.
package types

import "time"

// RoundStatus 轮次状态
type RoundStatus string

const (
	RoundStatusStarted   RoundStatus = "started"
	RoundStatusSolved    RoundStatus = "solved"
	RoundStatusConfirmed RoundStatus = "confirmed"
	RoundStatusFailed    RoundStatus = "failed"
)

// RoundRecord 一轮挖矿的摘要
//
// 随轮次推进逐步填充，作为事件参数发布，并由历史存储持久化。
type RoundRecord struct {
	ID        string      `json:"id"`
	Status    RoundStatus `json:"status"`
	Authority Pubkey      `json:"authority"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   time.Time   `json:"ended_at,omitempty"`

	// proof 快照
	Balance     uint64  `json:"balance"`
	LastBalance uint64  `json:"last_balance"` // 上一轮的余额，首轮等于 Balance
	Multiplier  float64 `json:"multiplier"`

	// 搜索结果
	CutoffSeconds uint64  `json:"cutoff_seconds"`
	Workers       int     `json:"workers"`
	Nonce         uint64  `json:"nonce"`
	Difficulty    uint32  `json:"difficulty"`
	MinDifficulty uint32  `json:"min_difficulty"`
	BestHash      string  `json:"best_hash,omitempty"`
	Hashes        uint64  `json:"hashes"`
	HashRate      float64 `json:"hash_rate"`

	// 提交结果
	Bus       Pubkey `json:"bus"`
	Reset     bool   `json:"reset"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`

	// Solution 本轮答案（通知时用于重新计算难度）
	Solution Solution `json:"-"`
}

// Clone 返回副本，事件订阅方只应持有副本
func (r *RoundRecord) Clone() *RoundRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

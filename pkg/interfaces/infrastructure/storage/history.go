// Package storage 定义轮次历史存储接口
package storage

import (
	"context"

	"github.com/weisyn/oreminer/pkg/types"
)

// HistoryStore 轮次历史存储
//
// 记录以 (StartedAt, ID) 排序；同一记录重复保存时覆盖。
type HistoryStore interface {
	// Save 保存一条轮次记录
	Save(ctx context.Context, record *types.RoundRecord) error

	// List 按时间倒序返回最近 limit 条记录，limit <= 0 时返回全部
	List(ctx context.Context, limit int) ([]*types.RoundRecord, error)

	// Close 关闭存储
	Close() error
}

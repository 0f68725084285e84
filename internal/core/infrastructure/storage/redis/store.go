// Package redis 将轮次历史写入 Redis 列表，供外部看板读取
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	redisconfig "github.com/weisyn/oreminer/internal/config/storage/redis"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/oreminer/pkg/types"
)

// Store Redis 历史存储
//
// 新记录 LPUSH 到表头并按 MaxLen 裁剪，因此 LRANGE 0..n 即为时间倒序。
// 同一轮次的多次保存会各自入列，List 时按 ID 去重保留最新一条。
type Store struct {
	client *goredis.Client
	key    string
	maxLen int64
}

var _ storage.HistoryStore = (*Store)(nil)

// New 连接 Redis 并校验可用性
func New(ctx context.Context, config *redisconfig.Config) (*Store, error) {
	opts := config.GetOptions()
	clientOpts, err := goredis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("解析 Redis 地址失败: %w", err)
	}
	clientOpts.DialTimeout = opts.DialTimeout
	return NewWithClient(ctx, goredis.NewClient(clientOpts), opts)
}

// NewWithClient 使用已有客户端
func NewWithClient(ctx context.Context, client *goredis.Client, opts *redisconfig.RedisOptions) (*Store, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return &Store{client: client, key: opts.Key, maxLen: opts.MaxLen}, nil
}

// Save 写入一条记录
func (s *Store) Save(ctx context.Context, record *types.RoundRecord) error {
	if record == nil {
		return nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("编码历史记录失败: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, raw)
	if s.maxLen > 0 {
		pipe.LTrim(ctx, s.key, 0, s.maxLen-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入 Redis 失败: %w", err)
	}
	return nil
}

// List 按时间倒序返回最近 limit 条记录
func (s *Store) List(ctx context.Context, limit int) ([]*types.RoundRecord, error) {
	raws, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("读取 Redis 失败: %w", err)
	}
	seen := make(map[string]bool, len(raws))
	var out []*types.RoundRecord
	for _, raw := range raws {
		var r types.RoundRecord
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("解析历史记录失败: %w", err)
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, &r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Close 关闭连接
func (s *Store) Close() error {
	return s.client.Close()
}

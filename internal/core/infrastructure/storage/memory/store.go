// Package memory 提供基于BigCache的轮次历史存储
//
// 记录在保留窗口后过期，适合不需要落盘的场景。
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/allegro/bigcache/v3"

	memoryconfig "github.com/weisyn/oreminer/internal/config/storage/memory"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/oreminer/pkg/types"
)

// indexEntry 排序索引项
type indexEntry struct {
	startedAt int64
	id        string
}

// Store 内存历史存储
//
// bigcache 只支持按键读取，时间顺序由 index 维护；已过期的键在 List 时移除。
type Store struct {
	cache *bigcache.BigCache

	mu    sync.Mutex
	index []indexEntry
	known map[string]int64
}

var _ storage.HistoryStore = (*Store)(nil)

// New 创建内存历史存储
func New(config *memoryconfig.Config) (*Store, error) {
	opts := config.GetOptions()
	cfg := bigcache.DefaultConfig(opts.RetainWindow)
	cfg.CleanWindow = opts.CleanWindow
	cfg.MaxEntrySize = opts.MaxEntrySize
	cfg.MaxEntriesInWindow = opts.MaxEntries
	cfg.Shards = 16
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("创建BigCache实例失败: %w", err)
	}
	return &Store{cache: cache, known: make(map[string]int64)}, nil
}

// Save 保存一条轮次记录
func (s *Store) Save(_ context.Context, record *types.RoundRecord) error {
	if record == nil {
		return nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("编码历史记录失败: %w", err)
	}
	if err := s.cache.Set(record.ID, raw); err != nil {
		return fmt.Errorf("写入历史记录失败: %w", err)
	}

	startedAt := record.StartedAt.UnixNano()
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.known[record.ID]; ok && prev == startedAt {
		return nil
	}
	s.known[record.ID] = startedAt
	s.index = append(s.index, indexEntry{startedAt: startedAt, id: record.ID})
	sort.SliceStable(s.index, func(i, j int) bool {
		if s.index[i].startedAt != s.index[j].startedAt {
			return s.index[i].startedAt < s.index[j].startedAt
		}
		return s.index[i].id < s.index[j].id
	})
	return nil
}

// List 按时间倒序返回最近 limit 条记录
func (s *Store) List(ctx context.Context, limit int) ([]*types.RoundRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*types.RoundRecord
	stale := false
	for i := len(s.index) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := s.index[i]
		if known, ok := s.known[e.id]; !ok || known != e.startedAt {
			stale = true
			continue
		}
		if limit > 0 && len(out) >= limit {
			continue
		}
		raw, err := s.cache.Get(e.id)
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			delete(s.known, e.id)
			stale = true
			continue
		}
		if err != nil {
			return nil, err
		}
		var r types.RoundRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("解析历史记录失败: %w", err)
		}
		out = append(out, &r)
	}

	if stale {
		alive := s.index[:0]
		for _, e := range s.index {
			if known, ok := s.known[e.id]; ok && known == e.startedAt {
				alive = append(alive, e)
			}
		}
		s.index = alive
	}
	return out, nil
}

// Len 当前索引中的记录数
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

// Close 释放缓存
func (s *Store) Close() error {
	return s.cache.Close()
}

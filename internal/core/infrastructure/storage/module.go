// Package storage 按配置装配轮次历史存储
package storage

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	storageconfig "github.com/weisyn/oreminer/internal/config/storage"
	badgerconfig "github.com/weisyn/oreminer/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/oreminer/internal/config/storage/memory"
	redisconfig "github.com/weisyn/oreminer/internal/config/storage/redis"
	"github.com/weisyn/oreminer/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/oreminer/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/oreminer/internal/core/infrastructure/storage/redis"
	log "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/oreminer/pkg/types"
)

// NopStore 关闭历史记录时使用
type NopStore struct{}

func (NopStore) Save(context.Context, *types.RoundRecord) error { return nil }
func (NopStore) List(context.Context, int) ([]*types.RoundRecord, error) {
	return nil, nil
}
func (NopStore) Close() error { return nil }

// NewHistoryStore 按后端创建历史存储
func NewHistoryStore(ctx context.Context, opts *storageconfig.StorageOptions, logger log.Logger) (storage.HistoryStore, error) {
	if !opts.Enabled {
		return NopStore{}, nil
	}
	switch opts.Backend {
	case storageconfig.BackendMemory:
		return memory.New(memoryconfig.NewFromOptions(opts.Memory))
	case storageconfig.BackendRedis:
		return redis.New(ctx, redisconfig.NewFromOptions(opts.Redis))
	case storageconfig.BackendBadger, "":
		return badger.New(badgerconfig.NewFromOptions(opts.Badger), logger)
	default:
		return nil, fmt.Errorf("未知历史存储后端: %s", opts.Backend)
	}
}

// ModuleParams 存储模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Options   *storageconfig.StorageOptions
	Logger    log.Logger `optional:"true"`
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideHistoryStore),
	)
}

// ProvideHistoryStore 创建历史存储并在停止时关闭
func ProvideHistoryStore(p ModuleParams) (storage.HistoryStore, error) {
	var logger log.Logger
	if p.Logger != nil {
		logger = p.Logger.With("module", "storage")
	}
	store, err := NewHistoryStore(context.Background(), p.Options, logger)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error { return store.Close() },
	})
	return store, nil
}

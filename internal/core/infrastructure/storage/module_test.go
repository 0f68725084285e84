package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageconfig "github.com/weisyn/oreminer/internal/config/storage"
	"github.com/weisyn/oreminer/pkg/types"
)

func TestNewHistoryStoreBackends(t *testing.T) {
	ctx := context.Background()

	t.Run("关闭时返回空实现", func(t *testing.T) {
		opts := storageconfig.New(&types.UserStorageConfig{Enabled: types.BoolPtr(false)}, t.TempDir())
		store, err := NewHistoryStore(ctx, opts, nil)
		require.NoError(t, err)
		assert.IsType(t, NopStore{}, store)
	})

	for _, backend := range []string{"badger", "memory"} {
		t.Run(backend, func(t *testing.T) {
			opts := storageconfig.New(&types.UserStorageConfig{Backend: types.StringPtr(backend)}, t.TempDir())
			store, err := NewHistoryStore(ctx, opts, nil)
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Save(ctx, &types.RoundRecord{ID: "r", StartedAt: time.Now()}))
			all, err := store.List(ctx, 10)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "r", all[0].ID)
		})
	}
}

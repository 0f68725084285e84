package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/oreminer/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/oreminer/pkg/types"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ORE_RPC_URL", "")
	t.Setenv("ORE_KEYPAIR", "")
}

func writeKeypair(t *testing.T) string {
	t.Helper()
	kp, err := key.NewKeypairFromSeed(make([]byte, 32))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, key.SaveKeypair(path, kp))
	return path
}

// deadRPC 返回一个已关闭的 RPC 地址，请求会立即被拒绝
func deadRPC(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()
	return url
}

func testConfig(t *testing.T, keypair, rpcURL string) *types.AppConfig {
	return &types.AppConfig{
		DataDir: types.StringPtr(t.TempDir()),
		RPC: &types.UserRPCConfig{
			URL:         types.StringPtr(rpcURL),
			KeypairPath: types.StringPtr(keypair),
		},
		Log:     &types.UserLogConfig{Level: types.StringPtr("error")},
		Storage: &types.UserStorageConfig{Backend: types.StringPtr("memory")},
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("读取文件并应用覆盖", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "miner.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"rpc":{"url":"http://node:8899","priority_fee":10}}`), 0o600))

		cfg, err := LoadConfig(
			WithConfigFile(path),
			WithOverride(func(c *types.AppConfig) { c.RPC.PriorityFee = types.UInt64Ptr(500) }),
		)
		require.NoError(t, err)
		assert.Equal(t, "http://node:8899", *cfg.RPC.URL)
		assert.Equal(t, uint64(500), *cfg.RPC.PriorityFee)
	})

	t.Run("文件不存在时使用默认配置", func(t *testing.T) {
		cfg, err := LoadConfig(WithConfigFile(filepath.Join(t.TempDir(), "missing.json")))
		require.NoError(t, err)
		assert.Nil(t, cfg.RPC)
	})

	t.Run("文件格式错误", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "miner.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"rpc":`), 0o600))
		_, err := LoadConfig(WithConfigFile(path))
		assert.Error(t, err)
	})

	t.Run("直接给定配置时忽略文件", func(t *testing.T) {
		given := &types.AppConfig{AppName: types.StringPtr("x")}
		cfg, err := LoadConfig(WithConfigFile("/nonexistent/miner.json"), WithAppConfig(given))
		require.NoError(t, err)
		assert.Same(t, given, cfg)
	})
}

func TestNew(t *testing.T) {
	clearEnv(t)

	t.Run("密钥文件无效", func(t *testing.T) {
		cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.json"), "http://127.0.0.1:8899")
		_, err := New(WithAppConfig(cfg))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "加载密钥")
	})

	t.Run("依赖图完整", func(t *testing.T) {
		cfg := testConfig(t, writeKeypair(t), "http://127.0.0.1:8899")
		a, err := New(WithAppConfig(cfg))
		require.NoError(t, err)
		require.NotNil(t, a)
	})
}

func TestRun(t *testing.T) {
	clearEnv(t)

	t.Run("读取proof失败时以退出码1结束", func(t *testing.T) {
		cfg := testConfig(t, writeKeypair(t), deadRPC(t))
		a, err := New(WithAppConfig(cfg), WithoutAPI())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		err = a.Run(ctx)
		require.Error(t, err)

		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.Code)
	})
}

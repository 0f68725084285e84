package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logconfig "github.com/weisyn/oreminer/internal/config/log"
	"github.com/weisyn/oreminer/pkg/types"
)

func TestFileOutputIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "miner.log")
	cfg := logconfig.New(&types.UserLogConfig{
		Level:    types.StringPtr("debug"),
		FilePath: types.StringPtr(path),
	})
	cfg.GetOptions().ToConsole = false

	logger, err := New(cfg)
	require.NoError(t, err)

	logger.With("round", "r-1", "difficulty", 21).Info("找到解")
	require.NoError(t, logger.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.Equal(t, "找到解", entry["message"])
	assert.Equal(t, "r-1", entry["round"])
	assert.EqualValues(t, 21, entry["difficulty"])
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := NewFromZap(zap.New(core))

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warnf("bus %d 读取失败", 3)
	logger.Error("提交失败")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "bus 3 读取失败", logs.All()[0].Message)
}

func TestModuleLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := NewFromZap(zap.New(core))

	NewModuleLogger(base, "miner").Info("启动")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "miner", logs.All()[0].ContextMap()["module"])
}

func TestToZapFieldsDropsDanglingKey(t *testing.T) {
	fields := toZapFields("a", 1, "b")
	require.Len(t, fields, 1)
	assert.Equal(t, "a", fields[0].Key)
}

func TestGlobalLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	old := GetLogger()
	defer SetLogger(old)

	SetLogger(NewFromZap(zap.New(core)))
	Infof("hashes=%d", 42)
	SetLogger(nil) // nil 被忽略

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hashes=42", logs.All()[0].Message)
}

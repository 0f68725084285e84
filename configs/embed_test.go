package configs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/oreminer/pkg/types"
)

func TestMinerConfig(t *testing.T) {
	var cfg types.AppConfig
	require.NoError(t, json.Unmarshal(MinerConfig(), &cfg))
	require.NotNil(t, cfg.RPC)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", *cfg.RPC.URL)
	require.NotNil(t, cfg.Mining)
	assert.Equal(t, uint32(100), *cfg.Mining.ResetOneIn)
	require.NotNil(t, cfg.API)
	assert.False(t, *cfg.API.HTTPEnabled)

	t.Run("返回副本", func(t *testing.T) {
		b := MinerConfig()
		b[0] = 'x'
		assert.Equal(t, byte('{'), MinerConfig()[0])
	})
}

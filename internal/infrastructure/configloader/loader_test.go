package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "chain:\n  chainID: 130\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, uint64(130), cfg.Chain.ChainID)
	assert.Equal(t, 3, cfg.Chain.MaxRetries)
	assert.Equal(t, int64(1000), cfg.Chain.RetryDelayMs)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, 30, cfg.CoinGecko.MaxSymbolsPerRequest)
	assert.Equal(t, 60, cfg.Refresh.IntervalSeconds)
	assert.Equal(t, 300, cfg.Transactions.ConfirmTimeoutSeconds)
	assert.Equal(t, 10, cfg.Performance.MaxConcurrentRoutines)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
chain:
  chainID: 1
  maxRetries: 7
  retryDelayMs: 250
refresh:
  intervalSeconds: 15
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Chain.MaxRetries)
	assert.Equal(t, int64(250), cfg.Chain.RetryDelayMs)
	assert.Equal(t, 15, cfg.Refresh.IntervalSeconds)
}

func TestLoadEnvOverlay(t *testing.T) {
	t.Setenv("COINGECKO_API_KEY", "cg-secret")
	t.Setenv("RPC_URL", "https://rpc.example.org")
	t.Setenv("SIGNER_PRIVATE_KEY", "deadbeef")
	t.Setenv("CHAIN_ID", "11155111")

	path := writeConfig(t, "chain:\n  chainID: 130\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cg-secret", cfg.CoinGecko.APIKey)
	assert.Equal(t, "https://rpc.example.org", cfg.Chain.RPCURLOverride)
	assert.Equal(t, "deadbeef", cfg.Chain.SignerPrivateKey)
	assert.Equal(t, uint64(11155111), cfg.Chain.ChainID, "env chain id overrides YAML")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "chain: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "monitor"
log_level = "debug"

[bot]
pairs = ["WBTC/USDT"]
profit_threshold_pct = 2.5
scan_interval = "90s"

[chain]
network = "bsc"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monitor", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"WBTC/USDT"}, cfg.Bot.Pairs)
	assert.Equal(t, 2.5, cfg.Bot.ProfitThresholdPct)
	assert.Equal(t, 90*time.Second, cfg.Bot.ScanInterval.Duration)
	assert.Equal(t, "bsc", cfg.Chain.Network)

	// Untouched sections keep their defaults.
	assert.Equal(t, 0.0009, cfg.Bot.FlashloanFeeRate)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FLASHARB_CHAIN_RPC_URL", "https://rpc.example")
	t.Setenv("FLASHARB_BOT_PAIRS", "WETH/USDC, WMATIC/USDC")
	t.Setenv("FLASHARB_BOT_MAX_LOAN_AMOUNT", "2500")
	t.Setenv("FLASHARB_CHAIN_DRY_RUN", "false")
	t.Setenv("FLASHARB_BOT_SCAN_INTERVAL", "45s")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "https://rpc.example", cfg.Chain.RPCURL)
	assert.Equal(t, []string{"WETH/USDC", "WMATIC/USDC"}, cfg.Bot.Pairs)
	assert.Equal(t, 2500.0, cfg.Bot.MaxLoanAmount)
	assert.False(t, cfg.Chain.DryRun)
	assert.Equal(t, 45*time.Second, cfg.Bot.ScanInterval.Duration)
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("FLASHARB_BOT_MAX_LOAN_AMOUNT", "not-a-number")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, 1000.0, cfg.Bot.MaxLoanAmount)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "banana"
	cfg.Bot.Pairs = nil
	cfg.Bot.ProfitThresholdPct = 0
	cfg.Chain.Network = "solana"
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "trading pair")
	assert.Contains(t, err.Error(), "profit_threshold_pct")
	assert.Contains(t, err.Error(), "unsupported network")
	assert.Contains(t, err.Error(), "redis: addr")
}

func TestValidateLiveModeNeedsWallet(t *testing.T) {
	cfg := Defaults()
	cfg.Chain.DryRun = false

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract_address")
	assert.Contains(t, err.Error(), "private_key")

	cfg.Chain.ContractAddress = "0x0000000000000000000000000000000000000001"
	cfg.Chain.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	require.NoError(t, cfg.Validate())
}

func TestValidateArchiveSection(t *testing.T) {
	cfg := Defaults()
	cfg.Archive.Enabled = true
	cfg.S3.Bucket = ""
	cfg.Archive.RetentionDays = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
	assert.Contains(t, err.Error(), "retention_days")
}

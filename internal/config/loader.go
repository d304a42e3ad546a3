package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FLASHARB_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FLASHARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// --- Bot ---
	setStringSlice(&cfg.Bot.Pairs, "FLASHARB_BOT_PAIRS")
	setFloat64(&cfg.Bot.ProfitThresholdPct, "FLASHARB_BOT_PROFIT_THRESHOLD_PCT")
	setFloat64(&cfg.Bot.MaxLoanAmount, "FLASHARB_BOT_MAX_LOAN_AMOUNT")
	setFloat64(&cfg.Bot.MinNetProfit, "FLASHARB_BOT_MIN_NET_PROFIT")
	setFloat64(&cfg.Bot.FlashloanFeeRate, "FLASHARB_BOT_FLASHLOAN_FEE_RATE")
	setBool(&cfg.Bot.MonitoringEnabled, "FLASHARB_BOT_MONITORING_ENABLED")
	setBool(&cfg.Bot.NotificationsEnabled, "FLASHARB_BOT_NOTIFICATIONS_ENABLED")
	setDuration(&cfg.Bot.ScanInterval, "FLASHARB_BOT_SCAN_INTERVAL")
	setDuration(&cfg.Bot.ErrorBackoff, "FLASHARB_BOT_ERROR_BACKOFF")

	// --- Chain ---
	setStr(&cfg.Chain.Network, "FLASHARB_CHAIN_NETWORK")
	setStr(&cfg.Chain.RPCURL, "FLASHARB_CHAIN_RPC_URL")
	setStr(&cfg.Chain.ContractAddress, "FLASHARB_CHAIN_CONTRACT_ADDRESS")
	setStr(&cfg.Chain.PrivateKey, "FLASHARB_CHAIN_PRIVATE_KEY")
	setStr(&cfg.Chain.EncryptedKeyPath, "FLASHARB_CHAIN_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Chain.KeyPassword, "FLASHARB_CHAIN_KEY_PASSWORD")
	setBool(&cfg.Chain.DryRun, "FLASHARB_CHAIN_DRY_RUN")
	setUint64(&cfg.Chain.GasUnits, "FLASHARB_CHAIN_GAS_UNITS")
	setFloat64(&cfg.Chain.FallbackGasCost, "FLASHARB_CHAIN_FALLBACK_GAS_COST")

	// --- Exchanges ---
	setStringSlice(&cfg.Exchanges.Enabled, "FLASHARB_EXCHANGES_ENABLED")
	setDuration(&cfg.Exchanges.QuoteTimeout, "FLASHARB_EXCHANGES_QUOTE_TIMEOUT")

	// --- Postgres ---
	setStr(&cfg.Postgres.DSN, "FLASHARB_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "FLASHARB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "FLASHARB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "FLASHARB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "FLASHARB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "FLASHARB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "FLASHARB_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "FLASHARB_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "FLASHARB_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "FLASHARB_POSTGRES_RUN_MIGRATIONS")

	// --- Redis ---
	setStr(&cfg.Redis.Addr, "FLASHARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "FLASHARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FLASHARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "FLASHARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "FLASHARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "FLASHARB_REDIS_TLS_ENABLED")

	// --- S3 ---
	setStr(&cfg.S3.Endpoint, "FLASHARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "FLASHARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "FLASHARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "FLASHARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "FLASHARB_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "FLASHARB_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "FLASHARB_S3_FORCE_PATH_STYLE")

	// --- Archive ---
	setBool(&cfg.Archive.Enabled, "FLASHARB_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "FLASHARB_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "FLASHARB_ARCHIVE_INTERVAL")

	// --- Server ---
	setBool(&cfg.Server.Enabled, "FLASHARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "FLASHARB_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "FLASHARB_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "FLASHARB_SERVER_CORS_ORIGINS")

	// --- Notify ---
	setStr(&cfg.Notify.SlackWebhookURL, "FLASHARB_NOTIFY_SLACK_WEBHOOK_URL")
	setStr(&cfg.Notify.TelegramToken, "FLASHARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "FLASHARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStringSlice(&cfg.Notify.Events, "FLASHARB_NOTIFY_EVENTS")

	// --- Top-level ---
	setStr(&cfg.Mode, "FLASHARB_MODE")
	setStr(&cfg.LogLevel, "FLASHARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

// Package config defines the top-level configuration for the flasharb bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by FLASHARB_* environment variables.
type Config struct {
	Bot       BotConfig       `toml:"bot"`
	Chain     ChainConfig     `toml:"chain"`
	Exchanges ExchangesConfig `toml:"exchanges"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Archive   ArchiveConfig   `toml:"archive"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// BotConfig seeds the runtime bot state and fixes the estimator knobs. The
// pairs, threshold, loan cap, and toggles only apply on first start; once a
// configuration row exists in the store, the persisted values win.
type BotConfig struct {
	Pairs                []string `toml:"pairs"`
	ProfitThresholdPct   float64  `toml:"profit_threshold_pct"`
	MaxLoanAmount        float64  `toml:"max_loan_amount"`
	MinNetProfit         float64  `toml:"min_net_profit"`
	FlashloanFeeRate     float64  `toml:"flashloan_fee_rate"`
	MonitoringEnabled    bool     `toml:"monitoring_enabled"`
	NotificationsEnabled bool     `toml:"notifications_enabled"`
	ScanInterval         duration `toml:"scan_interval"`
	ErrorBackoff         duration `toml:"error_backoff"`
}

// ChainConfig holds the blockchain connection, wallet, and flash-loan
// contract parameters.
type ChainConfig struct {
	Network          string  `toml:"network"`
	RPCURL           string  `toml:"rpc_url"`
	ContractAddress  string  `toml:"contract_address"`
	PrivateKey       string  `toml:"private_key"`
	EncryptedKeyPath string  `toml:"encrypted_key_path"`
	KeyPassword      string  `toml:"key_password"`
	DryRun           bool    `toml:"dry_run"`
	GasUnits         uint64  `toml:"gas_units"`
	FallbackGasCost  float64 `toml:"fallback_gas_cost"`
}

// ExchangesConfig selects which DEX adapters to poll and bounds each quote
// call.
type ExchangesConfig struct {
	Enabled      []string `toml:"enabled"`
	QuoteTimeout duration `toml:"quote_timeout"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArchiveConfig controls cold-storage export of old opportunity rows.
type ArchiveConfig struct {
	Enabled       bool     `toml:"enabled"`
	RetentionDays int      `toml:"retention_days"`
	Interval      duration `toml:"interval"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	APIKey      string   `toml:"api_key"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	SlackWebhookURL string   `toml:"slack_webhook_url"`
	TelegramToken   string   `toml:"telegram_token"`
	TelegramChatID  string   `toml:"telegram_chat_id"`
	Events          []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "60s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "60s" or "5m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Bot: BotConfig{
			Pairs:                []string{"WETH/USDC"},
			ProfitThresholdPct:   1.0,
			MaxLoanAmount:        1000,
			MinNetProfit:         0.01,
			FlashloanFeeRate:     0.0009,
			MonitoringEnabled:    true,
			NotificationsEnabled: true,
			ScanInterval:         duration{60 * time.Second},
			ErrorBackoff:         duration{30 * time.Second},
		},
		Chain: ChainConfig{
			Network:         "polygon",
			DryRun:          true,
			GasUnits:        500_000,
			FallbackGasCost: 0.01,
		},
		Exchanges: ExchangesConfig{
			Enabled:      []string{"quickswap", "sushiswap", "apeswap"},
			QuoteTimeout: duration{10 * time.Second},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "flasharb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "flasharb-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			RetentionDays: 90,
			Interval:      duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Notify: NotifyConfig{},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"server":  true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, server, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Bot
	if len(c.Bot.Pairs) == 0 {
		errs = append(errs, "bot: at least one trading pair is required")
	}
	if c.Bot.ProfitThresholdPct <= 0 {
		errs = append(errs, "bot: profit_threshold_pct must be > 0")
	}
	if c.Bot.MaxLoanAmount <= 0 {
		errs = append(errs, "bot: max_loan_amount must be > 0")
	}
	if c.Bot.MinNetProfit < 0 {
		errs = append(errs, "bot: min_net_profit must be >= 0")
	}
	if c.Bot.FlashloanFeeRate < 0 || c.Bot.FlashloanFeeRate >= 1 {
		errs = append(errs, "bot: flashloan_fee_rate must be in [0, 1)")
	}
	if c.Bot.ScanInterval.Duration <= 0 {
		errs = append(errs, "bot: scan_interval must be positive")
	}
	if c.Bot.ErrorBackoff.Duration <= 0 {
		errs = append(errs, "bot: error_backoff must be positive")
	}

	// Chain
	switch strings.ToLower(c.Chain.Network) {
	case "polygon", "bsc", "avalanche":
	default:
		errs = append(errs, fmt.Sprintf("chain: unsupported network %q (valid: polygon, bsc, avalanche)", c.Chain.Network))
	}
	if c.Chain.GasUnits == 0 {
		errs = append(errs, "chain: gas_units must be > 0")
	}
	if c.Chain.FallbackGasCost <= 0 {
		errs = append(errs, "chain: fallback_gas_cost must be > 0")
	}
	// A wallet is only required when the bot may broadcast transactions.
	if !c.Chain.DryRun {
		if c.Chain.ContractAddress == "" {
			errs = append(errs, "chain: contract_address is required when dry_run is disabled")
		}
		if c.Chain.PrivateKey == "" && c.Chain.EncryptedKeyPath == "" {
			errs = append(errs, "chain: either private_key or encrypted_key_path must be set when dry_run is disabled")
		}
		if c.Chain.EncryptedKeyPath != "" && c.Chain.KeyPassword == "" {
			errs = append(errs, "chain: key_password is required when encrypted_key_path is set")
		}
	}

	// Exchanges
	if len(c.Exchanges.Enabled) < 2 {
		errs = append(errs, "exchanges: at least two exchanges are required for cross-exchange detection")
	}
	if c.Exchanges.QuoteTimeout.Duration <= 0 {
		errs = append(errs, "exchanges: quote_timeout must be positive")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 / archive
	if c.Archive.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archive is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be positive")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

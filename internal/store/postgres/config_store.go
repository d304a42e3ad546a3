package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flasharb/internal/domain"
)

// ConfigStore implements domain.ConfigStore on the single-row bot_config
// table.
type ConfigStore struct {
	pool *pgxpool.Pool
}

// NewConfigStore creates a ConfigStore backed by the given connection pool.
func NewConfigStore(pool *pgxpool.Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

// Load reads the persisted configuration. Returns domain.ErrNotFound when
// the row has never been written.
func (s *ConfigStore) Load(ctx context.Context) (domain.BotConfig, error) {
	const query = `
		SELECT pairs, profit_threshold_pct, max_loan_amount,
		       monitoring_enabled, notifications_enabled, updated_at
		FROM bot_config
		WHERE id = 1`

	var (
		rawPairs []string
		cfg      domain.BotConfig
	)
	err := s.pool.QueryRow(ctx, query).Scan(
		&rawPairs,
		&cfg.ProfitThresholdPct,
		&cfg.MaxLoanAmount,
		&cfg.MonitoringEnabled,
		&cfg.NotificationsEnabled,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BotConfig{}, fmt.Errorf("postgres: bot_config: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.BotConfig{}, fmt.Errorf("postgres: load bot_config: %w", err)
	}

	pairs, err := domain.ParsePairs(rawPairs)
	if err != nil {
		return domain.BotConfig{}, fmt.Errorf("postgres: bot_config holds malformed pairs: %w", err)
	}
	cfg.Pairs = pairs
	return cfg, nil
}

// Save upserts the configuration row.
func (s *ConfigStore) Save(ctx context.Context, cfg domain.BotConfig) error {
	const query = `
		INSERT INTO bot_config (
			id, pairs, profit_threshold_pct, max_loan_amount,
			monitoring_enabled, notifications_enabled, updated_at
		) VALUES (
			1, $1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (id) DO UPDATE SET
			pairs                 = EXCLUDED.pairs,
			profit_threshold_pct  = EXCLUDED.profit_threshold_pct,
			max_loan_amount       = EXCLUDED.max_loan_amount,
			monitoring_enabled    = EXCLUDED.monitoring_enabled,
			notifications_enabled = EXCLUDED.notifications_enabled,
			updated_at            = EXCLUDED.updated_at`

	rawPairs := make([]string, len(cfg.Pairs))
	for i, p := range cfg.Pairs {
		rawPairs[i] = p.String()
	}

	_, err := s.pool.Exec(ctx, query,
		rawPairs,
		cfg.ProfitThresholdPct,
		cfg.MaxLoanAmount,
		cfg.MonitoringEnabled,
		cfg.NotificationsEnabled,
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save bot_config: %w", err)
	}
	return nil
}

// Package service holds the application services that sit between the HTTP
// surface, the monitor loop, and the persistence layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flasharb/internal/domain"
)

const (
	configLockKey = "flasharb:lock:config"
	configLockTTL = 10 * time.Second
)

// ConfigService owns the runtime BotConfig. All reads go through GetConfig
// and all mutations go through the Update/Toggle methods, which validate,
// persist, and only then swap the in-memory state. A process-local mutex
// serializes mutations within one instance; the distributed lock serializes
// them across instances sharing a store.
type ConfigService struct {
	store  domain.ConfigStore
	locks  domain.LockManager
	logger *slog.Logger

	mu  sync.RWMutex
	cfg domain.BotConfig
}

// NewConfigService creates a ConfigService seeded with the given defaults.
// Call Init before use to reconcile against the persisted state.
func NewConfigService(store domain.ConfigStore, locks domain.LockManager, seed domain.BotConfig, logger *slog.Logger) *ConfigService {
	return &ConfigService{
		store:  store,
		locks:  locks,
		logger: logger.With(slog.String("component", "config_service")),
		cfg:    seed.Clone(),
	}
}

// Init loads the persisted configuration. When nothing has been persisted
// yet the seed defaults are written out so every later Load sees them.
func (s *ConfigService) Init(ctx context.Context) error {
	stored, err := s.store.Load(ctx)
	switch {
	case err == nil:
		s.mu.Lock()
		s.cfg = stored.Clone()
		s.mu.Unlock()
		s.logger.InfoContext(ctx, "loaded persisted configuration",
			slog.Int("pairs", len(stored.Pairs)),
			slog.Float64("threshold_pct", stored.ProfitThresholdPct),
		)
		return nil
	case errors.Is(err, domain.ErrNotFound):
		s.mu.Lock()
		seed := s.cfg.Clone()
		seed.UpdatedAt = time.Now().UTC()
		s.cfg = seed
		s.mu.Unlock()
		if err := s.store.Save(ctx, seed); err != nil {
			return fmt.Errorf("config_service: persisting defaults: %w", err)
		}
		s.logger.InfoContext(ctx, "no persisted configuration, saved defaults")
		return nil
	default:
		return fmt.Errorf("config_service: loading configuration: %w", err)
	}
}

// GetConfig returns a snapshot of the current configuration.
func (s *ConfigService) GetConfig() domain.BotConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// UpdatePairs replaces the monitored pair list. Inputs are "BASE/QUOTE"
// strings; any malformed entry rejects the whole update.
func (s *ConfigService) UpdatePairs(ctx context.Context, raw []string) (domain.BotConfig, error) {
	pairs, err := domain.ParsePairs(raw)
	if err != nil {
		return domain.BotConfig{}, fmt.Errorf("config_service: update pairs: %w", err)
	}
	return s.mutate(ctx, "pairs", func(c *domain.BotConfig) {
		c.Pairs = pairs
	})
}

// UpdateThreshold sets the detection threshold in percent.
func (s *ConfigService) UpdateThreshold(ctx context.Context, thresholdPct float64) (domain.BotConfig, error) {
	return s.mutate(ctx, "threshold", func(c *domain.BotConfig) {
		c.ProfitThresholdPct = thresholdPct
	})
}

// UpdateMaxLoan sets the flash-loan sizing cap.
func (s *ConfigService) UpdateMaxLoan(ctx context.Context, maxLoan float64) (domain.BotConfig, error) {
	return s.mutate(ctx, "max_loan", func(c *domain.BotConfig) {
		c.MaxLoanAmount = maxLoan
	})
}

// SetMonitoring flips the monitoring toggle. The monitor loop observes the
// new value at the top of its next cycle.
func (s *ConfigService) SetMonitoring(ctx context.Context, enabled bool) (domain.BotConfig, error) {
	return s.mutate(ctx, "monitoring", func(c *domain.BotConfig) {
		c.MonitoringEnabled = enabled
	})
}

// SetNotifications flips the notification toggle.
func (s *ConfigService) SetNotifications(ctx context.Context, enabled bool) (domain.BotConfig, error) {
	return s.mutate(ctx, "notifications", func(c *domain.BotConfig) {
		c.NotificationsEnabled = enabled
	})
}

// mutate applies fn to a copy of the current configuration, validates the
// result, persists it, and only on successful persistence installs it as the
// live state. Any failure leaves the previous configuration fully intact.
func (s *ConfigService) mutate(ctx context.Context, field string, fn func(*domain.BotConfig)) (domain.BotConfig, error) {
	unlock, err := s.locks.Acquire(ctx, configLockKey, configLockTTL)
	if err != nil {
		return domain.BotConfig{}, fmt.Errorf("config_service: acquiring config lock: %w", err)
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.Clone()
	fn(&next)
	next.UpdatedAt = time.Now().UTC()

	if err := next.Validate(); err != nil {
		return domain.BotConfig{}, fmt.Errorf("config_service: %s: %w", field, err)
	}
	if err := s.store.Save(ctx, next); err != nil {
		return domain.BotConfig{}, fmt.Errorf("config_service: persisting %s: %w", field, err)
	}

	s.cfg = next
	s.logger.InfoContext(ctx, "configuration updated", slog.String("field", field))
	return next.Clone(), nil
}

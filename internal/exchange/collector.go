package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"flasharb/internal/domain"
)

// Collector fans one pair out to every adapter concurrently and assembles a
// PriceSnapshot from whichever quotes come back in time. A partial snapshot
// is a valid result; only zero quotes is reported as ErrNoQuotes.
type Collector struct {
	adapters []Adapter
	timeout  time.Duration
	logger   *slog.Logger
}

// NewCollector creates a Collector over the given adapters. timeout bounds
// each individual exchange call, not the snapshot as a whole.
func NewCollector(adapters []Adapter, timeout time.Duration, logger *slog.Logger) *Collector {
	return &Collector{
		adapters: adapters,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "collector")),
	}
}

// Exchanges returns the names of the configured adapters.
func (c *Collector) Exchanges() []string {
	names := make([]string, 0, len(c.adapters))
	for _, a := range c.adapters {
		names = append(names, a.Name())
	}
	return names
}

// Snapshot queries every adapter for the pair. Failed and non-positive quotes
// are omitted, never stored as zero. The returned snapshot only ever contains
// strictly positive prices.
func (c *Collector) Snapshot(ctx context.Context, pair domain.TradingPair) (domain.PriceSnapshot, error) {
	snapshot := make(domain.PriceSnapshot, len(c.adapters))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, adapter := range c.adapters {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			price, err := adapter.GetPrice(callCtx, pair.Base, pair.Quote)
			if err != nil {
				c.logger.WarnContext(ctx, "quote unavailable",
					slog.String("exchange", adapter.Name()),
					slog.String("pair", pair.String()),
					slog.String("error", err.Error()),
				)
				return nil // one exchange failing never fails the snapshot
			}
			if price <= 0 {
				c.logger.WarnContext(ctx, "adapter returned non-positive price, dropping",
					slog.String("exchange", adapter.Name()),
					slog.String("pair", pair.String()),
					slog.Float64("price", price),
				)
				return nil
			}

			mu.Lock()
			snapshot[adapter.Name()] = price
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collector: snapshot %s: %w", pair, err)
	}

	if len(snapshot) == 0 {
		return nil, fmt.Errorf("collector: %s: %w", pair, domain.ErrNoQuotes)
	}
	return snapshot, nil
}

// Package monitor runs the continuous scan loop: collect quotes, detect
// divergences, size and evaluate the flash loan, then execute, record, and
// announce the best opportunity of the cycle.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flasharb/internal/detector"
	"flasharb/internal/domain"
	"flasharb/internal/profit"
)

// State is the externally visible phase of the monitor loop.
type State string

const (
	StateIdle             State = "idle"
	StateScanning         State = "scanning"
	StateOpportunityFound State = "opportunity_found"
	StateNoOpportunity    State = "no_opportunity"
	StateSleeping         State = "sleeping"
	StateError            State = "error"
)

// ConfigSource supplies the current runtime configuration. The monitor reads
// it fresh at the top of every cycle so toggles and threshold changes take
// effect without a restart.
type ConfigSource interface {
	GetConfig() domain.BotConfig
}

// Snapshotter collects per-exchange quotes for one pair.
type Snapshotter interface {
	Snapshot(ctx context.Context, pair domain.TradingPair) (domain.PriceSnapshot, error)
}

// Evaluator turns a detected opportunity plus a loan size into flash-loan
// economics and an executable verdict.
type Evaluator interface {
	Evaluate(ctx context.Context, opp domain.Opportunity, loanAmount float64) (domain.FlashloanOpportunity, bool)
}

// TradeExecutor submits the arbitrage on-chain and returns the tx hash.
type TradeExecutor interface {
	Execute(ctx context.Context, fl *domain.FlashloanOpportunity) (string, error)
}

// Alerter pushes human-facing notifications. The monitor only calls it when
// notifications are enabled in the runtime configuration.
type Alerter interface {
	OpportunityFound(ctx context.Context, fl domain.FlashloanOpportunity)
	ExecutionSubmitted(ctx context.Context, fl domain.FlashloanOpportunity)
	ExecutionFailed(ctx context.Context, fl domain.FlashloanOpportunity, err error)
	MonitorError(ctx context.Context, err error)
}

// Broadcaster pushes machine-facing events to connected websocket clients.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// Monitor drives the scan loop.
type Monitor struct {
	cfg       ConfigSource
	collector Snapshotter
	evaluator Evaluator
	executor  TradeExecutor
	store     domain.OpportunityStore
	cache     domain.PriceCache
	alerter   Alerter
	bus       Broadcaster

	scanInterval time.Duration
	errorBackoff time.Duration
	logger       *slog.Logger

	mu         sync.RWMutex
	state      State
	lastScanAt time.Time
}

// New creates a Monitor. store, cache, alerter, and bus may be nil; the
// corresponding side effects are skipped.
func New(
	cfg ConfigSource,
	collector Snapshotter,
	evaluator Evaluator,
	executor TradeExecutor,
	store domain.OpportunityStore,
	cache domain.PriceCache,
	alerter Alerter,
	bus Broadcaster,
	scanInterval, errorBackoff time.Duration,
	logger *slog.Logger,
) *Monitor {
	return &Monitor{
		cfg:          cfg,
		collector:    collector,
		evaluator:    evaluator,
		executor:     executor,
		store:        store,
		cache:        cache,
		alerter:      alerter,
		bus:          bus,
		scanInterval: scanInterval,
		errorBackoff: errorBackoff,
		logger:       logger.With(slog.String("component", "monitor")),
		state:        StateIdle,
	}
}

// State returns the current loop phase.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastScanAt returns when the last scan cycle started. Zero until the first
// enabled cycle runs.
func (m *Monitor) LastScanAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastScanAt
}

func (m *Monitor) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Run executes scan cycles until the context is cancelled. Disabling
// monitoring pauses scanning without stopping the loop; re-enabling resumes
// it on the next tick.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.InfoContext(ctx, "monitor started",
		slog.Duration("scan_interval", m.scanInterval),
		slog.Duration("error_backoff", m.errorBackoff),
	)
	for {
		wait := m.cycle(ctx)

		m.setState(StateSleeping)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.setState(StateIdle)
			m.logger.Info("monitor stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// cycle runs one scan pass and returns how long to sleep before the next.
func (m *Monitor) cycle(ctx context.Context) time.Duration {
	cfg := m.cfg.GetConfig()
	if !cfg.MonitoringEnabled {
		m.setState(StateIdle)
		return m.scanInterval
	}

	m.mu.Lock()
	m.state = StateScanning
	m.lastScanAt = time.Now().UTC()
	m.mu.Unlock()

	best, failed := m.scanPairs(ctx, cfg)

	if failed == len(cfg.Pairs) && len(cfg.Pairs) > 0 {
		m.setState(StateError)
		m.logger.WarnContext(ctx, "scan cycle failed for every pair, backing off",
			slog.Int("pairs", len(cfg.Pairs)),
			slog.Duration("backoff", m.errorBackoff),
		)
		if m.alerter != nil && cfg.NotificationsEnabled {
			m.alerter.MonitorError(ctx, fmt.Errorf("monitor: scan failed for all %d pairs", len(cfg.Pairs)))
		}
		return m.errorBackoff
	}

	if best == nil {
		m.setState(StateNoOpportunity)
		return m.scanInterval
	}

	m.setState(StateOpportunityFound)
	m.logger.InfoContext(ctx, "executable opportunity found",
		slog.String("pair", best.Pair.String()),
		slog.String("route", best.Route()),
		slog.Float64("profit_pct", best.ProfitPct),
		slog.Float64("loan_amount", best.LoanAmount),
		slog.Float64("net_profit", best.NetProfit),
	)
	m.handleOpportunity(ctx, cfg, best)
	return m.scanInterval
}

// scanPairs scans every configured pair and returns the highest-net-profit
// executable opportunity, if any, plus how many pairs failed outright. One
// pair failing never stops the rest of the cycle.
func (m *Monitor) scanPairs(ctx context.Context, cfg domain.BotConfig) (*domain.FlashloanOpportunity, int) {
	var best *domain.FlashloanOpportunity
	failed := 0

	for _, pair := range cfg.Pairs {
		snapshot, err := m.collector.Snapshot(ctx, pair)
		if err != nil {
			failed++
			m.logger.WarnContext(ctx, "pair scan failed",
				slog.String("pair", pair.String()),
				slog.String("error", err.Error()),
			)
			continue
		}

		m.cacheSnapshot(ctx, pair, snapshot)
		m.broadcast("prices", map[string]any{
			"pair":   pair.String(),
			"quotes": snapshot,
		})

		for _, opp := range detector.Detect(snapshot, pair, cfg.ProfitThresholdPct) {
			loan := profit.SizeLoan(opp, cfg.MaxLoanAmount)
			fl, ok := m.evaluator.Evaluate(ctx, opp, loan)
			if !ok {
				continue
			}
			if best == nil || fl.NetProfit > best.NetProfit {
				fl := fl
				best = &fl
			}
		}
	}
	return best, failed
}

// handleOpportunity runs the side-effect chain for the winning opportunity:
// notify, execute, record, broadcast. Each step failing is logged but never
// aborts the remaining steps; the record must exist even when execution
// failed.
func (m *Monitor) handleOpportunity(ctx context.Context, cfg domain.BotConfig, fl *domain.FlashloanOpportunity) {
	if m.alerter != nil && cfg.NotificationsEnabled {
		m.alerter.OpportunityFound(ctx, *fl)
	}

	txHash, err := m.executor.Execute(ctx, fl)
	switch {
	case err == nil:
		fl.Executed = true
		fl.TxHash = txHash
		if m.alerter != nil && cfg.NotificationsEnabled {
			m.alerter.ExecutionSubmitted(ctx, *fl)
		}
	case errors.Is(err, domain.ErrDisabled):
		m.logger.InfoContext(ctx, "execution skipped",
			slog.String("route", fl.Route()),
			slog.String("reason", err.Error()),
		)
	default:
		m.logger.ErrorContext(ctx, "execution failed",
			slog.String("route", fl.Route()),
			slog.String("error", err.Error()),
		)
		if m.alerter != nil && cfg.NotificationsEnabled {
			m.alerter.ExecutionFailed(ctx, *fl, err)
		}
	}

	if m.store != nil {
		if err := m.store.Insert(ctx, *fl); err != nil {
			m.logger.WarnContext(ctx, "recording opportunity failed",
				slog.String("id", fl.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	m.broadcast("opportunity", fl)
}

func (m *Monitor) cacheSnapshot(ctx context.Context, pair domain.TradingPair, snapshot domain.PriceSnapshot) {
	if m.cache == nil {
		return
	}
	if err := m.cache.SetSnapshot(ctx, pair.String(), snapshot, time.Now().UTC()); err != nil {
		m.logger.WarnContext(ctx, "caching snapshot failed",
			slog.String("pair", pair.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (m *Monitor) broadcast(event string, payload any) {
	if m.bus == nil {
		return
	}
	m.bus.Broadcast(event, payload)
}

// Describe summarizes the monitor for health reporting.
func (m *Monitor) Describe() string {
	return fmt.Sprintf("monitor{state=%s, last_scan=%s}", m.State(), m.LastScanAt().Format(time.RFC3339))
}

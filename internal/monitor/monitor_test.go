package monitor

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flasharb/internal/domain"
)

type stubConfig struct{ cfg domain.BotConfig }

func (s stubConfig) GetConfig() domain.BotConfig { return s.cfg.Clone() }

type stubCollector struct {
	snapshots map[string]domain.PriceSnapshot
	errs      map[string]error
	calls     int
}

func (s *stubCollector) Snapshot(ctx context.Context, pair domain.TradingPair) (domain.PriceSnapshot, error) {
	s.calls++
	if err, ok := s.errs[pair.String()]; ok {
		return nil, err
	}
	snap, ok := s.snapshots[pair.String()]
	if !ok {
		return nil, domain.ErrNoQuotes
	}
	return snap, nil
}

// passEvaluator approves everything, with net profit proportional to the
// gross so relative ordering across pairs is preserved.
type passEvaluator struct{}

func (passEvaluator) Evaluate(ctx context.Context, opp domain.Opportunity, loan float64) (domain.FlashloanOpportunity, bool) {
	return domain.FlashloanOpportunity{
		Opportunity: opp,
		LoanAmount:  loan,
		NetProfit:   loan * opp.ProfitPct / 100,
	}, true
}

type rejectEvaluator struct{}

func (rejectEvaluator) Evaluate(ctx context.Context, opp domain.Opportunity, loan float64) (domain.FlashloanOpportunity, bool) {
	return domain.FlashloanOpportunity{}, false
}

type stubExecutor struct {
	executed []domain.FlashloanOpportunity
	err      error
}

func (s *stubExecutor) Execute(ctx context.Context, fl *domain.FlashloanOpportunity) (string, error) {
	s.executed = append(s.executed, *fl)
	if s.err != nil {
		return "", s.err
	}
	return "0xdeadbeef", nil
}

type stubStore struct {
	domain.OpportunityStore
	inserted []domain.FlashloanOpportunity
}

func (s *stubStore) Insert(ctx context.Context, fl domain.FlashloanOpportunity) error {
	s.inserted = append(s.inserted, fl)
	return nil
}

type stubAlerter struct {
	found     int
	submitted int
	failed    int
	errored   int
}

func (s *stubAlerter) OpportunityFound(ctx context.Context, fl domain.FlashloanOpportunity) {
	s.found++
}
func (s *stubAlerter) ExecutionSubmitted(ctx context.Context, fl domain.FlashloanOpportunity) {
	s.submitted++
}
func (s *stubAlerter) ExecutionFailed(ctx context.Context, fl domain.FlashloanOpportunity, err error) {
	s.failed++
}
func (s *stubAlerter) MonitorError(ctx context.Context, err error) {
	s.errored++
}

func pairs(names ...string) []domain.TradingPair {
	out, err := domain.ParsePairs(names)
	if err != nil {
		panic(err)
	}
	return out
}

func baseConfig() domain.BotConfig {
	return domain.BotConfig{
		Pairs:                pairs("WETH/USDC"),
		ProfitThresholdPct:   1.0,
		MaxLoanAmount:        1000,
		MonitoringEnabled:    true,
		NotificationsEnabled: true,
	}
}

func newMonitor(cfg domain.BotConfig, col *stubCollector, ev Evaluator, ex *stubExecutor, st *stubStore, al *stubAlerter) *Monitor {
	return New(stubConfig{cfg}, col, ev, ex, st, nil, al, nil,
		time.Minute, 30*time.Second, slog.New(slog.DiscardHandler))
}

func TestCycle_DisabledSkipsScanning(t *testing.T) {
	cfg := baseConfig()
	cfg.MonitoringEnabled = false
	col := &stubCollector{}
	m := newMonitor(cfg, col, passEvaluator{}, &stubExecutor{}, &stubStore{}, &stubAlerter{})

	wait := m.cycle(context.Background())

	assert.Equal(t, time.Minute, wait)
	assert.Equal(t, StateIdle, m.State())
	assert.Zero(t, col.calls)
	assert.True(t, m.LastScanAt().IsZero())
}

func TestCycle_ExecutesAndRecordsBest(t *testing.T) {
	col := &stubCollector{snapshots: map[string]domain.PriceSnapshot{
		"WETH/USDC": {"quickswap": 100, "sushiswap": 102},
	}}
	ex := &stubExecutor{}
	st := &stubStore{}
	al := &stubAlerter{}
	m := newMonitor(baseConfig(), col, passEvaluator{}, ex, st, al)

	wait := m.cycle(context.Background())

	assert.Equal(t, time.Minute, wait)
	assert.Equal(t, StateOpportunityFound, m.State())
	require.Len(t, ex.executed, 1)
	require.Len(t, st.inserted, 1)
	rec := st.inserted[0]
	assert.True(t, rec.Executed)
	assert.Equal(t, "0xdeadbeef", rec.TxHash)
	assert.Equal(t, "quickswap", rec.BuyExchange)
	assert.Equal(t, "sushiswap", rec.SellExchange)
	assert.Equal(t, 1, al.found)
	assert.Equal(t, 1, al.submitted)
	assert.False(t, m.LastScanAt().IsZero())
}

func TestCycle_OnePairFailingDoesNotStopOthers(t *testing.T) {
	cfg := baseConfig()
	cfg.Pairs = pairs("WETH/USDC", "WMATIC/USDT", "DAI/USDC")
	col := &stubCollector{
		snapshots: map[string]domain.PriceSnapshot{
			"WETH/USDC": {"quickswap": 100, "sushiswap": 102},
			"DAI/USDC":  {"quickswap": 1.0, "sushiswap": 1.0},
		},
		errs: map[string]error{"WMATIC/USDT": errors.New("rpc timeout")},
	}
	ex := &stubExecutor{}
	st := &stubStore{}
	m := newMonitor(cfg, col, passEvaluator{}, ex, st, &stubAlerter{})

	wait := m.cycle(context.Background())

	assert.Equal(t, time.Minute, wait, "partial failure is a normal cycle")
	assert.Equal(t, 3, col.calls)
	require.Len(t, st.inserted, 1)
	assert.Equal(t, "WETH/USDC", st.inserted[0].Pair.String())
}

func TestCycle_BestAcrossPairsWins(t *testing.T) {
	cfg := baseConfig()
	cfg.Pairs = pairs("WETH/USDC", "WMATIC/USDT")
	col := &stubCollector{snapshots: map[string]domain.PriceSnapshot{
		"WETH/USDC":   {"quickswap": 100, "sushiswap": 102},
		"WMATIC/USDT": {"quickswap": 100, "sushiswap": 105},
	}}
	st := &stubStore{}
	m := newMonitor(cfg, col, passEvaluator{}, &stubExecutor{}, st, &stubAlerter{})

	m.cycle(context.Background())

	require.Len(t, st.inserted, 1)
	assert.Equal(t, "WMATIC/USDT", st.inserted[0].Pair.String())
}

func TestCycle_AllPairsFailingBacksOff(t *testing.T) {
	cfg := baseConfig()
	cfg.Pairs = pairs("WETH/USDC", "WMATIC/USDT")
	col := &stubCollector{errs: map[string]error{
		"WETH/USDC":   errors.New("down"),
		"WMATIC/USDT": errors.New("down"),
	}}
	al := &stubAlerter{}
	m := newMonitor(cfg, col, passEvaluator{}, &stubExecutor{}, &stubStore{}, al)

	wait := m.cycle(context.Background())

	assert.Equal(t, 30*time.Second, wait)
	assert.Equal(t, StateError, m.State())
	assert.Equal(t, 1, al.errored)
}

func TestCycle_NoOpportunity(t *testing.T) {
	col := &stubCollector{snapshots: map[string]domain.PriceSnapshot{
		"WETH/USDC": {"quickswap": 100, "sushiswap": 100.5},
	}}
	ex := &stubExecutor{}
	st := &stubStore{}
	m := newMonitor(baseConfig(), col, passEvaluator{}, ex, st, &stubAlerter{})

	m.cycle(context.Background())

	assert.Equal(t, StateNoOpportunity, m.State())
	assert.Empty(t, ex.executed)
	assert.Empty(t, st.inserted)
}

func TestCycle_EvaluatorRejectionMeansNoOpportunity(t *testing.T) {
	col := &stubCollector{snapshots: map[string]domain.PriceSnapshot{
		"WETH/USDC": {"quickswap": 100, "sushiswap": 102},
	}}
	ex := &stubExecutor{}
	m := newMonitor(baseConfig(), col, rejectEvaluator{}, ex, &stubStore{}, &stubAlerter{})

	m.cycle(context.Background())

	assert.Equal(t, StateNoOpportunity, m.State())
	assert.Empty(t, ex.executed)
}

func TestCycle_SkippedExecutionStillRecorded(t *testing.T) {
	col := &stubCollector{snapshots: map[string]domain.PriceSnapshot{
		"WETH/USDC": {"quickswap": 100, "sushiswap": 102},
	}}
	ex := &stubExecutor{err: domain.ErrDisabled}
	st := &stubStore{}
	al := &stubAlerter{}
	m := newMonitor(baseConfig(), col, passEvaluator{}, ex, st, al)

	m.cycle(context.Background())

	require.Len(t, st.inserted, 1)
	assert.False(t, st.inserted[0].Executed)
	assert.Empty(t, st.inserted[0].TxHash)
	assert.Zero(t, al.failed, "dry-run skip is not a failure")
}

func TestCycle_NotificationsDisabledSilencesAlerter(t *testing.T) {
	cfg := baseConfig()
	cfg.NotificationsEnabled = false
	col := &stubCollector{snapshots: map[string]domain.PriceSnapshot{
		"WETH/USDC": {"quickswap": 100, "sushiswap": 102},
	}}
	al := &stubAlerter{}
	m := newMonitor(cfg, col, passEvaluator{}, &stubExecutor{}, &stubStore{}, al)

	m.cycle(context.Background())

	assert.Zero(t, al.found)
	assert.Zero(t, al.submitted)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := baseConfig()
	cfg.MonitoringEnabled = false
	m := New(stubConfig{cfg}, &stubCollector{}, passEvaluator{}, &stubExecutor{}, nil, nil, nil, nil,
		10*time.Millisecond, 10*time.Millisecond, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
	assert.Equal(t, StateIdle, m.State())
}

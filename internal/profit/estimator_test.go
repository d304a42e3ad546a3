package profit

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flasharb/internal/domain"
)

type stubGas struct {
	cost float64
	err  error
}

func (s stubGas) EstimateCost(context.Context) (float64, error) {
	return s.cost, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func sampleOpp(profitPct float64) domain.Opportunity {
	return domain.Opportunity{
		Pair:         domain.TradingPair{Base: "WETH", Quote: "USDC"},
		BuyExchange:  "quickswap",
		SellExchange: "sushiswap",
		BuyPrice:     100,
		SellPrice:    100 * (1 + profitPct/100),
		ProfitPct:    profitPct,
	}
}

func TestNetProfit_ReferenceScenario(t *testing.T) {
	opp := sampleOpp(5.0)

	assert.InDelta(t, 0.9, FlashloanFee(1000, 0.0009), 1e-9)
	assert.InDelta(t, 50.0, GrossProfit(opp, 1000), 1e-9)
	assert.InDelta(t, 47.1, NetProfit(opp, 1000, 0.0009, 2.0), 1e-9)
}

func TestNetProfit_MonotonicInFeeAndGas(t *testing.T) {
	opp := sampleOpp(3.0)

	prev := NetProfit(opp, 1000, 0.0001, 1.0)
	for _, feeRate := range []float64{0.0005, 0.0009, 0.002, 0.01} {
		cur := NetProfit(opp, 1000, feeRate, 1.0)
		assert.Less(t, cur, prev, "net profit must decrease as fee rate grows")
		prev = cur
	}

	prev = NetProfit(opp, 1000, 0.0009, 0.5)
	for _, gas := range []float64{1.0, 2.0, 5.0, 20.0} {
		cur := NetProfit(opp, 1000, 0.0009, gas)
		assert.Less(t, cur, prev, "net profit must decrease as gas cost grows")
		prev = cur
	}
}

func TestSizeLoan_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		maxLoan float64
		want    float64
	}{
		{"default nominal scaled", 0, 5000, 1000},
		{"explicit nominal scaled", 2.5, 5000, 25},
		{"clamped to max", 500, 1000, 1000},
		{"negative nominal falls back", -3, 5000, 1000},
		{"tiny max still respected", 100, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp := sampleOpp(2.0)
			opp.Pair.Amount = tt.amount

			loan := SizeLoan(opp, tt.maxLoan)

			assert.InDelta(t, tt.want, loan, 1e-9)
			assert.Greater(t, loan, 0.0)
			assert.LessOrEqual(t, loan, tt.maxLoan)
		})
	}
}

func TestEstimator_Evaluate(t *testing.T) {
	est := NewEstimator(stubGas{cost: 2.0}, 0.0009, 0.01, 0.01, discardLogger())

	fl, ok := est.Evaluate(context.Background(), sampleOpp(5.0), 1000)

	require.True(t, ok)
	assert.InDelta(t, 0.9, fl.FlashloanFee, 1e-9)
	assert.InDelta(t, 2.0, fl.EstGasCost, 1e-9)
	assert.InDelta(t, 47.1, fl.NetProfit, 1e-9)
}

func TestEstimator_FiltersBelowMinNetProfit(t *testing.T) {
	// 0.1% on a 1000 loan is 1.0 gross; fee 0.9 and gas 0.5 leave -0.4.
	est := NewEstimator(stubGas{cost: 0.5}, 0.0009, 0.01, 0.01, discardLogger())

	fl, ok := est.Evaluate(context.Background(), sampleOpp(0.1), 1000)

	assert.False(t, ok)
	assert.Negative(t, fl.NetProfit)
}

func TestEstimator_GasOracleFallback(t *testing.T) {
	// When the oracle errors, the fallback is charged instead of zero.
	est := NewEstimator(stubGas{err: errors.New("rpc down")}, 0.0009, 0.01, 7.5, discardLogger())

	fl, ok := est.Evaluate(context.Background(), sampleOpp(5.0), 1000)

	require.True(t, ok)
	assert.InDelta(t, 7.5, fl.EstGasCost, 1e-9)
	assert.InDelta(t, 50.0-0.9-7.5, fl.NetProfit, 1e-9)
}

func TestEstimator_MinNetProfitIsExclusive(t *testing.T) {
	// Net profit exactly at the bound is not executable.
	opp := sampleOpp(1.0) // gross 10.0 on 1000
	est := NewEstimator(stubGas{cost: 9.1}, 0.0009, 0.0, 0.01, discardLogger())

	fl, ok := est.Evaluate(context.Background(), opp, 1000)

	assert.InDelta(t, 0.0, fl.NetProfit, 1e-9)
	assert.False(t, ok)
}

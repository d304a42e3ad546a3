// Package profit holds the flash-loan economics: loan sizing and net-profit
// estimation. The arithmetic lives in pure functions; Estimator only adds the
// gas-oracle lookup with its conservative fallback.
package profit

import (
	"context"
	"log/slog"

	"flasharb/internal/domain"
)

// GasEstimator supplies the estimated transaction cost of one flash-loan
// arbitrage, in native-asset units.
type GasEstimator interface {
	EstimateCost(ctx context.Context) (float64, error)
}

// FlashloanFee returns the fee charged by the lending pool for borrowing
// loanAmount at the given fractional rate (0.0009 = 0.09%).
func FlashloanFee(loanAmount, feeRate float64) float64 {
	return loanAmount * feeRate
}

// GrossProfit scales the opportunity's profit percentage by the loan amount.
// This is the percentage-of-loan formulation: the whole loan is assumed to be
// turned over at the detected divergence.
func GrossProfit(opp domain.Opportunity, loanAmount float64) float64 {
	return loanAmount * opp.ProfitPct / 100
}

// NetProfit is the gross profit estimate minus the flash-loan fee and the
// estimated gas cost. It is monotonically decreasing in feeRate and gasCost.
func NetProfit(opp domain.Opportunity, loanAmount, feeRate, gasCost float64) float64 {
	return GrossProfit(opp, loanAmount) - FlashloanFee(loanAmount, feeRate) - gasCost
}

// Estimator filters detected opportunities by estimated net profit after the
// flash-loan fee and gas.
type Estimator struct {
	gas             GasEstimator
	feeRate         float64
	minNetProfit    float64
	fallbackGasCost float64
	logger          *slog.Logger
}

// NewEstimator creates an Estimator. minNetProfit is the executable bound; it
// is a separate, typically smaller knob than the detection threshold.
// fallbackGasCost is substituted whenever the gas oracle is unreachable so a
// missing estimate never silently reads as zero cost.
func NewEstimator(gas GasEstimator, feeRate, minNetProfit, fallbackGasCost float64, logger *slog.Logger) *Estimator {
	return &Estimator{
		gas:             gas,
		feeRate:         feeRate,
		minNetProfit:    minNetProfit,
		fallbackGasCost: fallbackGasCost,
		logger:          logger.With(slog.String("component", "estimator")),
	}
}

// Evaluate computes the flash-loan economics for one opportunity at the given
// loan amount. The second return value reports whether the opportunity is
// executable, i.e. its net profit exceeds the minimum net-profit bound.
func (e *Estimator) Evaluate(ctx context.Context, opp domain.Opportunity, loanAmount float64) (domain.FlashloanOpportunity, bool) {
	gasCost, err := e.gas.EstimateCost(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "gas oracle unreachable, using fallback estimate",
			slog.Float64("fallback_gas_cost", e.fallbackGasCost),
			slog.String("error", err.Error()),
		)
		gasCost = e.fallbackGasCost
	}

	fl := domain.FlashloanOpportunity{
		Opportunity:  opp,
		LoanAmount:   loanAmount,
		FlashloanFee: FlashloanFee(loanAmount, e.feeRate),
		EstGasCost:   gasCost,
		NetProfit:    NetProfit(opp, loanAmount, e.feeRate, gasCost),
	}
	return fl, fl.NetProfit > e.minNetProfit
}

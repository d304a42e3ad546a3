package profit

import "flasharb/internal/domain"

const (
	// defaultNominalAmount is assumed when a pair carries no nominal trade
	// amount.
	defaultNominalAmount = 100.0

	// loanScaleFactor scales the nominal amount up so the fixed costs (fee
	// plus gas) are amortized over a larger position.
	loanScaleFactor = 10.0
)

// SizeLoan returns the loan amount to request for an opportunity: the pair's
// nominal trade amount scaled by a fixed factor and clamped to maxLoanAmount.
// The result is always in (0, maxLoanAmount] for any maxLoanAmount > 0.
//
// This policy is intentionally simple and conservative; it does not model
// liquidity depth or price impact.
func SizeLoan(opp domain.Opportunity, maxLoanAmount float64) float64 {
	nominal := opp.Pair.Amount
	if nominal <= 0 {
		nominal = defaultNominalAmount
	}
	loan := nominal * loanScaleFactor
	if loan > maxLoanAmount {
		loan = maxLoanAmount
	}
	return loan
}

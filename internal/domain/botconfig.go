package domain

import (
	"fmt"
	"time"
)

// BotConfig is the runtime-mutable bot state: which pairs to scan, the
// detection threshold, the loan cap, and the two operational toggles. It is
// owned by the config service, mutated only through its setter operations,
// and persisted synchronously after every mutation.
type BotConfig struct {
	Pairs                []TradingPair `json:"pairs"`
	ProfitThresholdPct   float64       `json:"profit_threshold_pct"`
	MaxLoanAmount        float64       `json:"max_loan_amount"`
	MonitoringEnabled    bool          `json:"monitoring_enabled"`
	NotificationsEnabled bool          `json:"notifications_enabled"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// Validate rejects configurations that would break the detection or sizing
// invariants. It is called at the mutation boundary; a failing input leaves
// the current configuration untouched.
func (c BotConfig) Validate() error {
	if len(c.Pairs) == 0 {
		return fmt.Errorf("%w: at least one trading pair is required", ErrValidation)
	}
	if c.ProfitThresholdPct <= 0 {
		return fmt.Errorf("%w: profit threshold must be > 0, got %v", ErrValidation, c.ProfitThresholdPct)
	}
	if c.MaxLoanAmount <= 0 {
		return fmt.Errorf("%w: max loan amount must be > 0, got %v", ErrValidation, c.MaxLoanAmount)
	}
	return nil
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the mutable pair slice.
func (c BotConfig) Clone() BotConfig {
	out := c
	out.Pairs = make([]TradingPair, len(c.Pairs))
	copy(out.Pairs, c.Pairs)
	return out
}

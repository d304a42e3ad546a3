package domain

import "time"

// Opportunity is a detected cross-exchange price divergence: buy on
// BuyExchange at BuyPrice, sell on SellExchange at SellPrice. ProfitPct is
// (sell-buy)/buy*100 and is at or above the detection threshold at creation
// time; the detector never materializes sub-threshold combinations.
type Opportunity struct {
	ID           string      `json:"id"`
	Pair         TradingPair `json:"pair"`
	BuyExchange  string      `json:"buy_exchange"`
	SellExchange string      `json:"sell_exchange"`
	BuyPrice     float64     `json:"buy_price"`
	SellPrice    float64     `json:"sell_price"`
	ProfitPct    float64     `json:"profit_percentage"`
	DetectedAt   time.Time   `json:"detected_at"`
}

// Route identifies the directed pair-and-exchange route of the opportunity,
// independent of prices and detection time.
func (o Opportunity) Route() string {
	return o.Pair.String() + " " + o.BuyExchange + "->" + o.SellExchange
}

// FlashloanOpportunity extends Opportunity with the flash-loan economics.
// It is only materialized when NetProfit clears the minimum net-profit bound,
// so any value of this type is executable by construction.
type FlashloanOpportunity struct {
	Opportunity

	LoanAmount   float64 `json:"loan_amount"`
	FlashloanFee float64 `json:"flashloan_fee"`
	EstGasCost   float64 `json:"estimated_gas_cost"`
	NetProfit    float64 `json:"net_profit"`

	// Executed and TxHash are filled in by the monitor when the execution
	// path ran for this opportunity.
	Executed bool   `json:"executed"`
	TxHash   string `json:"tx_hash,omitempty"`
}

// ExecutionMetrics aggregates the recorded opportunity history.
type ExecutionMetrics struct {
	TotalDetected   int64      `json:"total_detected"`
	TotalExecuted   int64      `json:"total_executed"`
	TotalNetProfit  float64    `json:"total_net_profit"`
	AvgNetProfit    float64    `json:"average_net_profit"`
	LastDetectedAt  *time.Time `json:"last_detected_at,omitempty"`
	LastExecutedAt  *time.Time `json:"last_executed_at,omitempty"`
}

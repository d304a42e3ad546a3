// Package detector turns a per-exchange price snapshot into the ranked list
// of profitable buy-low/sell-high exchange pairs. It is pure decision logic:
// no I/O, no side effects, so it is unit-testable without any mocking.
package detector

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"flasharb/internal/domain"
)

// Detect computes every ordered (buy, sell) exchange combination in the
// snapshot whose profit percentage meets thresholdPct and returns them sorted
// by profit percentage descending. Ties keep the exchange-iteration order,
// which is the sorted exchange-name order so results are deterministic across
// runs.
//
// A snapshot with fewer than two quotes yields an empty result; that is a
// normal outcome, not an error. Non-positive prices should never appear in a
// valid snapshot (the collector omits them) but are rejected defensively.
func Detect(snapshot domain.PriceSnapshot, pair domain.TradingPair, thresholdPct float64) []domain.Opportunity {
	if len(snapshot) < 2 || thresholdPct <= 0 {
		return nil
	}

	exchanges := make([]string, 0, len(snapshot))
	for name, price := range snapshot {
		if price <= 0 {
			continue
		}
		exchanges = append(exchanges, name)
	}
	if len(exchanges) < 2 {
		return nil
	}
	sort.Strings(exchanges)

	now := time.Now().UTC()
	var opps []domain.Opportunity
	for _, buy := range exchanges {
		for _, sell := range exchanges {
			if buy == sell {
				continue
			}
			buyPrice := snapshot[buy]
			sellPrice := snapshot[sell]
			profitPct := (sellPrice - buyPrice) / buyPrice * 100
			if profitPct < thresholdPct {
				continue
			}
			opps = append(opps, domain.Opportunity{
				ID:           uuid.New().String(),
				Pair:         pair,
				BuyExchange:  buy,
				SellExchange: sell,
				BuyPrice:     buyPrice,
				SellPrice:    sellPrice,
				ProfitPct:    profitPct,
				DetectedAt:   now,
			})
		}
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPct > opps[j].ProfitPct
	})
	return opps
}

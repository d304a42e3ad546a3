// Package exchange provides per-DEX price adapters and the concurrent
// snapshot collector that fans a pair out to every enabled adapter.
package exchange

import "context"

// Adapter quotes one trading pair on one exchange. GetPrice returns the price
// in quote units per base unit; an available price is always strictly
// positive. Unavailability (no pool, RPC failure, zero reserves) is signalled
// by an error, never by a zero or negative price.
type Adapter interface {
	Name() string
	GetPrice(ctx context.Context, base, quote string) (float64, error)
}

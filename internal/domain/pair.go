// Package domain defines the core value types, store interfaces, and sentinel
// errors shared by every layer of the flasharb bot.
package domain

import (
	"fmt"
	"strings"
)

// TradingPair identifies a base/quote token pair on a DEX. Identity is the
// (Base, Quote) tuple; Amount is the nominal per-trade quantity used by loan
// sizing and is deliberately excluded from identity and String.
type TradingPair struct {
	Base   string  `json:"base"`
	Quote  string  `json:"quote"`
	Amount float64 `json:"amount,omitempty"`
}

// String renders the pair in BASE/QUOTE form.
func (p TradingPair) String() string {
	return p.Base + "/" + p.Quote
}

// Equal reports whether two pairs have the same identity, ignoring Amount.
func (p TradingPair) Equal(other TradingPair) bool {
	return p.Base == other.Base && p.Quote == other.Quote
}

// ParsePair parses a "BASE/QUOTE" string into a TradingPair. Symbols are
// upper-cased and trimmed. It returns ErrValidation for anything that is not
// exactly two non-empty symbols separated by a slash.
func ParsePair(s string) (TradingPair, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return TradingPair{}, fmt.Errorf("%w: pair %q must be BASE/QUOTE", ErrValidation, s)
	}
	base := strings.ToUpper(strings.TrimSpace(parts[0]))
	quote := strings.ToUpper(strings.TrimSpace(parts[1]))
	if base == "" || quote == "" {
		return TradingPair{}, fmt.Errorf("%w: pair %q has an empty symbol", ErrValidation, s)
	}
	if base == quote {
		return TradingPair{}, fmt.Errorf("%w: pair %q base and quote are identical", ErrValidation, s)
	}
	return TradingPair{Base: base, Quote: quote}, nil
}

// ParsePairs parses a list of "BASE/QUOTE" strings. The first malformed entry
// aborts the parse so a configuration update is applied all-or-nothing.
func ParsePairs(ss []string) ([]TradingPair, error) {
	if len(ss) == 0 {
		return nil, fmt.Errorf("%w: at least one trading pair is required", ErrValidation)
	}
	pairs := make([]TradingPair, 0, len(ss))
	for _, s := range ss {
		p, err := ParsePair(s)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// PriceSnapshot maps an exchange name to its quote for one trading pair at one
// instant. Exchanges with a failed or non-positive quote are omitted, never
// stored as zero.
type PriceSnapshot map[string]float64

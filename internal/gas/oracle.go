// Package gas estimates what one flash-loan arbitrage transaction will cost,
// in native-asset units, from the chain's current gas price.
package gas

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"

	"flasharb/internal/domain"
)

// Oracle queries the chain's suggested gas price over JSON-RPC and multiplies
// it by the fixed gas-unit estimate for a flash loan plus two swaps.
type Oracle struct {
	client   *ethclient.Client
	gasUnits uint64
	logger   *slog.Logger
}

// Dial connects to the JSON-RPC endpoint and returns an Oracle. gasUnits is
// the assumed gas consumption of one arbitrage transaction (~500k covers the
// flash loan and both swap legs).
func Dial(ctx context.Context, rpcURL string, gasUnits uint64, logger *slog.Logger) (*Oracle, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("gas: dial %s: %w", rpcURL, err)
	}
	return NewOracle(client, gasUnits, logger), nil
}

// NewOracle wraps an existing ethclient.
func NewOracle(client *ethclient.Client, gasUnits uint64, logger *slog.Logger) *Oracle {
	return &Oracle{
		client:   client,
		gasUnits: gasUnits,
		logger:   logger.With(slog.String("component", "gas_oracle")),
	}
}

// GasPrice returns the node's suggested gas price in wei.
func (o *Oracle) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := o.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas: suggest gas price: %w", domain.ErrUnavailable)
	}
	return price, nil
}

// GasUnits returns the fixed per-transaction gas-unit estimate.
func (o *Oracle) GasUnits() uint64 {
	return o.gasUnits
}

// EstimateCost returns gasPrice * gasUnits converted from wei to native-asset
// units. The value is itself an estimate; callers must treat a failure here
// as "unknown", never as zero cost.
func (o *Oracle) EstimateCost(ctx context.Context) (float64, error) {
	price, err := o.GasPrice(ctx)
	if err != nil {
		return 0, err
	}

	wei := new(big.Int).Mul(price, new(big.Int).SetUint64(o.gasUnits))
	cost, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		new(big.Float).SetUint64(params.Ether),
	).Float64()

	o.logger.DebugContext(ctx, "gas cost estimated",
		slog.String("gas_price_wei", price.String()),
		slog.Uint64("gas_units", o.gasUnits),
		slog.Float64("cost_native", cost),
	)
	return cost, nil
}

// Close releases the underlying RPC connection.
func (o *Oracle) Close() {
	o.client.Close()
}

package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"flasharb/internal/chain"
	"flasharb/internal/domain"
)

// getAmountsOutABI is the single UniswapV2 router method the adapter needs.
const getAmountsOutABI = `[{
	"name": "getAmountsOut",
	"type": "function",
	"stateMutability": "view",
	"inputs": [
		{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
		{"internalType": "address[]", "name": "path", "type": "address[]"}
	],
	"outputs": [
		{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}
	]
}]`

var routerABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(getAmountsOutABI))
	if err != nil {
		panic(fmt.Sprintf("exchange: parse router abi: %v", err))
	}
	return parsed
}()

// RouterAdapter quotes a pair by calling getAmountsOut on a UniswapV2-style
// router with a one-base-token input. Every V2 fork (QuickSwap, SushiSwap,
// ApeSwap, PancakeSwap, Trader Joe, Pangolin, Biswap) exposes this method, so
// one adapter type covers the whole exchange list; only the router address
// differs.
type RouterAdapter struct {
	name    string
	network string
	router  common.Address
	client  *ethclient.Client
	logger  *slog.Logger
}

// NewRouterAdapter creates an adapter for the named DEX on the given network.
// The router address comes from the chain registry.
func NewRouterAdapter(name, network string, client *ethclient.Client, logger *slog.Logger) (*RouterAdapter, error) {
	router, err := chain.RouterByName(network, name)
	if err != nil {
		return nil, err
	}
	return &RouterAdapter{
		name:    name,
		network: network,
		router:  router,
		client:  client,
		logger:  logger.With(slog.String("exchange", name)),
	}, nil
}

// Name returns the DEX identifier.
func (a *RouterAdapter) Name() string { return a.name }

// GetPrice quotes base/quote through the router's getAmountsOut with an
// amountIn of exactly one base token. The returned price is amountOut scaled
// by the quote token's decimals.
func (a *RouterAdapter) GetPrice(ctx context.Context, base, quote string) (float64, error) {
	baseToken, err := chain.TokenBySymbol(a.network, base)
	if err != nil {
		return 0, err
	}
	quoteToken, err := chain.TokenBySymbol(a.network, quote)
	if err != nil {
		return 0, err
	}

	amountIn := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(baseToken.Decimals)), nil)
	path := []common.Address{baseToken.Address, quoteToken.Address}

	data, err := routerABI.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return 0, fmt.Errorf("%s: pack getAmountsOut: %w", a.name, err)
	}

	out, err := a.client.CallContract(ctx, ethereum.CallMsg{To: &a.router, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: getAmountsOut %s/%s: %w", a.name, base, quote, domain.ErrUnavailable)
	}

	amounts, err := unpackAmounts(out)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", a.name, err)
	}

	amountOut := amounts[len(amounts)-1]
	price := toFloat(amountOut, quoteToken.Decimals)
	if price <= 0 || math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, fmt.Errorf("%s: non-positive quote for %s/%s: %w", a.name, base, quote, domain.ErrUnavailable)
	}

	a.logger.DebugContext(ctx, "quote fetched",
		slog.String("pair", base+"/"+quote),
		slog.Float64("price", price),
	)
	return price, nil
}

// unpackAmounts decodes the uint256[] return of getAmountsOut.
func unpackAmounts(data []byte) ([]*big.Int, error) {
	values, err := routerABI.Unpack("getAmountsOut", data)
	if err != nil {
		return nil, fmt.Errorf("unpack getAmountsOut: %w", err)
	}
	amounts, ok := values[0].([]*big.Int)
	if !ok || len(amounts) < 2 {
		return nil, fmt.Errorf("getAmountsOut returned malformed amounts: %w", domain.ErrUnavailable)
	}
	return amounts, nil
}

// toFloat converts a token amount in its smallest unit to a float in whole
// token units.
func toFloat(amount *big.Int, decimals uint8) float64 {
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), scale).Float64()
	return f
}

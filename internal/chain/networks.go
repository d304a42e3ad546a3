// Package chain holds the static per-network registries the bot needs to talk
// to a chain: RPC defaults, explorer hosts, ERC-20 token metadata, and the
// UniswapV2-style router deployed by each supported DEX.
package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/domain"
)

// Network describes one supported chain.
type Network struct {
	Name        string
	ChainID     *big.Int
	DefaultRPC  string
	ExplorerURL string
	// NativeSymbol is the gas asset; gas costs and net profit are expressed
	// in this unit.
	NativeSymbol string
}

// Token is an ERC-20 deployment on a specific network.
type Token struct {
	Symbol   string
	Address  common.Address
	Decimals uint8
}

var networks = map[string]Network{
	"polygon": {
		Name:         "polygon",
		ChainID:      big.NewInt(137),
		DefaultRPC:   "https://polygon-rpc.com",
		ExplorerURL:  "https://polygonscan.com",
		NativeSymbol: "MATIC",
	},
	"bsc": {
		Name:         "bsc",
		ChainID:      big.NewInt(56),
		DefaultRPC:   "https://bsc-dataseed.binance.org",
		ExplorerURL:  "https://bscscan.com",
		NativeSymbol: "BNB",
	},
	"avalanche": {
		Name:         "avalanche",
		ChainID:      big.NewInt(43114),
		DefaultRPC:   "https://api.avax.network/ext/bc/C/rpc",
		ExplorerURL:  "https://snowtrace.io",
		NativeSymbol: "AVAX",
	},
}

// ByName returns the network registry entry for the given name.
func ByName(name string) (Network, error) {
	n, ok := networks[strings.ToLower(name)]
	if !ok {
		return Network{}, fmt.Errorf("chain: unsupported network %q", name)
	}
	return n, nil
}

// TxURL returns the explorer link for a transaction hash.
func (n Network) TxURL(txHash string) string {
	return n.ExplorerURL + "/tx/" + txHash
}

// tokens maps network name -> symbol -> deployment.
var tokens = map[string]map[string]Token{
	"polygon": {
		"WETH":   {Symbol: "WETH", Address: common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619"), Decimals: 18},
		"USDC":   {Symbol: "USDC", Address: common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"), Decimals: 6},
		"USDT":   {Symbol: "USDT", Address: common.HexToAddress("0xc2132D05D31c914a87C6611C10748AEb04B58e8F"), Decimals: 6},
		"WMATIC": {Symbol: "WMATIC", Address: common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"), Decimals: 18},
		"DAI":    {Symbol: "DAI", Address: common.HexToAddress("0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063"), Decimals: 18},
		"WBTC":   {Symbol: "WBTC", Address: common.HexToAddress("0x1BFD67037B42Cf73acF2047067bd4F2C47D9BfD6"), Decimals: 8},
	},
	"bsc": {
		"WBNB": {Symbol: "WBNB", Address: common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"), Decimals: 18},
		"BUSD": {Symbol: "BUSD", Address: common.HexToAddress("0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56"), Decimals: 18},
		"USDT": {Symbol: "USDT", Address: common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"), Decimals: 18},
		"ETH":  {Symbol: "ETH", Address: common.HexToAddress("0x2170Ed0880ac9A755fd29B2688956BD959F933F8"), Decimals: 18},
	},
	"avalanche": {
		"WAVAX": {Symbol: "WAVAX", Address: common.HexToAddress("0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7"), Decimals: 18},
		"USDC":  {Symbol: "USDC", Address: common.HexToAddress("0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E"), Decimals: 6},
		"WETH":  {Symbol: "WETH", Address: common.HexToAddress("0x49D5c2BdFfac6CE2BFdB6640F4F80f226bc10bAB"), Decimals: 18},
	},
}

// TokenBySymbol resolves an ERC-20 deployment on the given network. Unknown
// symbols surface as validation errors so a bad pair is rejected before any
// RPC call is made.
func TokenBySymbol(network, symbol string) (Token, error) {
	byNet, ok := tokens[strings.ToLower(network)]
	if !ok {
		return Token{}, fmt.Errorf("chain: unsupported network %q", network)
	}
	t, ok := byNet[strings.ToUpper(symbol)]
	if !ok {
		return Token{}, fmt.Errorf("%w: token %q is not registered on %s", domain.ErrValidation, symbol, network)
	}
	return t, nil
}

// routers maps network name -> DEX name -> UniswapV2-style router address.
var routers = map[string]map[string]common.Address{
	"polygon": {
		"quickswap": common.HexToAddress("0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff"),
		"sushiswap": common.HexToAddress("0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506"),
		"apeswap":   common.HexToAddress("0xC0788A3aD43d79aa53B09c2EaCc313A787d1d607"),
	},
	"bsc": {
		"pancakeswap": common.HexToAddress("0x10ED43C718714eb63d5aA57B78B54704E256024E"),
		"biswap":      common.HexToAddress("0x3a6d8cA21D1CF76F653A67577FA0D27453350dD8"),
		"apeswap":     common.HexToAddress("0xcF0feBd3f17CEf5b47b0cD257aCf6025c5BFf3b7"),
	},
	"avalanche": {
		"traderjoe": common.HexToAddress("0x60aE616a2155Ee3d9A68541Ba4544862310933d4"),
		"pangolin":  common.HexToAddress("0xE54Ca86531e17Ef3616d22Ca28b0D458b6C89106"),
	},
}

// RouterByName resolves a DEX router address on the given network.
func RouterByName(network, dex string) (common.Address, error) {
	byNet, ok := routers[strings.ToLower(network)]
	if !ok {
		return common.Address{}, fmt.Errorf("chain: unsupported network %q", network)
	}
	addr, ok := byNet[strings.ToLower(dex)]
	if !ok {
		return common.Address{}, fmt.Errorf("chain: dex %q is not registered on %s", dex, network)
	}
	return addr, nil
}

// Exchanges returns the DEX names registered on a network, sorted order not
// guaranteed; callers that need determinism sort the result.
func Exchanges(network string) []string {
	byNet := routers[strings.ToLower(network)]
	names := make([]string, 0, len(byNet))
	for n := range byNet {
		names = append(names, n)
	}
	return names
}

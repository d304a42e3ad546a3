// Package executor submits flash-loan arbitrage transactions to the
// on-chain FlashLoanArbitrage contract.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"flasharb/internal/chain"
	"flasharb/internal/domain"
	"flasharb/internal/wallet"
)

// executeArbitrageABI is the entrypoint of the deployed FlashLoanArbitrage
// contract: borrow tokenA, swap A->B on dexRouter1, swap B->A on dexRouter2,
// repay the loan plus premium, revert unless at least minProfit remains.
const executeArbitrageABI = `[{
	"name": "executeArbitrage",
	"type": "function",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "tokenA", "type": "address"},
		{"name": "tokenB", "type": "address"},
		{"name": "amount", "type": "uint256"},
		{"name": "dexRouter1", "type": "address"},
		{"name": "dexRouter2", "type": "address"},
		{"name": "minProfit", "type": "uint256"}
	],
	"outputs": []
}]`

var arbitrageABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(executeArbitrageABI))
	if err != nil {
		panic(fmt.Sprintf("executor: parsing arbitrage ABI: %v", err))
	}
	return parsed
}()

// Executor signs and sends executeArbitrage transactions. In dry-run mode
// Execute never touches the chain and reports ErrDisabled instead.
type Executor struct {
	client   *ethclient.Client
	wallet   *wallet.Wallet
	contract common.Address
	network  chain.Network
	gasUnits uint64
	dryRun   bool
	dedup    *Dedup
	logger   *slog.Logger
}

// NewExecutor creates an Executor bound to the given network and contract.
// wallet may be nil only when dryRun is true.
func NewExecutor(
	client *ethclient.Client,
	w *wallet.Wallet,
	contractAddr string,
	network chain.Network,
	gasUnits uint64,
	dryRun bool,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		client:   client,
		wallet:   w,
		contract: common.HexToAddress(contractAddr),
		network:  network,
		gasUnits: gasUnits,
		dryRun:   dryRun,
		dedup:    NewDedup(2 * time.Minute),
		logger:   logger.With(slog.String("component", "executor")),
	}
}

// Execute submits the flash-loan arbitrage described by fl and returns the
// transaction hash. Submission is fire-and-forget; callers that need the
// receipt should watch the returned hash themselves.
func (e *Executor) Execute(ctx context.Context, fl *domain.FlashloanOpportunity) (string, error) {
	if e.dryRun {
		e.logger.InfoContext(ctx, "dry run, skipping on-chain execution",
			slog.String("pair", fl.Pair.String()),
			slog.Float64("net_profit", fl.NetProfit),
		)
		return "", fmt.Errorf("executor: dry run: %w", domain.ErrDisabled)
	}
	if e.dedup.IsDuplicate(fl.Route()) {
		return "", fmt.Errorf("executor: route %s executed recently: %w", fl.Route(), domain.ErrDisabled)
	}

	input, err := e.packCallData(fl)
	if err != nil {
		return "", err
	}

	nonce, err := e.client.PendingNonceAt(ctx, e.wallet.Address())
	if err != nil {
		return "", fmt.Errorf("executor: fetching nonce: %w", err)
	}
	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("executor: fetching gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &e.contract,
		Value:    big.NewInt(0),
		Gas:      e.gasUnits,
		GasPrice: gasPrice,
		Data:     input,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(e.network.ChainID), e.wallet.Key())
	if err != nil {
		return "", fmt.Errorf("executor: signing transaction: %w", err)
	}

	if err := e.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("executor: sending transaction: %w", err)
	}

	hash := signed.Hash().Hex()
	e.logger.InfoContext(ctx, "arbitrage transaction submitted",
		slog.String("pair", fl.Pair.String()),
		slog.String("buy_exchange", fl.BuyExchange),
		slog.String("sell_exchange", fl.SellExchange),
		slog.Float64("loan_amount", fl.LoanAmount),
		slog.Float64("net_profit", fl.NetProfit),
		slog.String("tx", hash),
		slog.String("explorer", e.network.TxURL(hash)),
	)
	return hash, nil
}

// packCallData resolves the pair and route into on-chain addresses and packs
// the executeArbitrage calldata.
func (e *Executor) packCallData(fl *domain.FlashloanOpportunity) ([]byte, error) {
	tokenA, err := chain.TokenBySymbol(e.network.Name, fl.Pair.Base)
	if err != nil {
		return nil, fmt.Errorf("executor: resolving base token: %w", err)
	}
	tokenB, err := chain.TokenBySymbol(e.network.Name, fl.Pair.Quote)
	if err != nil {
		return nil, fmt.Errorf("executor: resolving quote token: %w", err)
	}
	buyRouter, err := chain.RouterByName(e.network.Name, fl.BuyExchange)
	if err != nil {
		return nil, fmt.Errorf("executor: resolving buy router: %w", err)
	}
	sellRouter, err := chain.RouterByName(e.network.Name, fl.SellExchange)
	if err != nil {
		return nil, fmt.Errorf("executor: resolving sell router: %w", err)
	}

	amount := toBaseUnits(fl.LoanAmount, tokenA.Decimals)
	minProfit := toBaseUnits(fl.NetProfit, tokenA.Decimals)

	input, err := arbitrageABI.Pack("executeArbitrage",
		tokenA.Address, tokenB.Address, amount, buyRouter, sellRouter, minProfit)
	if err != nil {
		return nil, fmt.Errorf("executor: packing calldata: %w", err)
	}
	return input, nil
}

// toBaseUnits converts a human-readable token amount into its smallest
// on-chain unit. Fractions beyond the token's precision are truncated.
func toBaseUnits(amount float64, decimals uint8) *big.Int {
	if amount < 0 {
		amount = 0
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	scaled := new(big.Float).Mul(big.NewFloat(amount), scale)
	out, _ := scaled.Int(nil)
	return out
}

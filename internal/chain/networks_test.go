package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flasharb/internal/domain"
)

func TestByName(t *testing.T) {
	n, err := ByName("Polygon")
	require.NoError(t, err)
	assert.Equal(t, int64(137), n.ChainID.Int64())
	assert.Equal(t, "MATIC", n.NativeSymbol)

	_, err = ByName("solana")
	require.Error(t, err)
}

func TestTxURL(t *testing.T) {
	n, err := ByName("bsc")
	require.NoError(t, err)
	assert.Equal(t, "https://bscscan.com/tx/0xabc", n.TxURL("0xabc"))
}

func TestTokenBySymbol(t *testing.T) {
	tok, err := TokenBySymbol("polygon", "usdc")
	require.NoError(t, err)
	assert.Equal(t, uint8(6), tok.Decimals)
	assert.Equal(t, "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", tok.Address.Hex())

	_, err = TokenBySymbol("polygon", "DOGE")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = TokenBySymbol("solana", "USDC")
	require.Error(t, err)
}

func TestRouterByName(t *testing.T) {
	addr, err := RouterByName("polygon", "QuickSwap")
	require.NoError(t, err)
	assert.Equal(t, "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff", addr.Hex())

	_, err = RouterByName("polygon", "pancakeswap")
	require.Error(t, err)
}

func TestExchanges(t *testing.T) {
	names := Exchanges("avalanche")
	assert.ElementsMatch(t, []string{"traderjoe", "pangolin"}, names)
	assert.Empty(t, Exchanges("solana"))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    TradingPair
		wantErr bool
	}{
		{name: "plain", in: "WETH/USDC", want: TradingPair{Base: "WETH", Quote: "USDC"}},
		{name: "lowercase normalised", in: "weth/usdc", want: TradingPair{Base: "WETH", Quote: "USDC"}},
		{name: "trims whitespace", in: "  WMATIC / USDT ", want: TradingPair{Base: "WMATIC", Quote: "USDT"}},
		{name: "missing slash", in: "WETHUSDC", wantErr: true},
		{name: "too many parts", in: "A/B/C", wantErr: true},
		{name: "empty quote", in: "WETH/", wantErr: true},
		{name: "empty string", in: "", wantErr: true},
		{name: "identical symbols", in: "USDC/usdc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePair(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePairs_AllOrNothing(t *testing.T) {
	_, err := ParsePairs([]string{"WETH/USDC", "broken"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParsePairs(nil)
	assert.ErrorIs(t, err, ErrValidation)

	pairs, err := ParsePairs([]string{"WETH/USDC", "WMATIC/USDT"})
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "WMATIC/USDT", pairs[1].String())
}

func TestPairEqualIgnoresAmount(t *testing.T) {
	a := TradingPair{Base: "WETH", Quote: "USDC", Amount: 1}
	b := TradingPair{Base: "WETH", Quote: "USDC", Amount: 100}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(TradingPair{Base: "WETH", Quote: "USDT"}))
}

func TestBotConfigValidate(t *testing.T) {
	valid := BotConfig{
		Pairs:              []TradingPair{{Base: "WETH", Quote: "USDC"}},
		ProfitThresholdPct: 1,
		MaxLoanAmount:      1000,
	}
	require.NoError(t, valid.Validate())

	noPairs := valid
	noPairs.Pairs = nil
	assert.ErrorIs(t, noPairs.Validate(), ErrValidation)

	badThreshold := valid
	badThreshold.ProfitThresholdPct = 0
	assert.ErrorIs(t, badThreshold.Validate(), ErrValidation)

	badLoan := valid
	badLoan.MaxLoanAmount = -5
	assert.ErrorIs(t, badLoan.Validate(), ErrValidation)
}

func TestBotConfigCloneIsolatesPairs(t *testing.T) {
	orig := BotConfig{
		Pairs:              []TradingPair{{Base: "WETH", Quote: "USDC"}},
		ProfitThresholdPct: 1,
		MaxLoanAmount:      1000,
	}
	clone := orig.Clone()
	clone.Pairs[0].Base = "WBTC"

	assert.Equal(t, "WETH", orig.Pairs[0].Base)
}

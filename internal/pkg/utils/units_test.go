package utils

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestScaleUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		decimals uint8
		want     string
	}{
		{"usdc whole", big.NewInt(1_000_000), 6, "1"},
		{"usdc fractional", big.NewInt(1_500_000), 6, "1.5"},
		{"weth", big.NewInt(2_000_000_000_000_000_000), 18, "2"},
		{"zero decimals", big.NewInt(42), 0, "42"},
		{"zero amount", big.NewInt(0), 18, "0"},
		{"nil amount", nil, 6, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleUnits(tt.amount, tt.decimals)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"ScaleUnits() = %s, want %s", got, tt.want)
		})
	}
}

func TestScaleUnitsNoPrecisionLoss(t *testing.T) {
	// 18-decimal amounts overflow float64 precision; the decimal path must not.
	raw, ok := new(big.Int).SetString("123456789012345678901", 10)
	assert.True(t, ok)
	got := ScaleUnits(raw, 18)
	assert.Equal(t, "123.456789012345678901", got.String())
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.2345", FormatUnits(big.NewInt(1_234_500_000_000_000_000), 18))
	assert.Equal(t, "0", FormatUnits(big.NewInt(0), 18))
	assert.Equal(t, "0", FormatUnits(nil, 18))
	assert.Equal(t, "42", FormatUnits(big.NewInt(42), 0))
	assert.Equal(t, "-1.5", FormatUnits(big.NewInt(-1_500_000), 6))
}

func TestTruncateEthAddress(t *testing.T) {
	assert.Equal(t, "0xc79A...EDda", TruncateEthAddress("0xc79AB5D4544E50Db86061cF34908Ea42ADc2EDda"))
	assert.Equal(t, "0xabc", TruncateEthAddress("0xabc"), "short input returned unchanged")
}

func TestBatchStrings(t *testing.T) {
	assert.Empty(t, BatchStrings(nil, 5))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, BatchStrings([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a", "b", "c"}}, BatchStrings([]string{"a", "b", "c"}, 0), "non-positive size means one batch")
}

package service

import (
	"math/big"
	"testing"

	"unipool_backend/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assetBalance(symbol, name string, decimals uint8, raw int64) entity.AssetBalance {
	return entity.AssetBalance{
		Asset: entity.Asset{
			Address:     "0x" + symbol,
			Symbol:      symbol,
			DisplayName: name,
			Decimals:    decimals,
			PriceID:     symbol,
		},
		Raw: big.NewInt(raw),
	}
}

func pricePoint(id string, usd float64) entity.PricePoint {
	return entity.PricePoint{PriceID: id, PriceUSD: decimal.NewFromFloat(usd)}
}

func TestAggregateNormalizesPriceIDCase(t *testing.T) {
	weth := assetBalance("weth", "Wrapped Ether", 18, 1_000_000_000_000_000_000)
	weth.PriceID = "WETH"

	snapshot := Aggregate([]entity.AssetBalance{weth}, map[string]entity.PricePoint{
		"weth": pricePoint("weth", 2000.0),
	})

	require.Len(t, snapshot.Assets, 1)
	assert.True(t, decimal.NewFromInt(2000).Equal(snapshot.Assets[0].ValueUSD),
		"a mixed-case price id must still resolve against the lowercase map")
}

func TestAggregateScalesRawBalances(t *testing.T) {
	balances := []entity.AssetBalance{
		assetBalance("usdc", "USD Coin", 6, 1_500_000),          // 1.5
		assetBalance("weth", "Wrapped Ether", 18, 2_000_000_000_000_000_000), // 2.0
	}
	prices := map[string]entity.PricePoint{
		"usdc": pricePoint("usdc", 1.0),
		"weth": pricePoint("weth", 2000.0),
	}

	snapshot := Aggregate(balances, prices)
	require.Len(t, snapshot.Assets, 2)

	assert.True(t, snapshot.Assets[0].HumanBalance.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, snapshot.Assets[0].ValueUSD.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, snapshot.Assets[1].HumanBalance.Equal(decimal.RequireFromString("2")))
	assert.True(t, snapshot.Assets[1].ValueUSD.Equal(decimal.RequireFromString("4000")))
	assert.True(t, snapshot.TotalValueUSD.Equal(decimal.RequireFromString("4001.5")))
}

func TestAggregateMissingPriceValuesAtZero(t *testing.T) {
	balances := []entity.AssetBalance{
		assetBalance("usdc", "USD Coin", 6, 1_000_000),
		assetBalance("mystery", "Mystery Token", 18, 5_000_000_000_000_000_000),
	}
	prices := map[string]entity.PricePoint{
		"usdc": pricePoint("usdc", 1.0),
	}

	snapshot := Aggregate(balances, prices)
	require.Len(t, snapshot.Assets, 2)

	// The unpriced asset stays in the snapshot at zero value but is excluded
	// from weights and slices.
	assert.True(t, snapshot.Assets[1].ValueUSD.IsZero())
	assert.NotContains(t, snapshot.Weights, "mystery")
	require.Len(t, snapshot.Slices, 1)
	assert.True(t, snapshot.Weights["usdc"].Equal(decimal.RequireFromString("100")))
}

func TestAggregateWeightsSumToHundred(t *testing.T) {
	balances := []entity.AssetBalance{
		assetBalance("a", "Token A", 6, 1_000_000),
		assetBalance("b", "Token B", 6, 2_000_000),
		assetBalance("c", "Token C", 6, 3_000_000),
	}
	prices := map[string]entity.PricePoint{
		"a": pricePoint("a", 1.0),
		"b": pricePoint("b", 1.0),
		"c": pricePoint("c", 1.0),
	}

	snapshot := Aggregate(balances, prices)
	sum := decimal.Zero
	for _, w := range snapshot.Weights {
		assert.True(t, w.IsPositive())
		sum = sum.Add(w)
	}
	diff := sum.Sub(decimal.NewFromInt(100)).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.05")),
		"weights should sum to ~100, got %s", sum)
}

func TestAggregateAllZeroBalances(t *testing.T) {
	balances := []entity.AssetBalance{
		assetBalance("a", "Token A", 6, 0),
		assetBalance("b", "Token B", 18, 0),
	}
	prices := map[string]entity.PricePoint{
		"a": pricePoint("a", 1.0),
		"b": pricePoint("b", 2000.0),
	}

	snapshot := Aggregate(balances, prices)
	assert.True(t, snapshot.TotalValueUSD.IsZero())
	assert.Empty(t, snapshot.Weights)
	assert.Empty(t, snapshot.Slices)
	assert.Len(t, snapshot.Assets, 2, "zero-valued assets still appear in the asset list")
}

func TestAggregateSingleAssetScenario(t *testing.T) {
	balances := []entity.AssetBalance{assetBalance("a", "Token A", 6, 1_000_000_000)}
	prices := map[string]entity.PricePoint{"a": pricePoint("a", 2.0)}

	snapshot := Aggregate(balances, prices)
	require.Len(t, snapshot.Assets, 1)
	assert.True(t, snapshot.Assets[0].HumanBalance.Equal(decimal.RequireFromString("1000")))
	assert.True(t, snapshot.Assets[0].ValueUSD.Equal(decimal.RequireFromString("2000")))
	assert.True(t, snapshot.Weights["a"].Equal(decimal.RequireFromString("100")))
}

func TestAggregateThirtySeventyScenario(t *testing.T) {
	balances := []entity.AssetBalance{
		assetBalance("a", "Token A", 6, 300_000_000), // $300 at $1
		assetBalance("b", "Token B", 6, 700_000_000), // $700 at $1
	}
	prices := map[string]entity.PricePoint{
		"a": pricePoint("a", 1.0),
		"b": pricePoint("b", 1.0),
	}

	snapshot := Aggregate(balances, prices)
	assert.True(t, snapshot.Weights["a"].Equal(decimal.RequireFromString("30")))
	assert.True(t, snapshot.Weights["b"].Equal(decimal.RequireFromString("70")))
	assert.Equal(t, "Token A Value $300.00", snapshot.Slices[0].Label)
	assert.Equal(t, "Token B Value $700.00", snapshot.Slices[1].Label)
}

func TestAggregateIsDeterministic(t *testing.T) {
	balances := []entity.AssetBalance{
		assetBalance("a", "Token A", 6, 123_456_789),
		assetBalance("b", "Token B", 18, 987_654_321_000_000_000),
	}
	prices := map[string]entity.PricePoint{
		"a": pricePoint("a", 1.37),
		"b": pricePoint("b", 42.42),
	}

	first := Aggregate(balances, prices)
	second := Aggregate(balances, prices)

	assert.True(t, first.TotalValueUSD.Equal(second.TotalValueUSD))
	require.Equal(t, len(first.Assets), len(second.Assets))
	for i := range first.Assets {
		assert.True(t, first.Assets[i].ValueUSD.Equal(second.Assets[i].ValueUSD))
	}
	assert.Equal(t, first.Slices, second.Slices)
}

func TestAggregateEmptyPortfolio(t *testing.T) {
	snapshot := Aggregate(nil, map[string]entity.PricePoint{})
	assert.Empty(t, snapshot.Assets)
	assert.True(t, snapshot.TotalValueUSD.IsZero())
	assert.Empty(t, snapshot.Weights)
	assert.Empty(t, snapshot.Slices)
}

func TestAggregateZeroBalanceExcludedFromSlices(t *testing.T) {
	balances := []entity.AssetBalance{
		assetBalance("usdc", "USD Coin", 6, 1_000_000),
		assetBalance("weth", "Wrapped Ether", 18, 0),
	}
	prices := map[string]entity.PricePoint{
		"usdc": pricePoint("usdc", 1.0),
		"weth": pricePoint("weth", 2000.0),
	}

	snapshot := Aggregate(balances, prices)
	require.Len(t, snapshot.Slices, 1)
	assert.NotContains(t, snapshot.Weights, "weth")
}

func TestCompositeLabel(t *testing.T) {
	label := CompositeLabel("Wrapped Ether", decimal.RequireFromString("1234.5"))
	assert.Equal(t, "Wrapped Ether Value $1234.50", label)

	label = CompositeLabel("USD Coin", decimal.RequireFromString("0.005"))
	assert.Equal(t, "USD Coin Value $0.01", label)
}

func TestDerivePosition(t *testing.T) {
	reads := &entity.PoolReads{
		UserShares:      big.NewInt(100_000_000),  // 100
		UserShareValue:  big.NewInt(150_000_000),  // 150
		UserInvested:    big.NewInt(120_000_000),  // 120
		StableBalance:   big.NewInt(50_000_000),   // 50
		StableAllowance: big.NewInt(1_000_000_000),
	}

	position := DerivePosition("0xabc", reads, 6)
	assert.Equal(t, "0xabc", position.Owner)
	assert.True(t, position.Shares.Equal(decimal.RequireFromString("100")))
	assert.True(t, position.PnlUSD.Equal(decimal.RequireFromString("30")))
	assert.True(t, position.PnlPercent.Equal(decimal.RequireFromString("25")))
}

func TestDerivePositionZeroInvestedHasZeroPnlPercent(t *testing.T) {
	reads := &entity.PoolReads{
		UserShares:     big.NewInt(0),
		UserShareValue: big.NewInt(5_000_000),
		UserInvested:   big.NewInt(0),
	}

	position := DerivePosition("0xabc", reads, 6)
	assert.True(t, position.PnlPercent.IsZero(), "zero invested must never divide")
	assert.True(t, position.PnlUSD.Equal(decimal.RequireFromString("5")))
}

func TestDerivePositionNilReadsScaleToZero(t *testing.T) {
	position := DerivePosition("0xabc", &entity.PoolReads{}, 6)
	assert.True(t, position.Shares.IsZero())
	assert.True(t, position.ShareValueUSD.IsZero())
	assert.True(t, position.PnlPercent.IsZero())
}

func TestWithdrawBasisPoints(t *testing.T) {
	tests := []struct {
		percent float64
		want    uint64
	}{
		{100, 10_000},
		{50, 5_000},
		{33.7, 3_370},
		{33.337, 3_333}, // fractional basis points floor
		{0.009, 0},
		{0, 0},
		{-5, 0},
		{150, 10_000}, // clamped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WithdrawBasisPoints(tt.percent), "percent %v", tt.percent)
	}
}

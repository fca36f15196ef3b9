package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"unipool_backend/internal/domain/entity"
	"unipool_backend/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

const maxWithdrawBasisPoints = 10_000

var oneHundred = decimal.NewFromInt(100)

// Aggregate values the resolved asset balances at the given USD prices and
// produces a portfolio snapshot. An asset whose price id is missing from the
// price map is valued at zero rather than dropped. Weights and chart slices
// cover only assets with a positive USD value, so the percentages sum to ~100
// whenever at least one asset has value.
func Aggregate(balances []entity.AssetBalance, prices map[string]entity.PricePoint) *entity.PortfolioSnapshot {
	snapshot := &entity.PortfolioSnapshot{
		Assets:        make([]entity.ValuedAsset, 0, len(balances)),
		TotalValueUSD: decimal.Zero,
		Weights:       make(map[string]decimal.Decimal),
		Slices:        make([]entity.AllocationSlice, 0, len(balances)),
		GeneratedAt:   time.Now().UTC(),
	}

	for _, b := range balances {
		human := utils.ScaleUnits(b.Raw, b.Decimals)

		// Price ids are lowercase by construction, but the lookup normalizes
		// anyway so the function holds for arbitrary callers.
		var price decimal.Decimal
		if point, ok := prices[strings.ToLower(b.PriceID)]; ok {
			price = point.PriceUSD
		}

		value := human.Mul(price)
		snapshot.Assets = append(snapshot.Assets, entity.ValuedAsset{
			Asset:        b.Asset,
			HumanBalance: human,
			PriceUSD:     price,
			ValueUSD:     value,
		})
		snapshot.TotalValueUSD = snapshot.TotalValueUSD.Add(value)
	}

	if snapshot.TotalValueUSD.IsPositive() {
		for _, a := range snapshot.Assets {
			if !a.ValueUSD.IsPositive() {
				continue
			}
			weight := a.ValueUSD.Div(snapshot.TotalValueUSD).Mul(oneHundred).Round(2)
			snapshot.Weights[a.Symbol] = weight
			snapshot.Slices = append(snapshot.Slices, entity.AllocationSlice{
				Label:   CompositeLabel(a.DisplayName, a.ValueUSD),
				Percent: weight,
			})
		}
	}

	return snapshot
}

// CompositeLabel renders the chart label for an asset holding, e.g.
// "Wrapped Ether Value $1234.56".
func CompositeLabel(displayName string, valueUSD decimal.Decimal) string {
	return fmt.Sprintf("%s Value $%s", displayName, valueUSD.StringFixed(2))
}

// DerivePosition computes a user's position from the raw pool reads. Raw
// share and USD figures are denominated in stable-asset units. When nothing
// was invested the PnL percentage is zero, never a division by zero.
func DerivePosition(owner string, reads *entity.PoolReads, stableDecimals uint8) *entity.UserPosition {
	position := &entity.UserPosition{
		Owner:         owner,
		Shares:        utils.ScaleUnits(reads.UserShares, stableDecimals),
		ShareValueUSD: utils.ScaleUnits(reads.UserShareValue, stableDecimals),
		InvestedUSD:   utils.ScaleUnits(reads.UserInvested, stableDecimals),
		StableBalance: utils.ScaleUnits(reads.StableBalance, stableDecimals),
		StableAllowed: utils.ScaleUnits(reads.StableAllowance, stableDecimals),
	}

	position.PnlUSD = position.ShareValueUSD.Sub(position.InvestedUSD)
	if position.InvestedUSD.IsPositive() {
		position.PnlPercent = position.PnlUSD.Div(position.InvestedUSD).Mul(oneHundred).Round(2)
	} else {
		position.PnlPercent = decimal.Zero
	}

	return position
}

// WithdrawBasisPoints converts a withdrawal percentage to contract basis
// points, flooring fractional values (33.337% becomes 3333) and clamping to
// the [0, 10000] range.
func WithdrawBasisPoints(percent float64) uint64 {
	if percent <= 0 || math.IsNaN(percent) {
		return 0
	}
	bps := uint64(math.Floor(percent * 100))
	if bps > maxWithdrawBasisPoints {
		return maxWithdrawBasisPoints
	}
	return bps
}

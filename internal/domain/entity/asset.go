package entity

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Asset holds the display metadata of a token held by the pool.
// Assets are re-resolved on every aggregation pass; the on-chain asset list
// is mutable and nothing here is persisted between passes.
type Asset struct {
	Address     string `json:"address"`
	Symbol      string `json:"symbol"`
	DisplayName string `json:"displayName"`
	Decimals    uint8  `json:"decimals"`
	// PriceID is the external oracle key (lowercased symbol). Empty when
	// metadata resolution fell back to the truncated-address form.
	PriceID string `json:"priceId,omitempty"`
}

// AssetBalance pairs an asset with its raw on-chain amount. The raw amount is
// only meaningful together with the asset's own decimals.
type AssetBalance struct {
	Asset `json:"asset"`
	Raw   *big.Int `json:"-"`
}

// ValuedAsset is an asset balance converted to USD terms.
type ValuedAsset struct {
	Asset        `json:"asset"`
	HumanBalance decimal.Decimal `json:"humanBalance"`
	PriceUSD     decimal.Decimal `json:"priceUSD"`
	ValueUSD     decimal.Decimal `json:"valueUSD"`
}

// AllocationSlice is one pie slice: a composite label carrying both the asset
// name and its absolute USD value, plus the percentage weight. Only assets
// with a positive USD value become slices.
type AllocationSlice struct {
	Label   string          `json:"name"`
	Percent decimal.Decimal `json:"value"`
}

// PortfolioSnapshot is the immutable output of one aggregation pass.
type PortfolioSnapshot struct {
	Assets        []ValuedAsset              `json:"assets"`
	TotalValueUSD decimal.Decimal            `json:"totalValueUSD"`
	Weights       map[string]decimal.Decimal `json:"weights"`
	Slices        []AllocationSlice          `json:"slices"`
	GeneratedAt   time.Time                  `json:"generatedAt"`
}

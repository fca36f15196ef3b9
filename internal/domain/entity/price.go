package entity

import "github.com/shopspring/decimal"

// PricePoint is one USD spot quote keyed by the external oracle id.
type PricePoint struct {
	PriceID  string          `json:"priceId"`
	PriceUSD decimal.Decimal `json:"priceUSD"`
}

// CoinGeckoQuote mirrors one entry of the /simple/price response.
type CoinGeckoQuote struct {
	USD float64 `json:"usd"`
}

// CoinGeckoPriceResponse maps symbol -> quote. The service returns keys in
// mixed case; clients must lowercase them before merging.
type CoinGeckoPriceResponse map[string]CoinGeckoQuote

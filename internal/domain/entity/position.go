package entity

import "github.com/shopspring/decimal"

// UserPosition is a user's stake in the pool converted to USD terms.
type UserPosition struct {
	Owner          string          `json:"owner"`
	Shares         decimal.Decimal `json:"shares"`
	ShareValueUSD  decimal.Decimal `json:"shareValueUSD"`
	InvestedUSD    decimal.Decimal `json:"investedUSD"`
	PnlUSD         decimal.Decimal `json:"pnlUSD"`
	PnlPercent     decimal.Decimal `json:"pnlPercent"`
	StableBalance  decimal.Decimal `json:"stableBalance"`
	StableAllowed  decimal.Decimal `json:"stableAllowance"`
}

// PoolTotals carries the protocol-wide figures read alongside a snapshot.
type PoolTotals struct {
	PortfolioValueUSD decimal.Decimal `json:"portfolioValueUSD"`
	TotalShares       decimal.Decimal `json:"totalShares"`
}

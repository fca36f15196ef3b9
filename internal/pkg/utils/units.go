package utils

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ScaleUnits converts a raw on-chain integer amount into its human value by
// shifting the decimal point left by decimals places. A nil amount scales
// to zero.
func ScaleUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// FormatUnits renders a raw amount as a trimmed decimal string.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}
	formatted := ScaleUnits(amount, decimals).StringFixed(int32(decimals))
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}
	if formatted == "" || formatted == "-" {
		return "0"
	}
	return formatted
}

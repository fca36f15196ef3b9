package port

import (
	"context"

	"unipool_backend/internal/domain/entity"
)

// PriceOracle fetches USD spot prices for a batch of oracle ids. An empty id
// set returns an empty map without a network call. Transport or non-success
// failures surface as entity.ErrPriceFetch.
type PriceOracle interface {
	FetchPrices(ctx context.Context, priceIDs []string) (map[string]entity.PricePoint, error)
}

package httpclient

import (
	"context"
	"time"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// cachedOracle decorates a PriceOracle with a per-id TTL cache so that the
// periodic refresh does not hammer the upstream API. Only ids missing from the
// cache reach the underlying oracle.
type cachedOracle struct {
	inner  port.PriceOracle
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewCachedOracle wraps oracle with a TTL cache.
func NewCachedOracle(oracle port.PriceOracle, ttl time.Duration, logger *zap.Logger) port.PriceOracle {
	return &cachedOracle{
		inner:  oracle,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger.Named("PriceCache"),
	}
}

func (o *cachedOracle) FetchPrices(ctx context.Context, priceIDs []string) (map[string]entity.PricePoint, error) {
	prices := make(map[string]entity.PricePoint, len(priceIDs))
	var missing []string

	for _, id := range priceIDs {
		if cached, found := o.cache.Get(id); found {
			prices[id] = cached.(entity.PricePoint)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return prices, nil
	}

	fetched, err := o.inner.FetchPrices(ctx, missing)
	if err != nil {
		// A partial outage should not throw away prices already in hand;
		// the missing ids simply stay absent and value at zero.
		if len(prices) > 0 {
			o.logger.Warn("Price fetch failed, serving cached subset",
				zap.Int("cached", len(prices)),
				zap.Int("missing", len(missing)),
				zap.Error(err))
			return prices, nil
		}
		return nil, err
	}
	for id, point := range fetched {
		o.cache.SetDefault(id, point)
		prices[id] = point
	}

	o.logger.Debug("Price cache refreshed",
		zap.Int("cached", len(priceIDs)-len(missing)),
		zap.Int("fetched", len(fetched)))
	return prices, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"
	"unipool_backend/internal/infrastructure/configloader"
	"unipool_backend/internal/pkg/metrics"
	"unipool_backend/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// PortfolioServiceImpl implements port.PortfolioService. One Refresh pass
// reads the pool view surface, resolves asset metadata concurrently, prices
// the holdings and aggregates them into a snapshot. Passes may overlap; the
// last pass to complete wins the store, and readers always see the most
// recently finished snapshot.
type PortfolioServiceImpl struct {
	clientProvider        port.ChainClientProvider
	priceOracle           port.PriceOracle
	logger                port.Logger
	cfg                   *configloader.Config
	maxConcurrentRoutines int

	mu       sync.Mutex
	snapshot *entity.PortfolioSnapshot
	totals   *entity.PoolTotals
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
func NewPortfolioService(
	cp port.ChainClientProvider,
	oracle port.PriceOracle,
	l port.Logger,
	config *configloader.Config,
) port.PortfolioService {
	maxRoutines := config.Performance.MaxConcurrentRoutines
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &PortfolioServiceImpl{
		clientProvider:        cp,
		priceOracle:           oracle,
		logger:                l,
		cfg:                   config,
		maxConcurrentRoutines: maxRoutines,
	}
}

// Refresh runs one full pipeline pass and stores the result.
func (s *PortfolioServiceImpl) Refresh(ctx context.Context) (*entity.PortfolioSnapshot, error) {
	metrics.RefreshTotal.Inc()

	reader, err := s.clientProvider.Reader(s.cfg.Chain.ChainID)
	if err != nil {
		metrics.RefreshFailures.Inc()
		s.logger.Error("Failed to get pool reader", "chain_id", s.cfg.Chain.ChainID, "error", err)
		return nil, err
	}
	resolver, err := s.clientProvider.Resolver(s.cfg.Chain.ChainID)
	if err != nil {
		metrics.RefreshFailures.Inc()
		return nil, err
	}

	reads, err := reader.ReadPool(ctx, "")
	if err != nil {
		metrics.RefreshFailures.Inc()
		s.logger.Error("Pool read failed", "chain_id", s.cfg.Chain.ChainID, "error", err)
		return nil, fmt.Errorf("pool read failed: %w", err)
	}
	s.recordReadFailures(reads.Failures)

	balances := s.resolveAssets(ctx, resolver, reads)
	prices := s.fetchPrices(ctx, balances)

	snapshot := Aggregate(balances, prices)
	stableDecimals := reader.Deployment().StableDecimals
	totals := &entity.PoolTotals{
		PortfolioValueUSD: utils.ScaleUnits(reads.PortfolioValue, stableDecimals),
		TotalShares:       utils.ScaleUnits(reads.TotalShares, stableDecimals),
	}

	s.store(snapshot, totals)
	s.logger.Info("Portfolio refresh completed",
		"assets", len(snapshot.Assets),
		"total_value_usd", snapshot.TotalValueUSD.StringFixed(2),
		"read_failures", len(reads.Failures))
	return snapshot, nil
}

// resolveAssets resolves metadata and pool holdings for every portfolio asset
// concurrently, preserving the on-chain ordering. The raw holding amount from
// the batched assetBalances read overrides the resolver's balanceOf when both
// are available.
func (s *PortfolioServiceImpl) resolveAssets(ctx context.Context, resolver port.AssetResolver, reads *entity.PoolReads) []entity.AssetBalance {
	balances := make([]entity.AssetBalance, len(reads.AssetAddresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentRoutines)
	for i, addr := range reads.AssetAddresses {
		g.Go(func() error {
			balance := resolver.Resolve(gctx, addr)
			if i < len(reads.AssetRawAmounts) && reads.AssetRawAmounts[i] != nil {
				balance.Raw = reads.AssetRawAmounts[i]
			}
			balances[i] = balance
			return nil
		})
	}
	_ = g.Wait() // resolver never errors, it degrades to fallback metadata

	return balances
}

// fetchPrices collects the distinct price ids and queries the oracle. An
// oracle failure degrades every price to zero instead of failing the pass.
func (s *PortfolioServiceImpl) fetchPrices(ctx context.Context, balances []entity.AssetBalance) map[string]entity.PricePoint {
	seen := make(map[string]bool)
	var priceIDs []string
	for _, b := range balances {
		if b.PriceID == "" || seen[b.PriceID] {
			continue
		}
		seen[b.PriceID] = true
		priceIDs = append(priceIDs, b.PriceID)
	}

	prices, err := s.priceOracle.FetchPrices(ctx, priceIDs)
	if err != nil {
		metrics.PriceFetchFailures.Inc()
		if errors.Is(err, entity.ErrPriceFetch) {
			s.logger.Warn("Price fetch failed, valuing assets at zero", "symbol_count", len(priceIDs), "error", err)
		} else {
			s.logger.Error("Unexpected price oracle error, valuing assets at zero", "error", err)
		}
		return map[string]entity.PricePoint{}
	}
	return prices
}

func (s *PortfolioServiceImpl) store(snapshot *entity.PortfolioSnapshot, totals *entity.PoolTotals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.totals = totals
	value, _ := snapshot.TotalValueUSD.Float64()
	metrics.PortfolioValueUSD.Set(value)
}

// Snapshot returns the most recently completed snapshot, or nil before the
// first successful pass.
func (s *PortfolioServiceImpl) Snapshot() *entity.PortfolioSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Totals returns the protocol-wide figures captured with the snapshot.
func (s *PortfolioServiceImpl) Totals() *entity.PoolTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Position reads and derives the position of one owner address. Per-field
// read failures come back alongside the position; the failed fields are zero.
func (s *PortfolioServiceImpl) Position(ctx context.Context, owner string) (*entity.UserPosition, []entity.ReadFailure, error) {
	reader, err := s.clientProvider.Reader(s.cfg.Chain.ChainID)
	if err != nil {
		return nil, nil, err
	}

	reads, err := reader.ReadPool(ctx, owner)
	if err != nil {
		return nil, nil, fmt.Errorf("pool read failed for %s: %w", owner, err)
	}
	s.recordReadFailures(reads.Failures)

	position := DerivePosition(owner, reads, reader.Deployment().StableDecimals)
	return position, reads.Failures, nil
}

func (s *PortfolioServiceImpl) recordReadFailures(failures []entity.ReadFailure) {
	for _, f := range failures {
		metrics.ReadFieldFailures.WithLabelValues(f.Field).Inc()
		s.logger.Warn("Pool field read failed", "field", f.Field, "error", f.Message)
	}
}

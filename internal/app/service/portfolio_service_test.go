package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"
	"unipool_backend/internal/infrastructure/configloader"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type fakeReader struct {
	deployment entity.PoolDeployment
	reads      *entity.PoolReads
	err        error
	lastOwner  string
}

func (r *fakeReader) ReadPool(_ context.Context, owner string) (*entity.PoolReads, error) {
	r.lastOwner = owner
	if r.err != nil {
		return nil, r.err
	}
	return r.reads, nil
}

func (r *fakeReader) Deployment() entity.PoolDeployment { return r.deployment }

type fakeResolver struct {
	assets map[string]entity.AssetBalance
}

func (r *fakeResolver) Resolve(_ context.Context, tokenAddress string) entity.AssetBalance {
	if a, ok := r.assets[tokenAddress]; ok {
		return a
	}
	return entity.AssetBalance{
		Asset: entity.Asset{Address: tokenAddress, Symbol: tokenAddress, Decimals: 18},
		Raw:   big.NewInt(0),
	}
}

type fakeOracle struct {
	prices map[string]entity.PricePoint
	err    error
	calls  int
}

func (o *fakeOracle) FetchPrices(_ context.Context, priceIDs []string) (map[string]entity.PricePoint, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	out := make(map[string]entity.PricePoint)
	for _, id := range priceIDs {
		if p, ok := o.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeProvider struct {
	reader   *fakeReader
	resolver *fakeResolver
	writer   *fakeWriter
}

func (p *fakeProvider) Reader(chainID uint64) (port.PoolReader, error) {
	if p.reader == nil {
		return nil, fmt.Errorf("chain %d: %w", chainID, entity.ErrUnsupportedChain)
	}
	return p.reader, nil
}

func (p *fakeProvider) Resolver(chainID uint64) (port.AssetResolver, error) {
	if p.resolver == nil {
		return nil, fmt.Errorf("chain %d: %w", chainID, entity.ErrUnsupportedChain)
	}
	return p.resolver, nil
}

func (p *fakeProvider) Writer(chainID uint64) (port.PoolWriter, error) {
	if p.writer == nil {
		return nil, fmt.Errorf("chain %d: %w", chainID, entity.ErrUnsupportedChain)
	}
	return p.writer, nil
}

func testConfig() *configloader.Config {
	return &configloader.Config{
		Chain:       configloader.ChainConfig{ChainID: 130},
		Performance: configloader.PerformanceConfig{MaxConcurrentRoutines: 4},
	}
}

func poolReadsFixture() *entity.PoolReads {
	return &entity.PoolReads{
		PortfolioValue:  big.NewInt(10_000_000_000), // 10000 USDC
		TotalShares:     big.NewInt(8_000_000_000),
		AssetAddresses:  []string{"0xToken1", "0xToken2"},
		AssetRawAmounts: []*big.Int{big.NewInt(5_000_000), nil},
	}
}

func resolverFixture() *fakeResolver {
	return &fakeResolver{assets: map[string]entity.AssetBalance{
		"0xToken1": {
			Asset: entity.Asset{Address: "0xToken1", Symbol: "USDC", DisplayName: "USD Coin", Decimals: 6, PriceID: "usdc"},
			Raw:   big.NewInt(1), // overridden by the batched holding amount
		},
		"0xToken2": {
			Asset: entity.Asset{Address: "0xToken2", Symbol: "WETH", DisplayName: "Wrapped Ether", Decimals: 18, PriceID: "weth"},
			Raw:   big.NewInt(3_000_000_000_000_000_000),
		},
	}}
}

func TestRefreshBuildsSnapshot(t *testing.T) {
	provider := &fakeProvider{
		reader:   &fakeReader{deployment: entity.PoolDeployment{StableDecimals: 6}, reads: poolReadsFixture()},
		resolver: resolverFixture(),
	}
	oracle := &fakeOracle{prices: map[string]entity.PricePoint{
		"usdc": {PriceID: "usdc", PriceUSD: decimal.NewFromInt(1)},
		"weth": {PriceID: "weth", PriceUSD: decimal.NewFromInt(2000)},
	}}
	svc := NewPortfolioService(provider, oracle, nopLogger{}, testConfig())

	snapshot, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Assets, 2)

	// Batched holding amount wins over the resolver's balanceOf.
	assert.True(t, snapshot.Assets[0].HumanBalance.Equal(decimal.RequireFromString("5")))
	assert.True(t, snapshot.Assets[1].ValueUSD.Equal(decimal.RequireFromString("6000")))
	assert.True(t, snapshot.TotalValueUSD.Equal(decimal.RequireFromString("6005")))

	assert.Same(t, snapshot, svc.Snapshot())
	totals := svc.Totals()
	require.NotNil(t, totals)
	assert.True(t, totals.PortfolioValueUSD.Equal(decimal.RequireFromString("10000")))
}

func TestRefreshDegradesOnPriceFailure(t *testing.T) {
	provider := &fakeProvider{
		reader:   &fakeReader{deployment: entity.PoolDeployment{StableDecimals: 6}, reads: poolReadsFixture()},
		resolver: resolverFixture(),
	}
	oracle := &fakeOracle{err: fmt.Errorf("%w: status 429", entity.ErrPriceFetch)}
	svc := NewPortfolioService(provider, oracle, nopLogger{}, testConfig())

	snapshot, err := svc.Refresh(context.Background())
	require.NoError(t, err, "a price failure must not fail the pass")
	require.Len(t, snapshot.Assets, 2)
	assert.True(t, snapshot.TotalValueUSD.IsZero())
	assert.Empty(t, snapshot.Slices)
}

func TestRefreshFailsOnUnsupportedChain(t *testing.T) {
	svc := NewPortfolioService(&fakeProvider{}, &fakeOracle{}, nopLogger{}, testConfig())

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrUnsupportedChain)
	assert.Nil(t, svc.Snapshot())
}

func TestRefreshFailsOnPoolReadError(t *testing.T) {
	provider := &fakeProvider{
		reader:   &fakeReader{err: errors.New("all RPC attempts failed")},
		resolver: resolverFixture(),
	}
	svc := NewPortfolioService(provider, &fakeOracle{}, nopLogger{}, testConfig())

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Nil(t, svc.Snapshot())
}

func TestRefreshReadsProtocolFieldsOnly(t *testing.T) {
	reader := &fakeReader{deployment: entity.PoolDeployment{StableDecimals: 6}, reads: poolReadsFixture()}
	provider := &fakeProvider{reader: reader, resolver: resolverFixture()}
	svc := NewPortfolioService(provider, &fakeOracle{}, nopLogger{}, testConfig())

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", reader.lastOwner, "refresh must not request per-user fields")
}

func TestPositionDerivesFromReads(t *testing.T) {
	reader := &fakeReader{
		deployment: entity.PoolDeployment{StableDecimals: 6},
		reads: &entity.PoolReads{
			UserShares:     big.NewInt(100_000_000),
			UserShareValue: big.NewInt(110_000_000),
			UserInvested:   big.NewInt(100_000_000),
			Failures: []entity.ReadFailure{
				{Field: entity.FieldStableBalance, Message: "execution reverted"},
			},
		},
	}
	svc := NewPortfolioService(&fakeProvider{reader: reader}, &fakeOracle{}, nopLogger{}, testConfig())

	position, failures, err := svc.Position(context.Background(), "0xOwner")
	require.NoError(t, err)
	assert.Equal(t, "0xOwner", reader.lastOwner)
	assert.True(t, position.PnlPercent.Equal(decimal.RequireFromString("10")))
	assert.True(t, position.StableBalance.IsZero(), "failed field defaults to zero")
	require.Len(t, failures, 1)
	assert.Equal(t, entity.FieldStableBalance, failures[0].Field)
}

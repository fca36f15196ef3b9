package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"
	"unipool_backend/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

// AssetResolverClient resolves ERC-20 metadata and the pool's holding for a
// token address. It shares the PoolClient's dialed connection and batch
// machinery.
type AssetResolverClient struct {
	pool   *PoolClient
	logger port.Logger
}

// NewAssetResolver creates a resolver over an existing pool client.
func NewAssetResolver(pool *PoolClient, l port.Logger) *AssetResolverClient {
	return &AssetResolverClient{pool: pool, logger: l}
}

// Resolve looks up name/symbol/decimals and the pool's balance of the token
// in one batch. Any failure degrades to fallback metadata: the truncated
// address as the display name, 18 decimals, no price id and a zero balance.
// One unresolvable asset must never abort aggregation of the rest.
func (r *AssetResolverClient) Resolve(ctx context.Context, tokenAddress string) entity.AssetBalance {
	tokenAddr := common.HexToAddress(tokenAddress)
	poolAddr := common.HexToAddress(r.pool.Deployment().PoolAddress)

	calls := []viewCall{
		{field: "name", target: tokenAddr, abi: &parsedERC20ABI, method: "name"},
		{field: "symbol", target: tokenAddr, abi: &parsedERC20ABI, method: "symbol"},
		{field: "decimals", target: tokenAddr, abi: &parsedERC20ABI, method: "decimals"},
		{field: "balanceOf", target: tokenAddr, abi: &parsedERC20ABI, method: "balanceOf", args: []interface{}{poolAddr}},
	}

	results, err := r.pool.executeBatch(ctx, calls)
	if err != nil {
		r.logger.Warn("Asset metadata batch failed, using fallback metadata",
			"token", tokenAddress, "error", err)
		return fallbackAssetBalance(tokenAddress)
	}

	name, errName := unpackString(results[0].data)
	symbol, errSymbol := unpackString(results[1].data)
	decimals, errDecimals := unpackUint8(results[2].data)
	balance, errBalance := unpackBigInt(&parsedERC20ABI, "balanceOf", results[3].data)

	for i, callErr := range []error{results[0].err, results[1].err, results[2].err, results[3].err, errName, errSymbol, errDecimals, errBalance} {
		if callErr != nil {
			r.logger.Warn("Asset metadata lookup failed, using fallback metadata",
				"token", tokenAddress, "step", i, "error", callErr)
			return fallbackAssetBalance(tokenAddress)
		}
	}

	return entity.AssetBalance{
		Asset: entity.Asset{
			Address:     tokenAddress,
			Symbol:      symbol,
			DisplayName: name,
			Decimals:    decimals,
			PriceID:     strings.ToLower(symbol),
		},
		Raw: balance,
	}
}

func fallbackAssetBalance(tokenAddress string) entity.AssetBalance {
	return entity.AssetBalance{
		Asset: entity.Asset{
			Address:     tokenAddress,
			Symbol:      tokenAddress,
			DisplayName: utils.TruncateEthAddress(tokenAddress),
			Decimals:    18,
			PriceID:     "",
		},
		Raw: big.NewInt(0),
	}
}

func unpackString(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty call result")
	}
	unpacked, err := parsedERC20ABI.Methods["name"].Outputs.Unpack(data)
	if err != nil {
		return "", fmt.Errorf("failed to unpack string result: %w", err)
	}
	if len(unpacked) == 0 {
		return "", fmt.Errorf("string unpack returned no data")
	}
	s, ok := unpacked[0].(string)
	if !ok {
		return "", fmt.Errorf("failed to assert unpacked result to string, got %T", unpacked[0])
	}
	return s, nil
}

func unpackUint8(data []byte) (uint8, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("empty call result")
	}
	unpacked, err := parsedERC20ABI.Methods["decimals"].Outputs.Unpack(data)
	if err != nil {
		return 0, fmt.Errorf("failed to unpack uint8 result: %w", err)
	}
	if len(unpacked) == 0 {
		return 0, fmt.Errorf("uint8 unpack returned no data")
	}
	v, ok := unpacked[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("failed to assert unpacked result to uint8, got %T", unpacked[0])
	}
	return v, nil
}

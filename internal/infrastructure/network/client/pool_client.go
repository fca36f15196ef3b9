package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// PoolClient implements port.PoolReader against one Unipool deployment. All
// view reads go through JSON-RPC batch requests; a failed element is recorded
// as a ReadFailure without touching its siblings.
type PoolClient struct {
	ethClient      *ethclient.Client
	deployment     entity.PoolDeployment
	rpcCallTimeout time.Duration
	maxRetries     int
	retryDelay     time.Duration
	limiter        *rate.Limiter
	logger         port.Logger
}

// PoolClientOptions tunes the RPC behavior of a PoolClient.
type PoolClientOptions struct {
	ConnectionTimeout time.Duration
	RPCCallTimeout    time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RateLimit         int
	BurstLimit        int
}

// NewPoolClient dials the deployment's RPC endpoints in order, returning a
// client bound to the first one that answers.
func NewPoolClient(deployment entity.PoolDeployment, opts PoolClientOptions, l port.Logger) (*PoolClient, error) {
	initParsedABIs()

	rpcURLs := append([]string{deployment.PrimaryRPCURL}, deployment.FallbackRPCURLs...)
	var lastErr error

	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
		ethClient, err := ethclient.DialContext(ctx, rpcURL)
		cancel()
		if err == nil {
			return &PoolClient{
				ethClient:      ethClient,
				deployment:     deployment,
				rpcCallTimeout: opts.RPCCallTimeout,
				maxRetries:     opts.MaxRetries,
				retryDelay:     opts.RetryDelay,
				limiter:        rate.NewLimiter(rate.Limit(opts.RateLimit), opts.BurstLimit),
				logger:         l,
			}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for %s: %w", deployment.Name, lastErr)
}

// Deployment returns the pool deployment this client is bound to.
func (c *PoolClient) Deployment() entity.PoolDeployment {
	return c.deployment
}

// EthClient exposes the underlying client for the writer and resolver, which
// share the dialed connection.
func (c *PoolClient) EthClient() *ethclient.Client {
	return c.ethClient
}

type viewCall struct {
	field  string
	target common.Address
	abi    *abi.ABI
	method string
	args   []interface{}
}

// ReadPool fetches the pool view surface in two batches: the asset address
// list arrives with the first batch and parameterizes the assetBalances call
// in the second.
func (c *PoolClient) ReadPool(ctx context.Context, owner string) (*entity.PoolReads, error) {
	reads := &entity.PoolReads{}
	poolAddr := common.HexToAddress(c.deployment.PoolAddress)
	stableAddr := common.HexToAddress(c.deployment.StableAddress)

	calls := []viewCall{
		{field: entity.FieldPortfolioValue, target: poolAddr, abi: &parsedPoolABI, method: "getPortfolioValue"},
		{field: entity.FieldTotalShares, target: poolAddr, abi: &parsedPoolABI, method: "totalShares"},
		{field: entity.FieldPortfolioAssets, target: poolAddr, abi: &parsedPoolABI, method: "portfolioAssets"},
	}
	if owner != "" {
		ownerAddr := common.HexToAddress(owner)
		calls = append(calls,
			viewCall{field: entity.FieldUserShares, target: poolAddr, abi: &parsedPoolABI, method: "userShares", args: []interface{}{ownerAddr}},
			viewCall{field: entity.FieldUserShareValue, target: poolAddr, abi: &parsedPoolABI, method: "getUserShareValue", args: []interface{}{ownerAddr}},
			viewCall{field: entity.FieldUserInvested, target: poolAddr, abi: &parsedPoolABI, method: "userInvestedAmount", args: []interface{}{ownerAddr}},
			viewCall{field: entity.FieldStableBalance, target: stableAddr, abi: &parsedERC20ABI, method: "balanceOf", args: []interface{}{ownerAddr}},
			viewCall{field: entity.FieldStableAllowance, target: stableAddr, abi: &parsedERC20ABI, method: "allowance", args: []interface{}{ownerAddr, poolAddr}},
		)
	}

	results, err := c.executeBatch(ctx, calls)
	if err != nil {
		return nil, err
	}

	var assetAddrs []common.Address
	for i, call := range calls {
		raw, callErr := results[i], resultErr(results[i])
		if callErr != nil {
			reads.Failures = append(reads.Failures, entity.ReadFailure{Field: call.field, Message: callErr.Error()})
			continue
		}
		switch call.field {
		case entity.FieldPortfolioAssets:
			assetAddrs, callErr = unpackAddresses(call.abi, call.method, raw.data)
			if callErr == nil {
				for _, a := range assetAddrs {
					reads.AssetAddresses = append(reads.AssetAddresses, a.Hex())
				}
			}
		default:
			var v *big.Int
			v, callErr = unpackBigInt(call.abi, call.method, raw.data)
			if callErr == nil {
				assignField(reads, call.field, v)
			}
		}
		if callErr != nil {
			reads.Failures = append(reads.Failures, entity.ReadFailure{Field: call.field, Message: callErr.Error()})
		}
	}

	if len(assetAddrs) > 0 {
		balanceCall := []viewCall{{
			field:  entity.FieldAssetBalances,
			target: poolAddr,
			abi:    &parsedPoolABI,
			method: "assetBalances",
			args:   []interface{}{assetAddrs},
		}}
		balResults, err := c.executeBatch(ctx, balanceCall)
		if err != nil {
			reads.Failures = append(reads.Failures, entity.ReadFailure{Field: entity.FieldAssetBalances, Message: err.Error()})
			return reads, nil
		}
		if callErr := resultErr(balResults[0]); callErr != nil {
			reads.Failures = append(reads.Failures, entity.ReadFailure{Field: entity.FieldAssetBalances, Message: callErr.Error()})
		} else if amounts, unpackErr := unpackBigIntSlice(&parsedPoolABI, "assetBalances", balResults[0].data); unpackErr != nil {
			reads.Failures = append(reads.Failures, entity.ReadFailure{Field: entity.FieldAssetBalances, Message: unpackErr.Error()})
		} else if len(amounts) != len(assetAddrs) {
			reads.Failures = append(reads.Failures, entity.ReadFailure{
				Field:   entity.FieldAssetBalances,
				Message: fmt.Sprintf("asset balance count mismatch: %d addresses, %d balances", len(assetAddrs), len(amounts)),
			})
		} else {
			reads.AssetRawAmounts = amounts
		}
	}

	return reads, nil
}

type batchResult struct {
	data hexutil.Bytes
	err  error
}

func resultErr(r batchResult) error {
	return r.err
}

// executeBatch runs the calls as one JSON-RPC batch with bounded retries at a
// fixed delay. Transport failures retry the whole batch; per-element errors
// come back in the results for the caller to isolate.
func (c *PoolClient) executeBatch(ctx context.Context, calls []viewCall) ([]batchResult, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	elems := make([]rpc.BatchElem, len(calls))
	results := make([]batchResult, len(calls))
	for i, call := range calls {
		callData, err := call.abi.Pack(call.method, call.args...)
		if err != nil {
			results[i].err = fmt.Errorf("failed to pack %s call: %w", call.method, err)
			// Dummy element so batch indices stay aligned
			elems[i] = rpc.BatchElem{Method: "eth_chainId", Result: new(hexutil.Big)}
			continue
		}
		callArgs := map[string]interface{}{
			"to":   call.target,
			"data": hexutil.Bytes(callData),
		}
		elems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args:   []interface{}{callArgs, "latest"},
			Result: new(hexutil.Bytes),
		}
	}

	rawRPCClient := c.ethClient.Client()
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("Retrying RPC batch call", "attempt", attempt, "delay", c.retryDelay.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
		lastErr = rawRPCClient.BatchCallContext(callCtx, elems)
		cancel()
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("RPC batch call failed after %d attempts: %w", c.maxRetries+1, lastErr)
	}

	for i := range calls {
		if results[i].err != nil {
			continue
		}
		if elems[i].Error != nil {
			results[i].err = fmt.Errorf("failed to fetch %s: %w", calls[i].field, elems[i].Error)
			continue
		}
		data, ok := elems[i].Result.(*hexutil.Bytes)
		if !ok || data == nil {
			results[i].err = fmt.Errorf("failed to decode %s: unexpected type or nil result", calls[i].field)
			continue
		}
		results[i].data = *data
	}
	return results, nil
}

func assignField(reads *entity.PoolReads, field string, v *big.Int) {
	switch field {
	case entity.FieldUserShares:
		reads.UserShares = v
	case entity.FieldUserShareValue:
		reads.UserShareValue = v
	case entity.FieldUserInvested:
		reads.UserInvested = v
	case entity.FieldPortfolioValue:
		reads.PortfolioValue = v
	case entity.FieldTotalShares:
		reads.TotalShares = v
	case entity.FieldStableBalance:
		reads.StableBalance = v
	case entity.FieldStableAllowance:
		reads.StableAllowance = v
	}
}

func unpackBigInt(parsed *abi.ABI, method string, data hexutil.Bytes) (*big.Int, error) {
	if len(data) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := parsed.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("%s unpack returned no data", method)
	}
	v, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked %s result to *big.Int, got %T", method, unpacked[0])
	}
	return v, nil
}

func unpackAddresses(parsed *abi.ABI, method string, data hexutil.Bytes) ([]common.Address, error) {
	if len(data) == 0 {
		return nil, nil
	}
	unpacked, err := parsed.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("%s unpack returned no data", method)
	}
	addrs, ok := unpacked[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked %s result to []common.Address, got %T", method, unpacked[0])
	}
	return addrs, nil
}

func unpackBigIntSlice(parsed *abi.ABI, method string, data hexutil.Bytes) ([]*big.Int, error) {
	if len(data) == 0 {
		return nil, nil
	}
	unpacked, err := parsed.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("%s unpack returned no data", method)
	}
	amounts, ok := unpacked[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked %s result to []*big.Int, got %T", method, unpacked[0])
	}
	return amounts, nil
}

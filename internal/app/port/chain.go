package port

import (
	"context"
	"math/big"

	"unipool_backend/internal/domain/entity"
)

// PoolReader reads the Unipool contract view surface. Implementations batch
// the calls and isolate per-field failures: a failed field shows up in
// PoolReads.Failures while its siblings resolve normally.
type PoolReader interface {
	// ReadPool fetches the protocol-wide fields plus, when owner is non-empty,
	// the per-user fields and the stable-asset balance/allowance for owner.
	ReadPool(ctx context.Context, owner string) (*entity.PoolReads, error)

	// Deployment returns the pool deployment this reader is bound to.
	Deployment() entity.PoolDeployment
}

// AssetResolver resolves display metadata and the pool's holding for a token
// address. Resolution failures degrade to fallback metadata, never an error.
type AssetResolver interface {
	Resolve(ctx context.Context, tokenAddress string) entity.AssetBalance
}

// PoolWriter submits state-changing transactions to the pool contract and its
// companion stable asset.
type PoolWriter interface {
	Approve(ctx context.Context, amount *big.Int) (txHash string, err error)
	Invest(ctx context.Context, amount *big.Int) (txHash string, err error)
	Withdraw(ctx context.Context, basisPoints uint64) (txHash string, err error)

	// WaitConfirmed blocks until the transaction is mined, returning an error
	// when the receipt reports a revert or the wait deadline passes.
	WaitConfirmed(ctx context.Context, txHash string) error

	// Owner returns the address the writer signs for.
	Owner() string
}

// ChainClientProvider hands out chain-bound clients. An unknown chain id
// fails every request with entity.ErrUnsupportedChain.
type ChainClientProvider interface {
	Reader(chainID uint64) (PoolReader, error)
	Resolver(chainID uint64) (AssetResolver, error)
	Writer(chainID uint64) (PoolWriter, error)
}

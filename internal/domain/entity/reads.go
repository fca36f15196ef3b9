package entity

import "math/big"

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Names of the contract view fields read by the pool reader. A ReadFailure
// references one of these so callers can tell which figure is missing.
const (
	FieldUserShares      = "userShares"
	FieldUserShareValue  = "getUserShareValue"
	FieldUserInvested    = "userInvestedAmount"
	FieldPortfolioValue  = "getPortfolioValue"
	FieldTotalShares     = "totalShares"
	FieldPortfolioAssets = "portfolioAssets"
	FieldAssetBalances   = "assetBalances"
	FieldStableBalance   = "stableBalance"
	FieldStableAllowance = "stableAllowance"
)

// ReadFailure records a single failed contract read. One failed field never
// aborts the sibling reads; the aggregation degrades instead.
type ReadFailure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PoolReads is the raw result set of one read pass against the pool contract.
// Any pointer may be nil when the corresponding read failed; the failure is
// then listed in Failures.
type PoolReads struct {
	UserShares      *big.Int
	UserShareValue  *big.Int
	UserInvested    *big.Int
	PortfolioValue  *big.Int
	TotalShares     *big.Int
	AssetAddresses  []string
	AssetRawAmounts []*big.Int
	StableBalance   *big.Int
	StableAllowance *big.Int
	Failures        []ReadFailure
}

// FailedFields returns the names of the fields that did not resolve.
func (r *PoolReads) FailedFields() []string {
	fields := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		fields = append(fields, f.Field)
	}
	return fields
}

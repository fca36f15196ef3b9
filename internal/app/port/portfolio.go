package port

import (
	"context"

	"unipool_backend/internal/domain/entity"
)

// PortfolioService runs the read -> resolve -> price -> aggregate pipeline
// and holds the last completed snapshot.
type PortfolioService interface {
	// Refresh runs one full pipeline pass. Partial read failures degrade the
	// snapshot instead of failing the pass; only an unsupported chain aborts.
	Refresh(ctx context.Context) (*entity.PortfolioSnapshot, error)

	// Snapshot returns the most recently completed snapshot, or nil before
	// the first successful pass.
	Snapshot() *entity.PortfolioSnapshot

	// Totals returns the protocol-wide figures captured with the snapshot.
	Totals() *entity.PoolTotals

	// Position reads and derives the position of one owner address.
	Position(ctx context.Context, owner string) (*entity.UserPosition, []entity.ReadFailure, error)
}

// TransactionOrchestrator sequences approve/invest/withdraw flows and
// triggers a pipeline refresh when a transaction confirms.
type TransactionOrchestrator interface {
	// Invest starts an invest flow. When the current allowance is below
	// amount the flow stops in StateAwaitingApproval and the caller must run
	// Approve first; approval and invest are never chained in one action.
	Invest(ctx context.Context, amount string) (*entity.TransactionFlow, error)

	// Approve submits an allowance for the given amount and ends the flow
	// once the approval confirms.
	Approve(ctx context.Context, amount string) (*entity.TransactionFlow, error)

	// Withdraw converts percent (0..100) to basis points, flooring, and
	// submits the withdrawal.
	Withdraw(ctx context.Context, percent float64) (*entity.TransactionFlow, error)

	// Flow returns the current state of a flow by id.
	Flow(id string) (*entity.TransactionFlow, error)

	// Acknowledge discards a flow that reached a terminal state or is parked
	// in StateAwaitingApproval.
	Acknowledge(id string) error
}

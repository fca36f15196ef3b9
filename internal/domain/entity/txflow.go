package entity

import (
	"math/big"
	"time"
)

// TransactionState is the lifecycle state of one user action against the pool.
type TransactionState string

const (
	StateIdle              TransactionState = "idle"
	StateAwaitingApproval  TransactionState = "awaiting_approval"
	StateApproving         TransactionState = "approving"
	StateAwaitingSignature TransactionState = "awaiting_signature"
	StateSubmitted         TransactionState = "submitted"
	StateConfirming        TransactionState = "confirming"
	StateConfirmed         TransactionState = "confirmed"
	StateFailed            TransactionState = "failed"
)

// ActionKind identifies which write a flow performs.
type ActionKind string

const (
	ActionApprove  ActionKind = "approve"
	ActionInvest   ActionKind = "invest"
	ActionWithdraw ActionKind = "withdraw"
)

// TransactionFlow tracks one invest/withdraw/approve action from creation to
// confirmation. A flow is created per user action and discarded once a
// terminal state has been acknowledged.
type TransactionFlow struct {
	ID          string           `json:"id"`
	Kind        ActionKind       `json:"kind"`
	State       TransactionState `json:"state"`
	Owner       string           `json:"owner"`
	Amount      *big.Int         `json:"-"`
	BasisPoints uint64           `json:"basisPoints,omitempty"`
	TxHash      string           `json:"txHash,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Terminal reports whether the flow has reached a state that only an
// acknowledgement can clear.
func (f *TransactionFlow) Terminal() bool {
	return f.State == StateConfirmed || f.State == StateFailed
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"
	"unipool_backend/internal/infrastructure/configloader"
	"unipool_backend/internal/pkg/metrics"

	"github.com/shopspring/decimal"
)

// TransactionOrchestratorImpl implements port.TransactionOrchestrator. Each
// user action gets its own flow record; submission happens synchronously so
// the caller leaves with a transaction hash or a failure reason, while
// confirmation is awaited in the background. A confirmed transaction triggers
// one portfolio refresh so derived figures pick up the new chain state.
type TransactionOrchestratorImpl struct {
	clientProvider port.ChainClientProvider
	logger         port.Logger
	cfg            *configloader.Config
	onConfirmed    func()

	mu    sync.Mutex
	flows map[string]*entity.TransactionFlow
}

// NewTransactionOrchestrator creates a new orchestrator. onConfirmed runs
// once after each confirmed transaction; it may be nil.
func NewTransactionOrchestrator(
	cp port.ChainClientProvider,
	l port.Logger,
	config *configloader.Config,
	onConfirmed func(),
) port.TransactionOrchestrator {
	return &TransactionOrchestratorImpl{
		clientProvider: cp,
		logger:         l,
		cfg:            config,
		onConfirmed:    onConfirmed,
		flows:          make(map[string]*entity.TransactionFlow),
	}
}

// Invest starts an invest flow for amount, a human-readable stable-asset
// quantity such as "250.50". When the standing allowance does not cover the
// amount the flow parks in StateAwaitingApproval and nothing is submitted:
// the caller has to run a separate Approve action first.
func (o *TransactionOrchestratorImpl) Invest(ctx context.Context, amount string) (*entity.TransactionFlow, error) {
	writer, err := o.clientProvider.Writer(o.cfg.Chain.ChainID)
	if err != nil {
		return nil, err
	}
	raw, err := o.parseStableAmount(amount)
	if err != nil {
		return nil, err
	}

	reader, err := o.clientProvider.Reader(o.cfg.Chain.ChainID)
	if err != nil {
		return nil, err
	}
	reads, err := reader.ReadPool(ctx, writer.Owner())
	if err != nil {
		return nil, fmt.Errorf("failed to read allowance: %w", err)
	}

	// The flow is registered only once the allowance read has succeeded; an
	// earlier registration would strand an id the caller never learns.
	flow := o.newFlow(entity.ActionInvest, writer.Owner())
	flow.Amount = raw

	if reads.StableAllowance == nil || reads.StableAllowance.Cmp(raw) < 0 {
		o.transition(flow, entity.StateAwaitingApproval, "")
		o.logger.Info("Invest requires approval first",
			"flow_id", flow.ID, "amount", amount,
			"allowance", allowanceString(reads.StableAllowance))
		return o.flowCopy(flow.ID)
	}

	o.submitAndConfirm(ctx, flow, writer, func(ctx context.Context) (string, error) {
		return writer.Invest(ctx, raw)
	})
	return o.flowCopy(flow.ID)
}

// Approve submits an allowance of amount for the pool. The flow completes
// when the approval confirms; it never chains into an invest.
func (o *TransactionOrchestratorImpl) Approve(ctx context.Context, amount string) (*entity.TransactionFlow, error) {
	writer, err := o.clientProvider.Writer(o.cfg.Chain.ChainID)
	if err != nil {
		return nil, err
	}
	raw, err := o.parseStableAmount(amount)
	if err != nil {
		return nil, err
	}

	flow := o.newFlow(entity.ActionApprove, writer.Owner())
	flow.Amount = raw

	o.submitAndConfirm(ctx, flow, writer, func(ctx context.Context) (string, error) {
		return writer.Approve(ctx, raw)
	})
	return o.flowCopy(flow.ID)
}

// Withdraw converts percent of the caller's position to basis points,
// flooring fractional hundredths, and submits the withdrawal.
func (o *TransactionOrchestratorImpl) Withdraw(ctx context.Context, percent float64) (*entity.TransactionFlow, error) {
	if percent <= 0 || percent > 100 {
		return nil, fmt.Errorf("withdraw percent must be in (0, 100], got %v", percent)
	}
	basisPoints := WithdrawBasisPoints(percent)
	if basisPoints == 0 {
		return nil, fmt.Errorf("withdraw percent %v is below the smallest representable share", percent)
	}

	writer, err := o.clientProvider.Writer(o.cfg.Chain.ChainID)
	if err != nil {
		return nil, err
	}

	flow := o.newFlow(entity.ActionWithdraw, writer.Owner())
	flow.BasisPoints = basisPoints

	o.submitAndConfirm(ctx, flow, writer, func(ctx context.Context) (string, error) {
		return writer.Withdraw(ctx, basisPoints)
	})
	return o.flowCopy(flow.ID)
}

// submitAndConfirm signs and sends synchronously, then awaits the receipt in
// the background. The background wait deliberately detaches from the request
// context; the submitted transaction outlives the HTTP call that started it.
func (o *TransactionOrchestratorImpl) submitAndConfirm(
	ctx context.Context,
	flow *entity.TransactionFlow,
	writer port.PoolWriter,
	submit func(ctx context.Context) (string, error),
) {
	o.transition(flow, entity.StateAwaitingSignature, "")

	txHash, err := submit(ctx)
	if err != nil {
		o.fail(flow, fmt.Sprintf("submission failed: %v", err))
		return
	}
	metrics.TransactionsSubmitted.WithLabelValues(string(flow.Kind)).Inc()

	o.mu.Lock()
	flow.TxHash = txHash
	o.mu.Unlock()
	o.transition(flow, entity.StateSubmitted, "")

	go func() {
		confirmingState := entity.StateConfirming
		if flow.Kind == entity.ActionApprove {
			confirmingState = entity.StateApproving
		}
		o.transition(flow, confirmingState, "")

		if err := writer.WaitConfirmed(context.Background(), txHash); err != nil {
			o.fail(flow, err.Error())
			return
		}
		o.transition(flow, entity.StateConfirmed, "")
		o.logger.Info("Transaction flow confirmed", "flow_id", flow.ID, "kind", flow.Kind, "tx_hash", txHash)
		if o.onConfirmed != nil {
			o.onConfirmed()
		}
	}()
}

// Flow returns a copy of the flow's current state.
func (o *TransactionOrchestratorImpl) Flow(id string) (*entity.TransactionFlow, error) {
	return o.flowCopy(id)
}

// Acknowledge discards a flow that reached a terminal state. Flows parked in
// awaiting_approval can be acknowledged too; they have no transaction in
// flight and would otherwise be retained forever.
func (o *TransactionOrchestratorImpl) Acknowledge(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	flow, ok := o.flows[id]
	if !ok {
		return fmt.Errorf("flow %s: %w", id, entity.ErrFlowNotFound)
	}
	if !flow.Terminal() && flow.State != entity.StateAwaitingApproval {
		return fmt.Errorf("flow %s is still %s, only terminal or parked flows can be acknowledged", id, flow.State)
	}
	delete(o.flows, id)
	return nil
}

func (o *TransactionOrchestratorImpl) newFlow(kind entity.ActionKind, owner string) *entity.TransactionFlow {
	now := time.Now().UTC()
	flow := &entity.TransactionFlow{
		ID:        newFlowID(),
		Kind:      kind,
		State:     entity.StateIdle,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.mu.Lock()
	o.flows[flow.ID] = flow
	o.mu.Unlock()
	return flow
}

func (o *TransactionOrchestratorImpl) transition(flow *entity.TransactionFlow, state entity.TransactionState, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logger.Debug("Transaction flow transition", "flow_id", flow.ID, "from", flow.State, "to", state)
	flow.State = state
	flow.Reason = reason
	flow.UpdatedAt = time.Now().UTC()
}

func (o *TransactionOrchestratorImpl) fail(flow *entity.TransactionFlow, reason string) {
	metrics.TransactionsFailed.WithLabelValues(string(flow.Kind)).Inc()
	o.logger.Error("Transaction flow failed", "flow_id", flow.ID, "kind", flow.Kind, "reason", reason)
	o.transition(flow, entity.StateFailed, reason)
}

func (o *TransactionOrchestratorImpl) flowCopy(id string) (*entity.TransactionFlow, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	flow, ok := o.flows[id]
	if !ok {
		return nil, fmt.Errorf("flow %s: %w", id, entity.ErrFlowNotFound)
	}
	cp := *flow
	return &cp, nil
}

// parseStableAmount converts a human amount string into raw stable-asset
// units, e.g. "250.5" with 6 decimals becomes 250500000.
func (o *TransactionOrchestratorImpl) parseStableAmount(amount string) (*big.Int, error) {
	reader, err := o.clientProvider.Reader(o.cfg.Chain.ChainID)
	if err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %q", amount)
	}
	return d.Shift(int32(reader.Deployment().StableDecimals)).Truncate(0).BigInt(), nil
}

func allowanceString(allowance *big.Int) string {
	if allowance == nil {
		return "0"
	}
	return allowance.String()
}

func newFlowID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("flow-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

package restapi

import (
	"errors"
	"net/http"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// AmountRequest is the body for invest and approve actions. Amount is a
// human-readable stable-asset quantity, e.g. "250.50".
type AmountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// WithdrawRequest is the body for the withdraw action.
type WithdrawRequest struct {
	Percent float64 `json:"percent" binding:"required"`
}

// APIFlowResponse is the response shape for all transaction endpoints.
type APIFlowResponse struct {
	Data struct {
		Flow *entity.TransactionFlow `json:"flow"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// TransactionHandler handles HTTP requests for transaction flows.
type TransactionHandler struct {
	orchestrator port.TransactionOrchestrator
	logger       port.Logger
}

// NewTransactionHandler creates a new instance of TransactionHandler.
func NewTransactionHandler(o port.TransactionOrchestrator, l port.Logger) *TransactionHandler {
	return &TransactionHandler{orchestrator: o, logger: l}
}

// InvestHandler starts an invest flow. A flow answered in awaiting_approval
// state means the allowance is insufficient and a separate approve action is
// required first.
func (h *TransactionHandler) InvestHandler(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, err := h.orchestrator.Invest(c.Request.Context(), req.Amount)
	h.respondFlow(c, flow, err, "Invest flow started.")
}

// ApproveHandler starts an approve flow.
func (h *TransactionHandler) ApproveHandler(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, err := h.orchestrator.Approve(c.Request.Context(), req.Amount)
	h.respondFlow(c, flow, err, "Approve flow started.")
}

// WithdrawHandler starts a withdraw flow for a percentage of the position.
func (h *TransactionHandler) WithdrawHandler(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, err := h.orchestrator.Withdraw(c.Request.Context(), req.Percent)
	h.respondFlow(c, flow, err, "Withdraw flow started.")
}

// GetFlowHandler returns the current state of a flow.
func (h *TransactionHandler) GetFlowHandler(c *gin.Context) {
	flow, err := h.orchestrator.Flow(c.Param("id"))
	h.respondFlow(c, flow, err, "Flow retrieved successfully.")
}

// AcknowledgeFlowHandler discards a terminal flow.
func (h *TransactionHandler) AcknowledgeFlowHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.orchestrator.Acknowledge(id); err != nil {
		status := http.StatusConflict
		if errors.Is(err, entity.ErrFlowNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status_message": "Flow acknowledged."})
}

func (h *TransactionHandler) respondFlow(c *gin.Context, flow *entity.TransactionFlow, err error, okMessage string) {
	if err != nil {
		h.logger.Warn("Transaction request failed", "error", err)
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, entity.ErrFlowNotFound):
			status = http.StatusNotFound
		case errors.Is(err, entity.ErrUnsupportedChain):
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	response := APIFlowResponse{StatusMessage: okMessage}
	response.Data.Flow = flow
	if flow.State == entity.StateAwaitingApproval {
		response.StatusMessage = "Allowance is insufficient. Run an approve action before investing."
	}
	if flow.State == entity.StateFailed {
		response.StatusMessage = "Transaction could not be submitted. See the flow reason."
	}
	c.JSON(http.StatusOK, response)
}

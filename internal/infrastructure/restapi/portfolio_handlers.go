package restapi

import (
	"errors"
	"net/http"

	"unipool_backend/internal/app/port"
	"unipool_backend/internal/domain/entity"
	"unipool_backend/internal/infrastructure/configloader"

	"github.com/gin-gonic/gin"
)

// APIPortfolioResponse is the response shape for the portfolio endpoint.
type APIPortfolioResponse struct {
	Data struct {
		Snapshot *entity.PortfolioSnapshot `json:"snapshot"`
		Totals   *entity.PoolTotals        `json:"totals"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// APIPositionResponse is the response shape for the position endpoint.
type APIPositionResponse struct {
	Data struct {
		Position *entity.UserPosition `json:"position"`
	} `json:"data"`
	ReadErrors    []entity.ReadFailure `json:"read_errors,omitempty"`
	StatusMessage string               `json:"status_message"`
}

// PortfolioHandler handles HTTP requests for portfolio data.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	cfg              *configloader.Config
	logger           port.Logger
}

// NewPortfolioHandler creates a new instance of PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService, cfg *configloader.Config, l port.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		cfg:              cfg,
		logger:           l,
	}
}

// GetPortfolioHandler returns the last completed portfolio snapshot together
// with the protocol-wide totals.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	response := APIPortfolioResponse{}
	response.Data.Snapshot = h.portfolioService.Snapshot()
	response.Data.Totals = h.portfolioService.Totals()

	if response.Data.Snapshot == nil {
		response.StatusMessage = "No snapshot available yet. The first refresh pass has not completed."
	} else {
		response.StatusMessage = "Portfolio retrieved successfully."
	}

	c.JSON(http.StatusOK, response)
}

// RefreshPortfolioHandler forces a refresh pass outside the schedule.
func (h *PortfolioHandler) RefreshPortfolioHandler(c *gin.Context) {
	snapshot, err := h.portfolioService.Refresh(c.Request.Context())
	if err != nil {
		h.logger.Error("On-demand refresh failed", "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, entity.ErrUnsupportedChain) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	response := APIPortfolioResponse{}
	response.Data.Snapshot = snapshot
	response.Data.Totals = h.portfolioService.Totals()
	response.StatusMessage = "Portfolio refreshed successfully."
	c.JSON(http.StatusOK, response)
}

// GetPositionHandler returns the derived position of one owner address.
// Fields whose reads failed are zero and listed in read_errors.
func (h *PortfolioHandler) GetPositionHandler(c *gin.Context) {
	owner := c.Param("address")

	position, readFailures, err := h.portfolioService.Position(c.Request.Context(), owner)
	if err != nil {
		h.logger.Error("Position read failed", "owner", owner, "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, entity.ErrUnsupportedChain) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	response := APIPositionResponse{ReadErrors: readFailures}
	response.Data.Position = position
	if len(readFailures) > 0 {
		response.StatusMessage = "Position retrieved. Some fields could not be read and default to zero."
	} else {
		response.StatusMessage = "Position retrieved successfully."
	}

	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/auwerk/otus-service-billing/internal/core/services"
	"github.com/auwerk/otus-service-billing/internal/dto"
	"github.com/auwerk/otus-service-billing/internal/middleware"
	"github.com/gin-gonic/gin"

	portssvc "github.com/auwerk/otus-service-billing/internal/core/ports/services"
)

// operationHandler handles HTTP requests for ledger operations.
type operationHandler struct {
	billingService portssvc.BillingSvcFacade
}

// newOperationHandler creates a new operationHandler.
func newOperationHandler(billingService portssvc.BillingSvcFacade) *operationHandler {
	return &operationHandler{
		billingService: billingService,
	}
}

// executeOperation godoc
// @Summary Execute a credit or withdrawal on the authenticated user's account
// @Description Applies the operation atomically and returns the new operation's ID
// @Tags operations
// @Accept json
// @Produce json
// @Param operation body dto.ExecuteOperationRequest true "Operation to execute"
// @Success 200 {object} dto.OperationIDResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 403 {object} map[string]string "Insufficient balance"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /operation [post]
func (h *operationHandler) executeOperation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userName, ok := middleware.GetUserNameFromContext(c)
	if !ok {
		logger.Error("User identity not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	req := dto.ExecuteOperationRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for executeOperation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	operationID, err := h.billingService.ExecuteOperation(c.Request.Context(), userName, req.Type, req.Amount, req.Comment)
	if err != nil {
		h.renderOperationError(c, logger, err, "Failed to execute operation")
		return
	}

	logger.Info("Operation executed", slog.String("operation_id", operationID))
	c.JSON(http.StatusOK, dto.OperationIDResponse{OperationID: operationID})
}

// cancelOperation godoc
// @Summary Cancel a previously executed operation
// @Description Appends a mirrored reversal operation linked to the original
// @Tags operations
// @Accept json
// @Produce json
// @Param operationId path string true "Operation ID"
// @Param cancellation body dto.CancelOperationRequest true "Cancellation comment"
// @Success 200 {object} dto.OperationIDResponse
// @Failure 403 {object} map[string]string "Different user or insufficient balance"
// @Failure 404 {object} map[string]string "Operation or account not found"
// @Failure 409 {object} map[string]string "Operation already canceled"
// @Router /operation/{operationId} [delete]
func (h *operationHandler) cancelOperation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	operationID := c.Param("operationId")

	userName, ok := middleware.GetUserNameFromContext(c)
	if !ok {
		logger.Error("User identity not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	req := dto.CancelOperationRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for cancelOperation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	reversalID, err := h.billingService.CancelOperation(c.Request.Context(), userName, operationID, req.Comment)
	if err != nil {
		h.renderOperationError(c, logger, err, "Failed to cancel operation")
		return
	}

	logger.Info("Operation canceled", slog.String("operation_id", operationID), slog.String("reversal_operation_id", reversalID))
	c.JSON(http.StatusOK, dto.OperationIDResponse{OperationID: reversalID})
}

// renderOperationError maps service failures onto the boundary status contract:
// not-found -> 404, already-canceled -> 409, insufficient balance or foreign
// owner -> 403, bad amounts -> 400, anything else -> 500.
func (h *operationHandler) renderOperationError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrAccountNotFound), errors.Is(err, services.ErrOperationNotFound):
		logger.Warn(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOperationAlreadyCanceled):
		logger.Warn(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientBalance), errors.Is(err, services.ErrOperationExecutedByDifferentUser):
		logger.Warn(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNonPositiveAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

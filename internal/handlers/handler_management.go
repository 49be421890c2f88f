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

// managementHandler handles administrative account provisioning by user name.
// These routes sit outside the authenticated API surface.
type managementHandler struct {
	billingService portssvc.BillingSvcFacade
}

// newManagementHandler creates a new managementHandler.
func newManagementHandler(billingService portssvc.BillingSvcFacade) *managementHandler {
	return &managementHandler{
		billingService: billingService,
	}
}

// createUserAccount godoc
// @Summary Create a billing account for the named user
// @Tags management
// @Produce json
// @Param userName path string true "Owner identity"
// @Success 200 {object} dto.CreateAccountResponse
// @Failure 409 {object} map[string]string "Account already exists"
// @Router /management/account/{userName} [post]
func (h *managementHandler) createUserAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userName := c.Param("userName")

	accountID, err := h.billingService.CreateAccount(c.Request.Context(), userName)
	if err != nil {
		if errors.Is(err, services.ErrAccountAlreadyExists) {
			logger.Warn("Account already exists", slog.String("user_name", userName))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create account", slog.String("user_name", userName), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusOK, dto.CreateAccountResponse{AccountID: accountID})
}

// deleteUserAccount godoc
// @Summary Delete the named user's account and its operation history
// @Tags management
// @Produce json
// @Param userName path string true "Owner identity"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Account not found"
// @Router /management/account/{userName} [delete]
func (h *managementHandler) deleteUserAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userName := c.Param("userName")

	if err := h.billingService.DeleteAccount(c.Request.Context(), userName); err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			logger.Warn("Account not found", slog.String("user_name", userName))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to delete account", slog.String("user_name", userName), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

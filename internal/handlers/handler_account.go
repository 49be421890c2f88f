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

// accountHandler handles HTTP requests for the caller's own account.
type accountHandler struct {
	billingService portssvc.BillingSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(billingService portssvc.BillingSvcFacade) *accountHandler {
	return &accountHandler{
		billingService: billingService,
	}
}

// createAccount godoc
// @Summary Create a billing account for the authenticated user
// @Description Creates an account with a zero balance; one account per user
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.CreateAccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account already exists"
// @Router /account [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userName, ok := middleware.GetUserNameFromContext(c)
	if !ok {
		logger.Error("User identity not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accountID, err := h.billingService.CreateAccount(c.Request.Context(), userName)
	if err != nil {
		if errors.Is(err, services.ErrAccountAlreadyExists) {
			logger.Warn("Account already exists")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusOK, dto.CreateAccountResponse{AccountID: accountID})
}

// getAccount godoc
// @Summary Get the authenticated user's account
// @Description Retrieves the account, optionally with its operation history
// @Tags accounts
// @Produce json
// @Param fetchOperations query bool false "Attach operation history" default(true)
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /account [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userName, ok := middleware.GetUserNameFromContext(c)
	if !ok {
		logger.Error("User identity not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	params := dto.GetAccountParams{FetchOperations: true}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	account, err := h.billingService.GetAccount(c.Request.Context(), userName, params.FetchOperations)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			logger.Warn("Account not found")
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to get account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

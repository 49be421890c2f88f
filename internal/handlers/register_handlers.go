package handlers

import (
	"github.com/auwerk/otus-service-billing/internal/core/services"
	"github.com/auwerk/otus-service-billing/internal/dto"
	"github.com/auwerk/otus-service-billing/internal/middleware"
	"github.com/auwerk/otus-service-billing/internal/repositories/database/pgsql"
	"github.com/auwerk/otus-service-billing/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	portssvc "github.com/auwerk/otus-service-billing/internal/core/ports/services"
)

// RegisterHandlers wires every route group onto the engine.
// Account and operation routes require an authenticated caller; the
// management surface is provisioning-only and carries no auth, mirroring
// its deployment behind an internal gateway.
func RegisterHandlers(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool) {
	dto.RegisterCustomValidators()

	repos := pgsql.NewRepositoryProvider(dbPool)
	billingService := services.NewBillingService(repos.AccountRepo, repos.OperationRepo)

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	RegisterAccountRoutes(v1, billingService)
	RegisterOperationRoutes(v1, billingService)

	management := r.Group("/management")
	RegisterManagementRoutes(management, billingService)
}

// RegisterAccountRoutes registers the caller-facing account routes.
func RegisterAccountRoutes(rg *gin.RouterGroup, billingService portssvc.BillingSvcFacade) {
	accountHandler := newAccountHandler(billingService)

	account := rg.Group("/account")
	{
		account.POST("", accountHandler.createAccount)
		account.GET("", accountHandler.getAccount)
	}
}

// RegisterOperationRoutes registers the ledger operation routes.
func RegisterOperationRoutes(rg *gin.RouterGroup, billingService portssvc.BillingSvcFacade) {
	operationHandler := newOperationHandler(billingService)

	operation := rg.Group("/operation")
	{
		operation.POST("", operationHandler.executeOperation)
		operation.DELETE("/:operationId", operationHandler.cancelOperation)
	}
}

// RegisterManagementRoutes registers the administrative provisioning routes.
func RegisterManagementRoutes(rg *gin.RouterGroup, billingService portssvc.BillingSvcFacade) {
	managementHandler := newManagementHandler(billingService)

	rg.POST("/account/:userName", managementHandler.createUserAccount)
	rg.DELETE("/account/:userName", managementHandler.deleteUserAccount)
}

package services

import (
	"context"

	"github.com/auwerk/otus-service-billing/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountLifecycleSvc defines account lifecycle operations
type AccountLifecycleSvc interface {
	// CreateAccount creates a billing account for the given user with a zero balance.
	CreateAccount(ctx context.Context, userName string) (string, error)

	// GetAccount retrieves the user's account. When fetchOperations is true the
	// account's operation history is loaded and attached, ordered by creation time.
	GetAccount(ctx context.Context, userName string, fetchOperations bool) (*domain.Account, error)

	// DeleteAccount removes the user's account together with all its operations.
	DeleteAccount(ctx context.Context, userName string) error
}

// OperationExecutorSvc defines ledger mutation operations
type OperationExecutorSvc interface {
	// ExecuteOperation applies a credit or withdrawal to the user's account and
	// returns the new operation's ID.
	ExecuteOperation(ctx context.Context, userName string, opType domain.OperationType, amount decimal.Decimal, comment string) (string, error)

	// CancelOperation reverses a previously executed operation owned by the user
	// and returns the reversal operation's ID.
	CancelOperation(ctx context.Context, userName string, operationID string, comment string) (string, error)
}

// BillingSvcFacade combines all billing service interfaces
// This is a facade for clients that need access to all operations
type BillingSvcFacade interface {
	AccountLifecycleSvc
	OperationExecutorSvc
}

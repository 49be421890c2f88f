package repositories

import (
	"context"

	"github.com/auwerk/otus-service-billing/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// OperationReader defines read operations for operation data
type OperationReader interface {
	// FindOperationByID retrieves a specific operation by its unique identifier.
	FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error)

	// FindOperationsByAccountID retrieves an account's operation history ordered by creation time.
	FindOperationsByAccountID(ctx context.Context, accountID string) ([]domain.Operation, error)
}

// OperationTransactionSupport defines operations that run inside a caller-managed transaction
type OperationTransactionSupport interface {
	// InsertOperationInTx appends a new operation within the given transaction
	// and returns its generated ID.
	InsertOperationInTx(ctx context.Context, tx pgx.Tx, operation domain.Operation) (string, error)

	// CountByRelatedToInTx counts operations whose relatedTo references the given
	// operation, within the given transaction.
	CountByRelatedToInTx(ctx context.Context, tx pgx.Tx, operationID string) (int64, error)

	// DeleteOperationsByAccountIDInTx removes all of an account's operations
	// within the given transaction.
	DeleteOperationsByAccountIDInTx(ctx context.Context, tx pgx.Tx, accountID string) error
}

// OperationRepositoryFacade combines all operation-related repository interfaces
type OperationRepositoryFacade interface {
	OperationReader
	OperationTransactionSupport
}

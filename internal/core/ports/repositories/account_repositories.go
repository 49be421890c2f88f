package repositories

import (
	"context"

	"github.com/auwerk/otus-service-billing/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByUserName retrieves the account owned by the given user.
	FindAccountByUserName(ctx context.Context, userName string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A second account for the same user
	// fails with apperrors.ErrDuplicate (the store's unique index is the authority).
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport defines operations that run inside a caller-managed transaction
type AccountTransactionSupport interface {
	// FindAccountByUserNameForUpdate selects the user's account and locks its row for update.
	FindAccountByUserNameForUpdate(ctx context.Context, tx pgx.Tx, userName string) (*domain.Account, error)

	// FindAccountByIDForUpdate selects an account by ID and locks its row for update.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// UpdateBalanceInTx sets the account's balance within the given transaction.
	UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal) error

	// DeleteAccountInTx removes the account row within the given transaction.
	DeleteAccountInTx(ctx context.Context, tx pgx.Tx, accountID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}

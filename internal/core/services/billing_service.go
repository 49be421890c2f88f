package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/auwerk/otus-service-billing/internal/apperrors"
	"github.com/auwerk/otus-service-billing/internal/core/domain"
	portsrepo "github.com/auwerk/otus-service-billing/internal/core/ports/repositories"
	portssvc "github.com/auwerk/otus-service-billing/internal/core/ports/services"
	"github.com/auwerk/otus-service-billing/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound                  = errors.New("account not found")
	ErrAccountAlreadyExists             = errors.New("account already exists")
	ErrOperationNotFound                = errors.New("operation not found")
	ErrOperationAlreadyCanceled         = errors.New("operation already canceled")
	ErrOperationExecutedByDifferentUser = errors.New("operation executed by different user")
	ErrInsufficientBalance              = errors.New("insufficient account balance")
	ErrNonPositiveAmount                = errors.New("operation amount must be positive")
)

// billingService provides account lifecycle and ledger mutation operations.
// Every mutating call runs as a single database transaction with the affected
// account row locked, so concurrent mutations on one account serialize while
// distinct accounts proceed independently.
type billingService struct {
	accountRepo   portsrepo.AccountRepositoryWithTx
	operationRepo portsrepo.OperationRepositoryFacade
}

// NewBillingService creates a new BillingService.
func NewBillingService(accountRepo portsrepo.AccountRepositoryWithTx, operationRepo portsrepo.OperationRepositoryFacade) portssvc.BillingSvcFacade {
	return &billingService{
		accountRepo:   accountRepo,
		operationRepo: operationRepo,
	}
}

// Ensure billingService implements the portssvc.BillingSvcFacade interface
var _ portssvc.BillingSvcFacade = (*billingService)(nil)

// CreateAccount creates a billing account with a zero balance for the given user.
// The store's unique constraint on the owner identity is the authority on
// duplicates; a lost race surfaces as ErrAccountAlreadyExists all the same.
func (s *billingService) CreateAccount(ctx context.Context, userName string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	_, err := s.accountRepo.FindAccountByUserName(ctx, userName)
	if err == nil {
		return "", fmt.Errorf("%w: user %s", ErrAccountAlreadyExists, userName)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing account", slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to check for existing account: %w", err)
	}

	account := domain.Account{
		AccountID: uuid.NewString(),
		UserName:  userName,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return "", fmt.Errorf("%w: user %s", ErrAccountAlreadyExists, userName)
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	return account.AccountID, nil
}

// GetAccount retrieves the user's account. When fetchOperations is true the
// operation history is loaded and attached, ordered by creation time; when
// false the lookup is skipped entirely.
func (s *billingService) GetAccount(ctx context.Context, userName string, fetchOperations bool) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrAccountNotFound, userName)
		}
		return nil, fmt.Errorf("failed to find account for user %s: %w", userName, err)
	}

	if fetchOperations {
		operations, err := s.operationRepo.FindOperationsByAccountID(ctx, account.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to load operations for account %s: %w", account.AccountID, err)
		}
		account.Operations = operations
	}

	return account, nil
}

// DeleteAccount removes the user's account and all its operations as one unit.
func (s *billingService) DeleteAccount(ctx context.Context, userName string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountByUserNameForUpdate(ctx, tx, userName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s", ErrAccountNotFound, userName)
		}
		return fmt.Errorf("failed to find account for user %s: %w", userName, err)
	}

	if err := s.operationRepo.DeleteOperationsByAccountIDInTx(ctx, tx, account.AccountID); err != nil {
		logger.Error("Failed to delete operations", slog.String("account_id", account.AccountID), slog.String("error", err.Error()))
		return err
	}
	if err := s.accountRepo.DeleteAccountInTx(ctx, tx, account.AccountID); err != nil {
		logger.Error("Failed to delete account", slog.String("account_id", account.AccountID), slog.String("error", err.Error()))
		return err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return err
	}

	logger.Info("Account deleted", slog.String("account_id", account.AccountID))
	return nil
}

// ExecuteOperation applies a credit or withdrawal to the user's account.
// The balance update and the operation insert commit together or not at all.
func (s *billingService) ExecuteOperation(ctx context.Context, userName string, opType domain.OperationType, amount decimal.Decimal, comment string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%w: got %s", ErrNonPositiveAmount, amount.String())
	}

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountByUserNameForUpdate(ctx, tx, userName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: user %s", ErrAccountNotFound, userName)
		}
		return "", fmt.Errorf("failed to find account for user %s: %w", userName, err)
	}

	operationID, err := s.applyOperation(ctx, tx, account, nil, opType, amount, comment)
	if err != nil {
		return "", err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return "", err
	}

	logger.Info("Operation executed",
		slog.String("operation_id", operationID),
		slog.String("account_id", account.AccountID),
		slog.String("type", string(opType)),
	)
	return operationID, nil
}

// CancelOperation reverses a previously executed operation by appending a new
// operation of the opposite type and the original's amount, linked via
// relatedTo. Only the account's owner may cancel, a reversal cannot itself be
// reversed, and an operation can be reversed at most once.
func (s *billingService) CancelOperation(ctx context.Context, userName string, operationID string, comment string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	operation, err := s.operationRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: id %s", ErrOperationNotFound, operationID)
		}
		return "", fmt.Errorf("failed to find operation %s: %w", operationID, err)
	}

	// A reversal cannot itself be reversed.
	if operation.RelatedTo != nil {
		return "", fmt.Errorf("%w: id %s", ErrOperationAlreadyCanceled, operationID)
	}

	account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, operation.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: id %s", ErrAccountNotFound, operation.AccountID)
		}
		return "", fmt.Errorf("failed to find account %s: %w", operation.AccountID, err)
	}

	if account.UserName != userName {
		logger.Warn("Cancellation rejected: caller does not own the account",
			slog.String("operation_id", operationID),
			slog.String("account_id", account.AccountID),
		)
		return "", fmt.Errorf("%w: id %s", ErrOperationExecutedByDifferentUser, operationID)
	}

	// Exactly-once reversal: the account row lock above serializes concurrent
	// cancellations, so this count is authoritative within the transaction.
	related, err := s.operationRepo.CountByRelatedToInTx(ctx, tx, operationID)
	if err != nil {
		return "", fmt.Errorf("failed to count reversals of operation %s: %w", operationID, err)
	}
	if related > 0 {
		return "", fmt.Errorf("%w: id %s", ErrOperationAlreadyCanceled, operationID)
	}

	reversalID, err := s.applyOperation(ctx, tx, account, &operation.OperationID, operation.Type.Reversed(), operation.Amount, comment)
	if err != nil {
		return "", err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return "", err
	}

	logger.Info("Operation canceled",
		slog.String("operation_id", operationID),
		slog.String("reversal_operation_id", reversalID),
		slog.String("account_id", account.AccountID),
	)
	return reversalID, nil
}

// applyOperation validates the target balance and, within the caller's
// transaction, persists the new balance and appends the operation row.
// The caller must hold the account's row lock.
func (s *billingService) applyOperation(ctx context.Context, tx pgx.Tx, account *domain.Account, relatedTo *string, opType domain.OperationType, amount decimal.Decimal, comment string) (string, error) {
	targetBalance := domain.TargetBalance(account.Balance, opType, amount)
	if targetBalance.IsNegative() {
		return "", ErrInsufficientBalance
	}

	if err := s.accountRepo.UpdateBalanceInTx(ctx, tx, account.AccountID, targetBalance); err != nil {
		return "", err
	}

	operation := domain.Operation{
		OperationID: uuid.NewString(),
		AccountID:   account.AccountID,
		Type:        opType,
		Amount:      amount,
		Comment:     comment,
		RelatedTo:   relatedTo,
		CreatedAt:   time.Now().UTC(),
	}
	return s.operationRepo.InsertOperationInTx(ctx, tx, operation)
}

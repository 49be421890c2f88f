package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/auwerk/otus-service-billing/internal/apperrors"
	"github.com/auwerk/otus-service-billing/internal/core/domain"
	portsrepo "github.com/auwerk/otus-service-billing/internal/core/ports/repositories"
	"github.com/auwerk/otus-service-billing/internal/models"
	"github.com/auwerk/otus-service-billing/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account. The unique index on username is the
// authority on one-account-per-user; a violation surfaces as ErrDuplicate.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (account_id, username, balance, created_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.UserName,
		modelAcc.Balance,
		modelAcc.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: account for user %s already exists", apperrors.ErrDuplicate, modelAcc.UserName)
			}
		}
		return apperrors.NewAppError(500, "failed to save account "+modelAcc.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, username, balance, created_at
		FROM accounts
		WHERE account_id = $1;
	`
	return r.scanAccountRow(r.Pool.QueryRow(ctx, query, accountID), "ID "+accountID)
}

// FindAccountByUserName retrieves the account owned by the given user.
func (r *PgxAccountRepository) FindAccountByUserName(ctx context.Context, userName string) (*domain.Account, error) {
	query := `
		SELECT account_id, username, balance, created_at
		FROM accounts
		WHERE username = $1;
	`
	return r.scanAccountRow(r.Pool.QueryRow(ctx, query, userName), "user "+userName)
}

// FindAccountByUserNameForUpdate selects the user's account and locks its row
// until the surrounding transaction completes.
func (r *PgxAccountRepository) FindAccountByUserNameForUpdate(ctx context.Context, tx pgx.Tx, userName string) (*domain.Account, error) {
	query := `
		SELECT account_id, username, balance, created_at
		FROM accounts
		WHERE username = $1
		FOR UPDATE;
	`
	return r.scanAccountRow(tx.QueryRow(ctx, query, userName), "user "+userName)
}

// FindAccountByIDForUpdate selects an account by ID and locks its row
// until the surrounding transaction completes.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, username, balance, created_at
		FROM accounts
		WHERE account_id = $1
		FOR UPDATE;
	`
	return r.scanAccountRow(tx.QueryRow(ctx, query, accountID), "ID "+accountID)
}

// UpdateBalanceInTx sets the account's balance within the given transaction.
func (r *PgxAccountRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $2
		WHERE account_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, accountID, balance)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update balance for account "+accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewAppError(500, "balance update for account "+accountID+" affected no rows", nil)
	}
	return nil
}

// DeleteAccountInTx removes the account row within the given transaction.
func (r *PgxAccountRepository) DeleteAccountInTx(ctx context.Context, tx pgx.Tx, accountID string) error {
	query := `
		DELETE FROM accounts
		WHERE account_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, accountID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete account "+accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + accountID + " not found for deletion")
	}
	return nil
}

func (r *PgxAccountRepository) scanAccountRow(row pgx.Row, descriptor string) (*domain.Account, error) {
	var modelAcc models.Account

	err := row.Scan(
		&modelAcc.AccountID,
		&modelAcc.UserName,
		&modelAcc.Balance,
		&modelAcc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account by "+descriptor, err)
	}

	domainAcc := mapping.ToDomainAccount(modelAcc)
	return &domainAcc, nil
}

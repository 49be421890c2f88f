package pgsql

import (
	"context"
	"errors"

	"github.com/auwerk/otus-service-billing/internal/apperrors"
	"github.com/auwerk/otus-service-billing/internal/core/domain"
	portsrepo "github.com/auwerk/otus-service-billing/internal/core/ports/repositories"
	"github.com/auwerk/otus-service-billing/internal/models"
	"github.com/auwerk/otus-service-billing/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOperationRepository struct {
	BaseRepository
}

// newPgxOperationRepository creates a new repository for operation data.
func newPgxOperationRepository(pool *pgxpool.Pool) portsrepo.OperationRepositoryFacade {
	return &PgxOperationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxOperationRepository implements portsrepo.OperationRepositoryFacade
var _ portsrepo.OperationRepositoryFacade = (*PgxOperationRepository)(nil)

// FindOperationByID retrieves an operation by its ID.
func (r *PgxOperationRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	query := `
		SELECT operation_id, account_id, type, amount, comment, related_to, created_at
		FROM operations
		WHERE operation_id = $1;
	`
	var modelOp models.Operation
	err := r.Pool.QueryRow(ctx, query, operationID).Scan(
		&modelOp.OperationID,
		&modelOp.AccountID,
		&modelOp.Type,
		&modelOp.Amount,
		&modelOp.Comment,
		&modelOp.RelatedTo,
		&modelOp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find operation by ID "+operationID, err)
	}

	domainOp := mapping.ToDomainOperation(modelOp)
	return &domainOp, nil
}

// FindOperationsByAccountID retrieves an account's operation history.
// Ordered by creation time, with the ID as a deterministic tiebreaker.
func (r *PgxOperationRepository) FindOperationsByAccountID(ctx context.Context, accountID string) ([]domain.Operation, error) {
	query := `
		SELECT operation_id, account_id, type, amount, comment, related_to, created_at
		FROM operations
		WHERE account_id = $1
		ORDER BY created_at, operation_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query operations for account "+accountID, err)
	}
	defer rows.Close()

	operations := []models.Operation{}
	for rows.Next() {
		var op models.Operation
		err := rows.Scan(
			&op.OperationID,
			&op.AccountID,
			&op.Type,
			&op.Amount,
			&op.Comment,
			&op.RelatedTo,
			&op.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan operation row for account "+accountID, err)
		}
		operations = append(operations, op)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating operation rows for account "+accountID, err)
	}

	return mapping.ToDomainOperationSlice(operations), nil
}

// InsertOperationInTx appends a new operation within the given transaction.
func (r *PgxOperationRepository) InsertOperationInTx(ctx context.Context, tx pgx.Tx, operation domain.Operation) (string, error) {
	modelOp := mapping.ToModelOperation(operation)

	query := `
		INSERT INTO operations (operation_id, account_id, type, amount, comment, related_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING operation_id;
	`
	var insertedID string
	err := tx.QueryRow(ctx, query,
		modelOp.OperationID,
		modelOp.AccountID,
		modelOp.Type,
		modelOp.Amount,
		modelOp.Comment,
		modelOp.RelatedTo,
		modelOp.CreatedAt,
	).Scan(&insertedID)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to insert operation for account "+modelOp.AccountID, err)
	}
	return insertedID, nil
}

// CountByRelatedToInTx counts operations that reverse the given operation.
func (r *PgxOperationRepository) CountByRelatedToInTx(ctx context.Context, tx pgx.Tx, operationID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM operations
		WHERE related_to = $1;
	`
	var count int64
	if err := tx.QueryRow(ctx, query, operationID).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count operations related to "+operationID, err)
	}
	return count, nil
}

// DeleteOperationsByAccountIDInTx removes all of an account's operations
// within the given transaction. Zero rows is fine: a fresh account has none.
func (r *PgxOperationRepository) DeleteOperationsByAccountIDInTx(ctx context.Context, tx pgx.Tx, accountID string) error {
	query := `
		DELETE FROM operations
		WHERE account_id = $1;
	`
	if _, err := tx.Exec(ctx, query, accountID); err != nil {
		return apperrors.NewAppError(500, "failed to delete operations for account "+accountID, err)
	}
	return nil
}

package pgsql

import (
	portsrepo "github.com/auwerk/otus-service-billing/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	operationRepo := newPgxOperationRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		OperationRepo: operationRepo,
	}
}

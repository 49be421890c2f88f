package mapping

import (
	"github.com/auwerk/otus-service-billing/internal/core/domain"
	"github.com/auwerk/otus-service-billing/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID: d.AccountID,
		UserName:  d.UserName,
		Balance:   d.Balance,
		CreatedAt: d.CreatedAt,
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID: m.AccountID,
		UserName:  m.UserName,
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
	}
}

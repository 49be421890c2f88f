package dto

import (
	"time"

	"github.com/auwerk/otus-service-billing/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountResponse returns the ID of a freshly created account.
type CreateAccountResponse struct {
	AccountID string `json:"accountID"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account; Operations is omitted unless history was requested.
type AccountResponse struct {
	AccountID  string              `json:"accountID"`
	UserName   string              `json:"userName"`
	Balance    decimal.Decimal     `json:"balance"`
	CreatedAt  time.Time           `json:"createdAt"`
	Operations []OperationResponse `json:"operations,omitempty"`
}

// GetAccountParams defines query parameters for the account lookup.
type GetAccountParams struct {
	FetchOperations bool `form:"fetchOperations,default=true"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	resp := AccountResponse{
		AccountID: acc.AccountID,
		UserName:  acc.UserName,
		Balance:   acc.Balance,
		CreatedAt: acc.CreatedAt,
	}
	if acc.Operations != nil {
		resp.Operations = ToOperationResponses(acc.Operations)
	}
	return resp
}

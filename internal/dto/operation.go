package dto

import (
	"time"

	"github.com/auwerk/otus-service-billing/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExecuteOperationRequest defines the data needed to execute a ledger operation.
// Amount uses the custom opamount validator (strictly positive decimal).
type ExecuteOperationRequest struct {
	Type    domain.OperationType `json:"type" binding:"required,oneof=CREDIT WITHDRAW"`
	Amount  decimal.Decimal      `json:"amount" binding:"required,opamount"`
	Comment string               `json:"comment"`
}

// CancelOperationRequest defines the data accompanying a cancellation.
type CancelOperationRequest struct {
	Comment string `json:"comment"`
}

// OperationIDResponse returns the ID of an executed or reversal operation.
type OperationIDResponse struct {
	OperationID string `json:"operationID"`
}

// OperationResponse defines the data returned for a single operation.
type OperationResponse struct {
	OperationID string               `json:"operationID"`
	AccountID   string               `json:"accountID"`
	Type        domain.OperationType `json:"type"`
	Amount      decimal.Decimal      `json:"amount"`
	Comment     string               `json:"comment"`
	RelatedTo   *string              `json:"relatedTo,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// ToOperationResponse converts a domain.Operation to OperationResponse DTO
func ToOperationResponse(op domain.Operation) OperationResponse {
	return OperationResponse{
		OperationID: op.OperationID,
		AccountID:   op.AccountID,
		Type:        op.Type,
		Amount:      op.Amount,
		Comment:     op.Comment,
		RelatedTo:   op.RelatedTo,
		CreatedAt:   op.CreatedAt,
	}
}

// ToOperationResponses converts a slice of domain.Operation to DTOs
func ToOperationResponses(ops []domain.Operation) []OperationResponse {
	res := make([]OperationResponse, len(ops))
	for i, op := range ops {
		res[i] = ToOperationResponse(op)
	}
	return res
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType indicates whether an operation credits or withdraws funds.
type OperationType string

const (
	Credit   OperationType = "CREDIT"
	Withdraw OperationType = "WITHDRAW"
)

// Reversed returns the operation type that negates the receiver's balance effect.
func (t OperationType) Reversed() OperationType {
	if t == Credit {
		return Withdraw
	}
	return Credit
}

// Operation represents a single balance mutation on an account. Operations are
// append-only: once created they are never updated or deleted individually.
type Operation struct {
	OperationID string          `json:"operationID"` // Primary Key (UUID)
	AccountID   string          `json:"accountID"`   // FK -> Account.accountID
	Type        OperationType   `json:"type"`        // CREDIT or WITHDRAW
	Amount      decimal.Decimal `json:"amount"`      // Strictly positive
	Comment     string          `json:"comment"`
	RelatedTo   *string         `json:"relatedTo,omitempty"` // ID of the operation this one reverses
	CreatedAt   time.Time       `json:"createdAt"`
}

// TargetBalance computes the balance that would result from applying an
// operation of the given type and amount to the current balance.
func TargetBalance(balance decimal.Decimal, opType OperationType, amount decimal.Decimal) decimal.Decimal {
	switch opType {
	case Withdraw:
		return balance.Sub(amount)
	case Credit:
		return balance.Add(amount)
	default:
		return balance
	}
}

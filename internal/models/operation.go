package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType mirrors domain.OperationType at the storage layer.
type OperationType string

const (
	Credit   OperationType = "CREDIT"
	Withdraw OperationType = "WITHDRAW"
)

// Operation is the DB-facing representation of a ledger operation.
// Rows are insert-only.
type Operation struct {
	OperationID string          `db:"operation_id"`
	AccountID   string          `db:"account_id"`
	Type        OperationType   `db:"type"`
	Amount      decimal.Decimal `db:"amount"`
	Comment     string          `db:"comment"`
	RelatedTo   *string         `db:"related_to"` // Nullable
	CreatedAt   time.Time       `db:"created_at"`
}

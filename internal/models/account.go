package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the DB-facing representation of a billing account.
type Account struct {
	AccountID string          `db:"account_id"`
	UserName  string          `db:"username"` // Unique per account
	Balance   decimal.Decimal `db:"balance"`
	CreatedAt time.Time       `db:"created_at"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a user's billing account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID string          `json:"accountID"` // Primary Key (UUID)
	UserName  string          `json:"userName"`  // Owner identity, unique (one account per user)
	Balance   decimal.Decimal `json:"balance"`   // Persisted balance, never negative after a committed mutation
	CreatedAt time.Time       `json:"createdAt"`
	// Operations holds the account's operation history ordered by creation time.
	// Loaded on demand; nil when the caller did not request it.
	Operations []Operation `json:"operations,omitempty"`
}

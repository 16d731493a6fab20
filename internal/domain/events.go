package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionPostedEvent is the message payload published after a transaction
// has been confirmed and recorded in the ledger.
type TransactionPostedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	TransactionID string          `json:"transaction_id"`
	AccountNumber string          `json:"account_number"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	PostedAt      time.Time       `json:"posted_at"`
}

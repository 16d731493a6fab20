/**
 * @description
 * This file defines the Transaction record, the immutable unit of ledger
 * history. Transactions are created only by the ledger as the result of a
 * successful mutation and are removed only by explicit rollback of the single
 * most-recent entry for an account.
 *
 * @notes
 * - Amounts use shopspring/decimal to keep monetary precision; they serialize
 *   as JSON strings.
 */

package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger event.
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeTransfer   TransactionType = "TRANSFER"
	TypeReceive    TransactionType = "RECEIVE"
)

// ParseTransactionType maps external input to a transaction type.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeDeposit:
		return TypeDeposit, true
	case TypeWithdrawal:
		return TypeWithdrawal, true
	case TypeTransfer:
		return TypeTransfer, true
	case TypeReceive:
		return TypeReceive, true
	}
	return "", false
}

// Credit reports whether the type increases the account balance.
func (t TransactionType) Credit() bool {
	return t == TypeDeposit || t == TypeReceive
}

// TimestampLayout is the display/serialization format for transaction
// timestamps, e.g. "24-03-2026 09:15 AM".
const TimestampLayout = "02-01-2006 03:04 PM"

// Transaction is an immutable record of one ledger event. Once appended,
// fields never change except timestamp normalization during deserialization.
type Transaction struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Timestamp     time.Time       `json:"timestamp"`
}

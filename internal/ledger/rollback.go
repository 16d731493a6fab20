/**
 * @description
 * This file implements the compensating-rollback layer. A caller captures an
 * account's state before invoking a ledger operation, then either confirms
 * (no-op, the optimistically applied effects stand) or cancels, which removes
 * the single transaction the operation appended and forcibly resets the
 * balance to its captured value.
 *
 * @notes
 * - This is a compensating action, not a true transactional rollback: it
 *   assumes no other mutation interleaved on the same account between capture
 *   and cancel. Behavior under a genuine race is a known limitation.
 */

package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
)

// Snapshot captures an account's pre-operation state. It is a one-shot token:
// after Confirm or Cancel, further calls are no-ops.
type Snapshot struct {
	accountNumber string
	lastTxID      string
	prevBalance   decimal.Decimal
	done          bool
}

// AccountNumber returns the account the snapshot was captured for.
func (s *Snapshot) AccountNumber() string { return s.accountNumber }

// PreviousBalance returns the balance at capture time.
func (s *Snapshot) PreviousBalance() decimal.Decimal { return s.prevBalance }

// RollbackCoordinator wraps ledger operations with a capture/confirm/cancel
// protocol.
type RollbackCoordinator struct {
	ledger *Ledger
}

// NewRollbackCoordinator creates a coordinator over the given ledger.
func NewRollbackCoordinator(l *Ledger) *RollbackCoordinator {
	return &RollbackCoordinator{ledger: l}
}

// Capture records the ID of the most recent transaction currently posted to
// the account (if any) and its current balance, before the caller invokes the
// new operation.
func (rc *RollbackCoordinator) Capture(accountNumber string) (*Snapshot, error) {
	acct, ok := rc.ledger.registry.Get(accountNumber)
	if !ok {
		return nil, domain.NewError(domain.KindAccountNotFound, "account not found: %s", accountNumber)
	}
	s := &Snapshot{
		accountNumber: accountNumber,
		prevBalance:   acct.Balance(),
	}
	if last, ok := rc.ledger.LastTransaction(accountNumber); ok {
		s.lastTxID = last.ID
	}
	return s, nil
}

// Confirm finishes the protocol without compensation; the operation's effects
// stand.
func (rc *RollbackCoordinator) Confirm(s *Snapshot) {
	if s != nil {
		s.done = true
	}
}

// Cancel compensates the operation performed after Capture: if exactly one new
// transaction was appended for the account since the capture, it is removed
// and the balance is reset to the captured value. When the operation appended
// nothing (it failed or was declined) there is nothing to undo.
func (rc *RollbackCoordinator) Cancel(s *Snapshot) error {
	if s == nil || s.done {
		return nil
	}
	s.done = true
	acct, ok := rc.ledger.registry.Get(s.accountNumber)
	if !ok {
		return domain.NewError(domain.KindAccountNotFound, "account not found: %s", s.accountNumber)
	}
	last, ok := rc.ledger.LastTransaction(s.accountNumber)
	if !ok || last.ID == s.lastTxID {
		return nil
	}
	rc.ledger.RemoveTransaction(last.ID)
	acct.mu.Lock()
	acct.setBalanceLocked(s.prevBalance)
	acct.mu.Unlock()
	return nil
}

/**
 * @description
 * This file implements the transaction ledger: the append-only, thread-safe
 * sequence of transaction records, and the deposit/withdraw/transfer
 * operations that mutate accounts and record history. Transfers acquire the
 * two per-account locks in account-number order and compensate the source
 * withdrawal if the destination deposit fails, so a failed transfer never
 * leaves a net balance change.
 *
 * @dependencies
 * - sync, time: Ledger list lock and wall-clock timestamps.
 * - github.com/shopspring/decimal: Monetary amounts.
 * - internal/domain: Transaction records, sequences, error kinds.
 */

package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
)

// Ledger applies mutations against accounts from the registry and records one
// transaction per successful mutation. The internal list lock is short-lived
// and is never held across an account-mutation critical section.
type Ledger struct {
	registry *Registry
	seq      *domain.Sequence
	now      func() time.Time

	mu           sync.RWMutex
	transactions []*domain.Transaction
}

// NewLedger creates a ledger over the given registry using the wall clock.
func NewLedger(registry *Registry) *Ledger {
	return NewLedgerWithClock(registry, time.Now)
}

// NewLedgerWithClock creates a ledger with an injected timestamp source.
func NewLedgerWithClock(registry *Registry, clock func() time.Time) *Ledger {
	return &Ledger{
		registry: registry,
		seq:      domain.NewSequence("TXN"),
		now:      clock,
	}
}

// Registry returns the account registry the ledger operates on.
func (l *Ledger) Registry() *Registry { return l.registry }

// Deposit credits an account and appends a DEPOSIT record carrying the
// post-mutation balance.
func (l *Ledger) Deposit(accountNumber string, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, domain.NewError(domain.KindInvalidAmount, "deposit amount must be greater than 0, got %s", amount)
	}
	acct, ok := l.registry.Get(accountNumber)
	if !ok {
		return nil, domain.NewError(domain.KindAccountNotFound, "account not found: %s", accountNumber)
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()
	after, err := acct.depositLocked(amount)
	if err != nil {
		return nil, err
	}
	// Appending while the account lock is held keeps the record order for one
	// account identical to the order in which its mutations committed.
	return l.record(acct.number, domain.TypeDeposit, amount, after), nil
}

// Withdraw debits an account under its variant policy and appends a
// WITHDRAWAL record carrying the post-mutation balance.
func (l *Ledger) Withdraw(accountNumber string, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, domain.NewError(domain.KindInvalidAmount, "withdrawal amount must be greater than 0, got %s", amount)
	}
	acct, ok := l.registry.Get(accountNumber)
	if !ok {
		return nil, domain.NewError(domain.KindAccountNotFound, "account not found: %s", accountNumber)
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()
	after, err := acct.withdrawLocked(amount)
	if err != nil {
		return nil, err
	}
	return l.record(acct.number, domain.TypeWithdrawal, amount, after), nil
}

// Transfer moves amount between two distinct accounts. Both account locks are
// held for the whole mutation, acquired in account-number order regardless of
// call direction. On destination failure the source withdrawal is compensated
// before the error propagates, leaving zero net balance change. On success a
// TRANSFER record is appended against the source and a RECEIVE record against
// the destination.
func (l *Ledger) Transfer(fromNumber, toNumber string, amount decimal.Decimal) (*domain.Transaction, *domain.Transaction, error) {
	if fromNumber == "" || toNumber == "" {
		return nil, nil, domain.NewError(domain.KindInvalidOperation, "transfer requires both account numbers")
	}
	if fromNumber == toNumber {
		return nil, nil, domain.NewError(domain.KindInvalidOperation, "cannot transfer to the same account: %s", fromNumber)
	}
	if amount.Sign() <= 0 {
		return nil, nil, domain.NewError(domain.KindInvalidAmount, "transfer amount must be greater than 0, got %s", amount)
	}
	src, ok := l.registry.Get(fromNumber)
	if !ok {
		return nil, nil, domain.NewError(domain.KindAccountNotFound, "source account not found: %s", fromNumber)
	}
	dst, ok := l.registry.Get(toNumber)
	if !ok {
		return nil, nil, domain.NewError(domain.KindAccountNotFound, "destination account not found: %s", toNumber)
	}

	lockPair(src, dst)
	defer unlockPair(src, dst)

	srcBefore := src.balance
	srcAfter, err := src.withdrawLocked(amount)
	if err != nil {
		return nil, nil, err
	}
	dstAfter, err := dst.depositLocked(amount)
	if err != nil {
		// Compensate: restore the exact pre-withdrawal source balance
		// (including any fee that was charged).
		src.setBalanceLocked(srcBefore)
		return nil, nil, err
	}

	fromTx := l.record(src.number, domain.TypeTransfer, amount, srcAfter)
	toTx := l.record(dst.number, domain.TypeReceive, amount, dstAfter)
	return fromTx, toTx, nil
}

// record appends a transaction under the ledger list lock.
func (l *Ledger) record(accountNumber string, typ domain.TransactionType, amount, balanceAfter decimal.Decimal) *domain.Transaction {
	tx := &domain.Transaction{
		ID:            l.seq.Next(),
		AccountNumber: accountNumber,
		Type:          typ,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		Timestamp:     l.now(),
	}
	l.mu.Lock()
	l.transactions = append(l.transactions, tx)
	l.mu.Unlock()
	return tx
}

// TransactionsFor returns the transactions posted against one account, in
// append order, copied under the read lock so the slice is a consistent
// point-in-time view.
func (l *Ledger) TransactionsFor(accountNumber string) []*domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Transaction, 0)
	for _, tx := range l.transactions {
		if tx.AccountNumber == accountNumber {
			out = append(out, tx)
		}
	}
	return out
}

// AllTransactions returns a snapshot of the whole ledger in append order.
func (l *Ledger) AllTransactions() []*domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// LastTransaction returns the most recently appended transaction for an
// account, if any.
func (l *Ledger) LastTransaction(accountNumber string) (*domain.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.transactions) - 1; i >= 0; i-- {
		if l.transactions[i].AccountNumber == accountNumber {
			return l.transactions[i], true
		}
	}
	return nil, false
}

// RemoveTransaction deletes a record by ID. Only the rollback coordinator's
// compensating path should use it.
func (l *Ledger) RemoveTransaction(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, tx := range l.transactions {
		if tx.ID == id {
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			return true
		}
	}
	return false
}

// Count reports the total number of records in the ledger.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.transactions)
}

// Totals are the per-account aggregates derived from ledger history.
type Totals struct {
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
	Received    decimal.Decimal
	Transferred decimal.Decimal
}

// NetChange is deposits minus withdrawals, ignoring transfers.
func (t Totals) NetChange() decimal.Decimal {
	return t.Deposits.Sub(t.Withdrawals)
}

// TotalsFor computes the aggregate totals for one account over a consistent
// snapshot of the ledger.
func (l *Ledger) TotalsFor(accountNumber string) Totals {
	var t Totals
	for _, tx := range l.TransactionsFor(accountNumber) {
		switch tx.Type {
		case domain.TypeDeposit:
			t.Deposits = t.Deposits.Add(tx.Amount)
		case domain.TypeWithdrawal:
			t.Withdrawals = t.Withdrawals.Add(tx.Amount)
		case domain.TypeReceive:
			t.Received = t.Received.Add(tx.Amount)
		case domain.TypeTransfer:
			t.Transferred = t.Transferred.Add(tx.Amount)
		}
	}
	return t
}

// ReplaceAll swaps the ledger contents for a restored transaction list and
// advances the ID sequence past every restored ID.
func (l *Ledger) ReplaceAll(transactions []*domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions = make([]*domain.Transaction, 0, len(transactions))
	seen := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		if tx == nil || seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true
		l.transactions = append(l.transactions, tx)
		l.seq.Observe(tx.ID)
	}
}

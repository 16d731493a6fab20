/**
 * @description
 * This file defines the Account entity: a tagged variant over savings and
 * checking accounts, each with its own withdrawal policy. The account owns its
 * balance and an explicit mutex; every balance mutation goes through the
 * deposit/withdraw contract inside that mutex, which is also the lock the
 * ledger acquires (in a documented order) during transfers.
 *
 * @dependencies
 * - sync: Per-account critical section.
 * - github.com/shopspring/decimal: Monetary amounts.
 * - internal/domain: Customers and error kinds.
 */

package ledger

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
)

// AccountKind tags the account variant.
type AccountKind string

const (
	KindSavings  AccountKind = "savings"
	KindChecking AccountKind = "checking"
)

// ParseAccountKind maps external input to an account kind.
func ParseAccountKind(s string) (AccountKind, bool) {
	switch AccountKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSavings:
		return KindSavings, true
	case KindChecking:
		return KindChecking, true
	}
	return "", false
}

// Account status values.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Policy carries the variant-specific withdrawal parameters. MinimumBalance
// applies to savings accounts, OverdraftLimit to checking accounts; the
// per-withdrawal fee applies to whichever variant it is configured for.
type Policy struct {
	MinimumBalance decimal.Decimal
	OverdraftLimit decimal.Decimal
	WithdrawalFee  decimal.Decimal
}

// PolicySet holds the configured policy for each account variant.
type PolicySet struct {
	Savings  Policy
	Checking Policy
}

// For returns the policy for the given variant.
func (ps PolicySet) For(kind AccountKind) Policy {
	if kind == KindChecking {
		return ps.Checking
	}
	return ps.Savings
}

// Account is a single bank account. The zero value is not usable; construct
// with NewAccount or RestoreAccount.
type Account struct {
	mu       sync.Mutex
	number   string
	kind     AccountKind
	customer *domain.Customer
	balance  decimal.Decimal
	status   string
	policy   Policy
}

// NewAccount opens an active account with an initial deposit. Validation of
// the opening minimum is the caller's concern (it depends on customer tier).
func NewAccount(number string, kind AccountKind, customer *domain.Customer, initialDeposit decimal.Decimal, policy Policy) *Account {
	return &Account{
		number:   number,
		kind:     kind,
		customer: customer,
		balance:  initialDeposit,
		status:   StatusActive,
		policy:   policy,
	}
}

// RestoreAccount rebuilds an account from persisted state.
func RestoreAccount(number string, kind AccountKind, customer *domain.Customer, balance decimal.Decimal, status string, policy Policy) *Account {
	a := NewAccount(number, kind, customer, balance, policy)
	if status == StatusInactive {
		a.status = StatusInactive
	}
	return a
}

// Number returns the account number.
func (a *Account) Number() string { return a.number }

// Kind returns the account variant.
func (a *Account) Kind() AccountKind { return a.kind }

// Status returns the account status.
func (a *Account) Status() string { return a.status }

// Policy returns the variant policy the account was opened with.
func (a *Account) Policy() Policy { return a.policy }

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// CustomerID returns the owning customer's identifier.
func (a *Account) CustomerID() string { return a.customer.ID }

// Customer returns a copy of the owning customer's data. The copy is taken
// under the account lock so it never observes a half-applied update.
func (a *Account) Customer() domain.Customer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.customer
}

// UpdateCustomer replaces the mutable customer fields.
func (a *Account) UpdateCustomer(name string, age int, contact, address string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.customer.Name = name
	a.customer.Age = age
	a.customer.Contact = contact
	a.customer.Address = address
}

// Deposit increases the balance by amount and returns the post-mutation
// balance. Fails with an invalid-amount error when amount <= 0.
func (a *Account) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.depositLocked(amount)
}

// Withdraw decreases the balance by amount (plus any configured per-withdrawal
// fee) and returns the post-mutation balance. The variant policy decides the
// floor: savings may not drop below the minimum balance, checking may go
// negative up to the overdraft limit.
func (a *Account) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.withdrawLocked(amount)
}

// ProcessTransaction dispatches to deposit or withdraw by type. Unrecognized
// types return false without an error.
func (a *Account) ProcessTransaction(amount decimal.Decimal, typ domain.TransactionType) (bool, error) {
	switch typ {
	case domain.TypeDeposit:
		if _, err := a.Deposit(amount); err != nil {
			return false, err
		}
		return true, nil
	case domain.TypeWithdrawal:
		if _, err := a.Withdraw(amount); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}

// depositLocked assumes a.mu is held.
func (a *Account) depositLocked(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return a.balance, domain.NewError(domain.KindInvalidAmount, "deposit amount must be greater than 0, got %s", amount)
	}
	a.balance = a.balance.Add(amount)
	return a.balance, nil
}

// withdrawLocked assumes a.mu is held.
func (a *Account) withdrawLocked(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return a.balance, domain.NewError(domain.KindInvalidAmount, "withdrawal amount must be greater than 0, got %s", amount)
	}
	debit := amount.Add(a.policy.WithdrawalFee)
	remaining := a.balance.Sub(debit)
	switch a.kind {
	case KindChecking:
		if remaining.LessThan(a.policy.OverdraftLimit.Neg()) {
			return a.balance, domain.NewError(domain.KindOverdraftExceeded,
				"withdrawal of %s exceeds overdraft limit %s (balance %s)",
				amount, a.policy.OverdraftLimit, a.balance)
		}
	default:
		if remaining.LessThan(a.policy.MinimumBalance) {
			return a.balance, domain.NewError(domain.KindInsufficientFunds,
				"withdrawal of %s would breach minimum balance %s (balance %s)",
				amount, a.policy.MinimumBalance, a.balance)
		}
	}
	a.balance = remaining
	return a.balance, nil
}

// setBalanceLocked forcibly resets the balance; only the rollback
// coordinator's compensating path uses it.
func (a *Account) setBalanceLocked(balance decimal.Decimal) {
	a.balance = balance
}

// lockPair acquires both account locks in account-number order, so two
// concurrent transfers over the same pair (in either direction) always lock in
// the same global order and cannot deadlock.
func lockPair(a, b *Account) {
	if a.number < b.number {
		a.mu.Lock()
		b.mu.Lock()
	} else {
		b.mu.Lock()
		a.mu.Lock()
	}
}

func unlockPair(a, b *Account) {
	a.mu.Unlock()
	b.mu.Unlock()
}

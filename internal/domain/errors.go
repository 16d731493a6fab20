/**
 * @description
 * This file defines the business error taxonomy for the ledger core. Every
 * business-rule violation raised by the engine carries an explicit kind plus a
 * human-readable detail string; callers match on the kind with errors.Is and
 * surface the detail however they see fit.
 *
 * @dependencies
 * - errors, fmt: Standard Go libraries.
 */

package domain

import "fmt"

// ErrorKind identifies a class of business-rule violation.
type ErrorKind string

const (
	KindAccountNotFound   ErrorKind = "account_not_found"
	KindInvalidAmount     ErrorKind = "invalid_amount"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindOverdraftExceeded ErrorKind = "overdraft_exceeded"
	KindInvalidOperation  ErrorKind = "invalid_operation"
)

// Error is a business-rule violation. The zero Detail sentinels below are the
// targets for errors.Is; concrete errors returned by the engine carry details.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

// Is matches any *Error of the same kind, so
// errors.Is(err, domain.ErrInsufficientFunds) works regardless of detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrAccountNotFound   = &Error{Kind: KindAccountNotFound}
	ErrInvalidAmount     = &Error{Kind: KindInvalidAmount}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds}
	ErrOverdraftExceeded = &Error{Kind: KindOverdraftExceeded}
	ErrInvalidOperation  = &Error{Kind: KindInvalidOperation}
)

// NewError builds a business error of the given kind with a formatted detail.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

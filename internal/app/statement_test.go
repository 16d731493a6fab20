package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
)

func TestStatementRendersHistoryNewestFirst(t *testing.T) {
	registry := ledger.NewRegistry()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	s := NewService(testConfig(t), registry, ledger.NewLedgerWithClock(registry, clock), nil)

	acct := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "John Smith",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindSavings,
		InitialDeposit: decimal.RequireFromString("1000.00"),
	})
	if _, err := s.Deposit(context.Background(), acct.Number(), decimal.RequireFromString("200.00"), true); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := s.Withdraw(context.Background(), acct.Number(), decimal.RequireFromString("150.00"), true); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	statement, err := s.Statement(acct.Number())
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}

	for _, want := range []string{
		"TRANSACTION HISTORY FOR ACCOUNT: ACC001 - John Smith",
		"Account Type: savings (regular tier)",
		"Current Balance: $1050.00",
		"Total Deposits:    $200.00",
		"Total Withdrawals: $150.00",
		"Net Change:        $50.00",
	} {
		if !strings.Contains(statement, want) {
			t.Fatalf("statement missing %q:\n%s", want, statement)
		}
	}

	// The withdrawal was posted last, so it renders before the deposit.
	if strings.Index(statement, "TXN002") > strings.Index(statement, "TXN001") {
		t.Fatalf("expected newest transaction first:\n%s", statement)
	}
}

func TestStatementEmptyHistory(t *testing.T) {
	s := newTestService(t)
	acct := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Ada",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindChecking,
		InitialDeposit: decimal.RequireFromString("600.00"),
	})

	statement, err := s.Statement(acct.Number())
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if !strings.Contains(statement, "No transactions recorded for this account.") {
		t.Fatalf("statement missing empty-history notice:\n%s", statement)
	}
}

func TestStatementUnknownAccount(t *testing.T) {
	s := newTestService(t)
	if _, err := s.Statement("ACC404"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

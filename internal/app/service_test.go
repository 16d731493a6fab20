package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/config"
	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		TransactionEventExchange:     "ledger.transactions",
		SavingsMinimumBalance:        decimal.RequireFromString("500.00"),
		SavingsWithdrawalFee:         decimal.Zero,
		CheckingOverdraftLimit:       decimal.RequireFromString("500.00"),
		CheckingWithdrawalFee:        decimal.Zero,
		RegularMinimumOpeningDeposit: decimal.RequireFromString("500.00"),
		PremiumMinimumOpeningDeposit: decimal.RequireFromString("10000.00"),
		SimulationMaxWorkers:         8,
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	registry := ledger.NewRegistry()
	return NewService(testConfig(t), registry, ledger.NewLedger(registry), nil)
}

func mustOpen(t *testing.T, s *Service, p OpenAccountParams) *ledger.Account {
	t.Helper()
	acct, err := s.OpenAccount(p)
	if err != nil {
		t.Fatalf("OpenAccount: %v", err)
	}
	return acct
}

func TestOpenAccountMintsSequentialIDs(t *testing.T) {
	s := newTestService(t)

	first := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Ada",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindSavings,
		InitialDeposit: decimal.RequireFromString("1000.00"),
	})
	second := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Bob",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindChecking,
		InitialDeposit: decimal.RequireFromString("600.00"),
	})

	if first.Number() != "ACC001" || second.Number() != "ACC002" {
		t.Fatalf("account numbers = %s, %s; want ACC001, ACC002", first.Number(), second.Number())
	}
	if first.CustomerID() != "CUS001" || second.CustomerID() != "CUS002" {
		t.Fatalf("customer IDs = %s, %s; want CUS001, CUS002", first.CustomerID(), second.CustomerID())
	}
}

func TestOpenAccountEnforcesTierMinimum(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name    string
		tier    domain.CustomerTier
		deposit string
		wantErr bool
	}{
		{name: "regular below minimum", tier: domain.TierRegular, deposit: "499.99", wantErr: true},
		{name: "regular at minimum", tier: domain.TierRegular, deposit: "500.00"},
		{name: "premium below minimum", tier: domain.TierPremium, deposit: "9999.99", wantErr: true},
		{name: "premium at minimum", tier: domain.TierPremium, deposit: "10000.00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.OpenAccount(OpenAccountParams{
				CustomerName:   "Carol",
				Tier:           tc.tier,
				Kind:           ledger.KindSavings,
				InitialDeposit: decimal.RequireFromString(tc.deposit),
			})
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidAmount) {
					t.Fatalf("err = %v, want ErrInvalidAmount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenAccount: %v", err)
			}
		})
	}
}

func TestDepositUnconfirmedIsCompensated(t *testing.T) {
	s := newTestService(t)
	acct := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Ada",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindSavings,
		InitialDeposit: decimal.RequireFromString("1000.00"),
	})

	tx, err := s.Deposit(context.Background(), acct.Number(), decimal.RequireFromString("250.00"), false)
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if !tx.BalanceAfter.Equal(decimal.RequireFromString("1250.00")) {
		t.Fatalf("previewed balance = %s, want 1250.00", tx.BalanceAfter)
	}
	if !acct.Balance().Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("balance after cancel = %s, want 1000.00", acct.Balance())
	}
	if got := len(s.Ledger().TransactionsFor(acct.Number())); got != 0 {
		t.Fatalf("history length after cancel = %d, want 0", got)
	}
}

func TestWithdrawConfirmedPosts(t *testing.T) {
	s := newTestService(t)
	acct := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Ada",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindSavings,
		InitialDeposit: decimal.RequireFromString("1000.00"),
	})

	tx, err := s.Withdraw(context.Background(), acct.Number(), decimal.RequireFromString("200.00"), true)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if tx.Type != domain.TypeWithdrawal {
		t.Fatalf("type = %s, want %s", tx.Type, domain.TypeWithdrawal)
	}
	if !acct.Balance().Equal(decimal.RequireFromString("800.00")) {
		t.Fatalf("balance = %s, want 800.00", acct.Balance())
	}
	if got := len(s.Ledger().TransactionsFor(acct.Number())); got != 1 {
		t.Fatalf("history length = %d, want 1", got)
	}
}

func TestTransferUnconfirmedCompensatesBothSides(t *testing.T) {
	s := newTestService(t)
	src := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Ada",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindSavings,
		InitialDeposit: decimal.RequireFromString("1000.00"),
	})
	dst := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Bob",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindChecking,
		InitialDeposit: decimal.RequireFromString("500.00"),
	})

	_, _, err := s.Transfer(context.Background(), src.Number(), dst.Number(), decimal.RequireFromString("300.00"), false)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !src.Balance().Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("source balance = %s, want 1000.00", src.Balance())
	}
	if !dst.Balance().Equal(decimal.RequireFromString("500.00")) {
		t.Fatalf("destination balance = %s, want 500.00", dst.Balance())
	}
	if got := s.Ledger().Count(); got != 0 {
		t.Fatalf("ledger count after cancel = %d, want 0", got)
	}
}

func TestTransferConfirmedPostsBothRecords(t *testing.T) {
	s := newTestService(t)
	src := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Ada",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindSavings,
		InitialDeposit: decimal.RequireFromString("1000.00"),
	})
	dst := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Bob",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindChecking,
		InitialDeposit: decimal.RequireFromString("500.00"),
	})

	fromTx, toTx, err := s.Transfer(context.Background(), src.Number(), dst.Number(), decimal.RequireFromString("300.00"), true)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if fromTx.Type != domain.TypeTransfer || toTx.Type != domain.TypeReceive {
		t.Fatalf("types = %s, %s; want %s, %s", fromTx.Type, toTx.Type, domain.TypeTransfer, domain.TypeReceive)
	}
	if !src.Balance().Equal(decimal.RequireFromString("700.00")) {
		t.Fatalf("source balance = %s, want 700.00", src.Balance())
	}
	if !dst.Balance().Equal(decimal.RequireFromString("800.00")) {
		t.Fatalf("destination balance = %s, want 800.00", dst.Balance())
	}
}

func TestRemoveAndUpdateUnknownAccount(t *testing.T) {
	s := newTestService(t)

	if err := s.RemoveAccount("ACC999"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("RemoveAccount err = %v, want ErrAccountNotFound", err)
	}
	if err := s.UpdateCustomer("ACC999", "Nobody", 0, "", ""); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("UpdateCustomer err = %v, want ErrAccountNotFound", err)
	}
	if _, err := s.History("ACC999"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("History err = %v, want ErrAccountNotFound", err)
	}
}

func TestRestoreSnapshotReseedsSequences(t *testing.T) {
	s := newTestService(t)

	customer := &domain.Customer{ID: "CUS007", Name: "Grace", Tier: domain.TierRegular}
	restored := ledger.RestoreAccount("ACC042", ledger.KindSavings, customer,
		decimal.RequireFromString("2000.00"), ledger.StatusActive, s.Policies().Savings)
	s.RestoreSnapshot([]*ledger.Account{restored}, nil)

	next := mustOpen(t, s, OpenAccountParams{
		CustomerName:   "Ada",
		Tier:           domain.TierRegular,
		Kind:           ledger.KindSavings,
		InitialDeposit: decimal.RequireFromString("1000.00"),
	})
	if next.Number() != "ACC043" {
		t.Fatalf("next account number = %s, want ACC043", next.Number())
	}
	if next.CustomerID() != "CUS008" {
		t.Fatalf("next customer ID = %s, want CUS008", next.CustomerID())
	}
}

func TestSeedSampleData(t *testing.T) {
	s := newTestService(t)

	if err := s.SeedSampleData(); err != nil {
		t.Fatalf("SeedSampleData: %v", err)
	}
	if got := s.Registry().Len(); got != 5 {
		t.Fatalf("registry size = %d, want 5", got)
	}
	// Idempotent against a populated registry.
	if err := s.SeedSampleData(); err != nil {
		t.Fatalf("SeedSampleData (second run): %v", err)
	}
	if got := s.Registry().Len(); got != 5 {
		t.Fatalf("registry size after reseed = %d, want 5", got)
	}
}

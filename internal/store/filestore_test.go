package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
)

func testPolicies(t *testing.T) ledger.PolicySet {
	t.Helper()
	return ledger.PolicySet{
		Savings:  ledger.Policy{MinimumBalance: decimal.RequireFromString("500.00")},
		Checking: ledger.Policy{OverdraftLimit: decimal.RequireFromString("500.00")},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := NewFileStore(t.TempDir(), testPolicies(t))

	customer := &domain.Customer{ID: "CUS001", Name: "John Smith", Age: 34, Contact: "555-0101", Address: "12 Elm Street", Tier: domain.TierRegular}
	acct := ledger.RestoreAccount("ACC001", ledger.KindSavings, customer,
		decimal.RequireFromString("5250.00"), ledger.StatusActive, testPolicies(t).Savings)
	posted := time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)
	tx := &domain.Transaction{
		ID:            "TXN001",
		AccountNumber: "ACC001",
		Type:          domain.TypeDeposit,
		Amount:        decimal.RequireFromString("250.00"),
		BalanceAfter:  decimal.RequireFromString("5250.00"),
		Timestamp:     posted,
	}

	snap := Snapshot{Accounts: []*ledger.Account{acct}, Transactions: []*domain.Transaction{tx}}
	if err := fs.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Accounts) != 1 || len(loaded.Transactions) != 1 {
		t.Fatalf("loaded %d accounts, %d transactions; want 1 and 1", len(loaded.Accounts), len(loaded.Transactions))
	}

	got := loaded.Accounts[0]
	if got.Number() != "ACC001" || got.Kind() != ledger.KindSavings || got.Status() != ledger.StatusActive {
		t.Fatalf("account = %s/%s/%s", got.Number(), got.Kind(), got.Status())
	}
	if !got.Balance().Equal(decimal.RequireFromString("5250.00")) {
		t.Fatalf("balance = %s, want 5250.00", got.Balance())
	}
	if c := got.Customer(); c != *customer {
		t.Fatalf("customer = %+v, want %+v", c, *customer)
	}
	if !got.Policy().MinimumBalance.Equal(decimal.RequireFromString("500.00")) {
		t.Fatalf("policy not rebuilt: %+v", got.Policy())
	}

	gotTx := loaded.Transactions[0]
	if gotTx.ID != "TXN001" || gotTx.Type != domain.TypeDeposit {
		t.Fatalf("transaction = %s/%s", gotTx.ID, gotTx.Type)
	}
	if !gotTx.Amount.Equal(tx.Amount) || !gotTx.BalanceAfter.Equal(tx.BalanceAfter) {
		t.Fatalf("amounts = %s/%s", gotTx.Amount, gotTx.BalanceAfter)
	}
	// The layout keeps minute precision only.
	if !gotTx.Timestamp.Equal(posted.Truncate(time.Minute)) {
		t.Fatalf("timestamp = %s, want %s", gotTx.Timestamp, posted.Truncate(time.Minute))
	}
}

func TestFileStoreMissingFilesYieldEmptySnapshot(t *testing.T) {
	fs := NewFileStore(t.TempDir(), testPolicies(t))

	snap, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Accounts) != 0 || len(snap.Transactions) != 0 {
		t.Fatalf("expected empty snapshot, got %d accounts and %d transactions", len(snap.Accounts), len(snap.Transactions))
	}
}

func TestFileStoreSkipsMalformedAndDuplicateLines(t *testing.T) {
	dir := t.TempDir()
	accounts := "" +
		"ACC001|savings|CUS001|Ada|30|555-1|Somewhere|regular|1000.00|Active\n" +
		"ACC001|savings|CUS001|Ada|30|555-1|Somewhere|regular|9999.00|Active\n" + // duplicate
		"ACC002|checking|CUS002\n" + // wrong field count
		"ACC003|vault|CUS003|Bob|40|555-2|Elsewhere|regular|100.00|Active\n" + // unknown kind
		"ACC004|checking|CUS004|Eve|28|555-3|Nowhere|premium|not-a-number|Active\n" // bad balance
	transactions := "" +
		"TXN001|ACC001|DEPOSIT|100.00|1100.00|10-03-2025 02:30 PM\n" +
		"TXN001|ACC001|DEPOSIT|999.00|9999.00|10-03-2025 02:31 PM\n" + // duplicate
		"TXN002|ACC001|REVERSAL|1.00|1.00|10-03-2025 02:32 PM\n" + // unknown type
		"TXN003|ACC001|WITHDRAWAL|50.00|1050.00|yesterday at noon\n" // bad timestamp
	if err := os.WriteFile(filepath.Join(dir, "accounts.txt"), []byte(accounts), 0o644); err != nil {
		t.Fatalf("write accounts fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "transactions.txt"), []byte(transactions), 0o644); err != nil {
		t.Fatalf("write transactions fixture: %v", err)
	}

	fs := NewFileStore(dir, testPolicies(t))
	fixedNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	fs.now = func() time.Time { return fixedNow }

	snap, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(snap.Accounts) != 1 {
		t.Fatalf("loaded %d accounts, want 1", len(snap.Accounts))
	}
	if !snap.Accounts[0].Balance().Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("kept the duplicate, balance = %s", snap.Accounts[0].Balance())
	}

	if len(snap.Transactions) != 2 {
		t.Fatalf("loaded %d transactions, want 2", len(snap.Transactions))
	}
	if !snap.Transactions[0].Amount.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("kept the duplicate, amount = %s", snap.Transactions[0].Amount)
	}
	if !snap.Transactions[1].Timestamp.Equal(fixedNow) {
		t.Fatalf("bad timestamp not normalized: %s", snap.Transactions[1].Timestamp)
	}
}

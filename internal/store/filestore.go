/**
 * @description
 * This file implements the flat-file SnapshotStore. State is persisted as two
 * pipe-delimited text files under a data directory:
 *
 *   accounts.txt      number|kind|customerID|name|age|contact|address|tier|balance|status
 *   transactions.txt  id|account|type|amount|balanceAfter|timestamp
 *
 * Loading is forgiving: a missing file yields an empty snapshot, malformed or
 * duplicate lines are skipped with a warning, and an unparsable timestamp is
 * normalized to the current time. Saving writes to a temp file and renames it
 * into place so a crash mid-save never truncates the previous snapshot.
 */

package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
)

const (
	accountsFile     = "accounts.txt"
	transactionsFile = "transactions.txt"
)

// FileStore persists snapshots as pipe-delimited text files.
type FileStore struct {
	dir      string
	policies ledger.PolicySet
	now      func() time.Time
}

// NewFileStore creates a FileStore rooted at dir. The policy set is needed to
// rebuild account withdrawal rules, which are configuration and not persisted.
func NewFileStore(dir string, policies ledger.PolicySet) *FileStore {
	return &FileStore{dir: dir, policies: policies, now: time.Now}
}

// Save writes the snapshot to disk.
func (fsr *FileStore) Save(_ context.Context, snap Snapshot) error {
	if err := os.MkdirAll(fsr.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var accounts strings.Builder
	for _, a := range snap.Accounts {
		c := a.Customer()
		fmt.Fprintf(&accounts, "%s|%s|%s|%s|%d|%s|%s|%s|%s|%s\n",
			a.Number(), a.Kind(), c.ID, c.Name, c.Age, c.Contact, c.Address, c.Tier,
			a.Balance().StringFixed(2), a.Status())
	}
	if err := fsr.writeFile(accountsFile, accounts.String()); err != nil {
		return err
	}

	var transactions strings.Builder
	for _, tx := range snap.Transactions {
		fmt.Fprintf(&transactions, "%s|%s|%s|%s|%s|%s\n",
			tx.ID, tx.AccountNumber, tx.Type,
			tx.Amount.StringFixed(2), tx.BalanceAfter.StringFixed(2),
			tx.Timestamp.Format(domain.TimestampLayout))
	}
	if err := fsr.writeFile(transactionsFile, transactions.String()); err != nil {
		return err
	}

	log.Printf("level=info component=store msg=\"snapshot saved\" dir=%s accounts=%d transactions=%d",
		fsr.dir, len(snap.Accounts), len(snap.Transactions))
	return nil
}

// Load reads the last saved snapshot from disk.
func (fsr *FileStore) Load(_ context.Context) (Snapshot, error) {
	accounts, err := fsr.loadAccounts()
	if err != nil {
		return Snapshot{}, err
	}
	transactions, err := fsr.loadTransactions()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Accounts: accounts, Transactions: transactions}, nil
}

func (fsr *FileStore) writeFile(name, content string) error {
	path := filepath.Join(fsr.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (fsr *FileStore) loadAccounts() ([]*ledger.Account, error) {
	lines, err := fsr.readLines(accountsFile)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []*ledger.Account
	for i, line := range lines {
		fields := strings.Split(line, "|")
		if len(fields) != 10 {
			log.Printf("level=warn component=store msg=\"skipping malformed account line\" file=%s line=%d", accountsFile, i+1)
			continue
		}
		number := fields[0]
		if seen[number] {
			log.Printf("level=warn component=store msg=\"skipping duplicate account\" account=%s line=%d", number, i+1)
			continue
		}
		kind, ok := ledger.ParseAccountKind(fields[1])
		if !ok {
			log.Printf("level=warn component=store msg=\"skipping account with unknown kind\" account=%s kind=%s", number, fields[1])
			continue
		}
		tier, ok := domain.ParseCustomerTier(fields[7])
		if !ok {
			log.Printf("level=warn component=store msg=\"skipping account with unknown tier\" account=%s tier=%s", number, fields[7])
			continue
		}
		age, err := strconv.Atoi(fields[4])
		if err != nil {
			log.Printf("level=warn component=store msg=\"skipping account with bad age\" account=%s age=%s", number, fields[4])
			continue
		}
		balance, err := decimal.NewFromString(fields[8])
		if err != nil {
			log.Printf("level=warn component=store msg=\"skipping account with bad balance\" account=%s balance=%s", number, fields[8])
			continue
		}

		customer := &domain.Customer{
			ID:      fields[2],
			Name:    fields[3],
			Age:     age,
			Contact: fields[5],
			Address: fields[6],
			Tier:    tier,
		}
		seen[number] = true
		accounts = append(accounts, ledger.RestoreAccount(number, kind, customer, balance, fields[9], fsr.policies.For(kind)))
	}
	return accounts, nil
}

func (fsr *FileStore) loadTransactions() ([]*domain.Transaction, error) {
	lines, err := fsr.readLines(transactionsFile)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var transactions []*domain.Transaction
	for i, line := range lines {
		fields := strings.Split(line, "|")
		if len(fields) != 6 {
			log.Printf("level=warn component=store msg=\"skipping malformed transaction line\" file=%s line=%d", transactionsFile, i+1)
			continue
		}
		id := fields[0]
		if seen[id] {
			log.Printf("level=warn component=store msg=\"skipping duplicate transaction\" transaction=%s line=%d", id, i+1)
			continue
		}
		typ, ok := domain.ParseTransactionType(fields[2])
		if !ok {
			log.Printf("level=warn component=store msg=\"skipping transaction with unknown type\" transaction=%s type=%s", id, fields[2])
			continue
		}
		amount, err := decimal.NewFromString(fields[3])
		if err != nil {
			log.Printf("level=warn component=store msg=\"skipping transaction with bad amount\" transaction=%s amount=%s", id, fields[3])
			continue
		}
		balanceAfter, err := decimal.NewFromString(fields[4])
		if err != nil {
			log.Printf("level=warn component=store msg=\"skipping transaction with bad balance\" transaction=%s balance=%s", id, fields[4])
			continue
		}
		ts, err := time.ParseInLocation(domain.TimestampLayout, fields[5], time.Local)
		if err != nil {
			log.Printf("level=warn component=store msg=\"normalizing unparsable timestamp\" transaction=%s value=%q", id, fields[5])
			ts = fsr.now()
		}

		seen[id] = true
		transactions = append(transactions, &domain.Transaction{
			ID:            id,
			AccountNumber: fields[1],
			Type:          typ,
			Amount:        amount,
			BalanceAfter:  balanceAfter,
			Timestamp:     ts,
		})
	}
	return transactions, nil
}

func (fsr *FileStore) readLines(name string) ([]string, error) {
	f, err := os.Open(filepath.Join(fsr.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return lines, nil
}

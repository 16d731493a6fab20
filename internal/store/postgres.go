/**
 * @description
 * This file implements the Postgres-backed SnapshotStore. Monetary values are
 * stored as TEXT and round-tripped through decimal strings so no precision is
 * lost. Save replaces the previous snapshot wholesale inside one database
 * transaction.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: Connection pooling.
 */

package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS ledger_accounts (
	number        TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	customer_id   TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	age           INT  NOT NULL,
	contact       TEXT NOT NULL,
	address       TEXT NOT NULL,
	tier          TEXT NOT NULL,
	balance       TEXT NOT NULL,
	status        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ledger_transactions (
	id             TEXT PRIMARY KEY,
	account_number TEXT NOT NULL,
	type           TEXT NOT NULL,
	amount         TEXT NOT NULL,
	balance_after  TEXT NOT NULL,
	posted_at      TIMESTAMPTZ NOT NULL,
	seq            BIGSERIAL
);`

// PostgresStore persists snapshots in Postgres.
type PostgresStore struct {
	pool     *pgxpool.Pool
	policies ledger.PolicySet
}

// NewPostgresStore connects to the database, verifies the connection, and
// ensures the snapshot tables exist.
func NewPostgresStore(ctx context.Context, databaseURL string, policies ledger.PolicySet) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	log.Printf("level=info component=store msg=\"postgres snapshot store ready\"")
	return &PostgresStore{pool: pool, policies: policies}, nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() { p.pool.Close() }

// Save replaces the stored snapshot.
func (p *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE ledger_accounts, ledger_transactions`); err != nil {
		return fmt.Errorf("clear previous snapshot: %w", err)
	}
	for _, a := range snap.Accounts {
		c := a.Customer()
		_, err := tx.Exec(ctx,
			`INSERT INTO ledger_accounts (number, kind, customer_id, customer_name, age, contact, address, tier, balance, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			a.Number(), string(a.Kind()), c.ID, c.Name, c.Age, c.Contact, c.Address, string(c.Tier),
			a.Balance().String(), a.Status())
		if err != nil {
			return fmt.Errorf("insert account %s: %w", a.Number(), err)
		}
	}
	for _, t := range snap.Transactions {
		_, err := tx.Exec(ctx,
			`INSERT INTO ledger_transactions (id, account_number, type, amount, balance_after, posted_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, t.AccountNumber, string(t.Type), t.Amount.String(), t.BalanceAfter.String(), t.Timestamp)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot save: %w", err)
	}
	log.Printf("level=info component=store msg=\"snapshot saved\" backend=postgres accounts=%d transactions=%d",
		len(snap.Accounts), len(snap.Transactions))
	return nil
}

// Load reads the stored snapshot.
func (p *PostgresStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := p.pool.Query(ctx,
		`SELECT number, kind, customer_id, customer_name, age, contact, address, tier, balance, status
		 FROM ledger_accounts ORDER BY number`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			number, kindRaw, tierRaw, balanceRaw, status string
			customer                                     domain.Customer
		)
		if err := rows.Scan(&number, &kindRaw, &customer.ID, &customer.Name, &customer.Age,
			&customer.Contact, &customer.Address, &tierRaw, &balanceRaw, &status); err != nil {
			return Snapshot{}, fmt.Errorf("scan account: %w", err)
		}
		kind, ok := ledger.ParseAccountKind(kindRaw)
		if !ok {
			log.Printf("level=warn component=store msg=\"skipping account with unknown kind\" account=%s kind=%s", number, kindRaw)
			continue
		}
		tier, ok := domain.ParseCustomerTier(tierRaw)
		if !ok {
			log.Printf("level=warn component=store msg=\"skipping account with unknown tier\" account=%s tier=%s", number, tierRaw)
			continue
		}
		customer.Tier = tier
		balance, err := decimal.NewFromString(balanceRaw)
		if err != nil {
			log.Printf("level=warn component=store msg=\"skipping account with bad balance\" account=%s balance=%s", number, balanceRaw)
			continue
		}
		c := customer
		snap.Accounts = append(snap.Accounts, ledger.RestoreAccount(number, kind, &c, balance, status, p.policies.For(kind)))
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate accounts: %w", err)
	}

	txRows, err := p.pool.Query(ctx,
		`SELECT id, account_number, type, amount, balance_after, posted_at
		 FROM ledger_transactions ORDER BY seq`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var (
			tx                                 domain.Transaction
			typRaw, amountRaw, balanceAfterRaw string
		)
		if err := txRows.Scan(&tx.ID, &tx.AccountNumber, &typRaw, &amountRaw, &balanceAfterRaw, &tx.Timestamp); err != nil {
			return Snapshot{}, fmt.Errorf("scan transaction: %w", err)
		}
		typ, ok := domain.ParseTransactionType(typRaw)
		if !ok {
			log.Printf("level=warn component=store msg=\"skipping transaction with unknown type\" transaction=%s type=%s", tx.ID, typRaw)
			continue
		}
		tx.Type = typ
		if tx.Amount, err = decimal.NewFromString(amountRaw); err != nil {
			log.Printf("level=warn component=store msg=\"skipping transaction with bad amount\" transaction=%s amount=%s", tx.ID, amountRaw)
			continue
		}
		if tx.BalanceAfter, err = decimal.NewFromString(balanceAfterRaw); err != nil {
			log.Printf("level=warn component=store msg=\"skipping transaction with bad balance\" transaction=%s balance=%s", tx.ID, balanceAfterRaw)
			continue
		}
		t := tx
		snap.Transactions = append(snap.Transactions, &t)
	}
	if err := txRows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate transactions: %w", err)
	}
	return snap, nil
}

/**
 * @description
 * This file defines the persistence contract for the ledger-service. The
 * service runs fully in memory; a SnapshotStore persists the whole state on
 * shutdown and restores it on startup.
 */

package store

import (
	"context"

	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
)

// Snapshot is the full persisted state of the service.
type Snapshot struct {
	Accounts     []*ledger.Account
	Transactions []*domain.Transaction
}

// SnapshotStore saves and loads the full service state.
type SnapshotStore interface {
	// Save persists a snapshot, replacing any previous one.
	Save(ctx context.Context, snap Snapshot) error
	// Load reads the last saved snapshot. A store with no prior snapshot
	// returns an empty one, not an error.
	Load(ctx context.Context) (Snapshot, error)
}

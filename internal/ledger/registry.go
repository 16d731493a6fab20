/**
 * @description
 * This file implements the account registry: a concurrent key-value store of
 * accounts keyed by account number. Registry operations never mutate balances,
 * so they take no lock ordering with the ledger's per-account critical
 * sections beyond per-entry atomicity.
 */

package ledger

import (
	"sort"
	"sync"
)

// Registry is a concurrent map of accounts by account number.
type Registry struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{accounts: make(map[string]*Account)}
}

// Add stores an account. Returns false for nil accounts or empty numbers.
func (r *Registry) Add(a *Account) bool {
	if a == nil || a.Number() == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.Number()] = a
	return true
}

// Get looks up an account by number.
func (r *Registry) Get(number string) (*Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[number]
	return a, ok
}

// Exists reports whether an account number is registered.
func (r *Registry) Exists(number string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.accounts[number]
	return ok
}

// Remove deletes an account from the registry. The account object itself stays
// valid while ledger history references it.
func (r *Registry) Remove(number string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.accounts[number]
	delete(r.accounts, number)
	return ok
}

// All returns a snapshot of every account, sorted by account number.
func (r *Registry) All() []*Account {
	r.mu.RLock()
	out := make([]*Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out
}

// ByKind returns a snapshot of the accounts of one variant, sorted by number.
func (r *Registry) ByKind(kind AccountKind) []*Account {
	r.mu.RLock()
	out := make([]*Account, 0)
	for _, a := range r.accounts {
		if a.Kind() == kind {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out
}

// Len reports the number of registered accounts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// UpdateCustomerInfo rewrites the customer fields of an account. The update is
// atomic per entry; it does not coordinate with ledger locking because it does
// not touch balances.
func (r *Registry) UpdateCustomerInfo(number, name string, age int, contact, address string) bool {
	a, ok := r.Get(number)
	if !ok {
		return false
	}
	a.UpdateCustomer(name, age, contact, address)
	return true
}

// ReplaceAll swaps the registry contents for a restored set of accounts,
// skipping nil entries and duplicate numbers.
func (r *Registry) ReplaceAll(accounts []*Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = make(map[string]*Account, len(accounts))
	for _, a := range accounts {
		if a == nil || a.Number() == "" {
			continue
		}
		if _, dup := r.accounts[a.Number()]; dup {
			continue
		}
		r.accounts[a.Number()] = a
	}
}

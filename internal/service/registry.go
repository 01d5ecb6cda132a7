package service

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MKhiriev/go-multisig-keeper/internal/quorum"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

// registry holds every known vault keyed by address.
//
// Lock order is always registry.mu, then vaultEntry.mu, then txEntry.mu. The
// one exception is an entry that is not registered yet, which is locked
// before putIfAbsent publishes it.
type registry struct {
	mu     sync.RWMutex
	vaults map[string]*vaultEntry
}

// vaultEntry is the live state of a single vault.
//
// mu guards header, txs and byID. Operations that only touch one
// transaction take mu for reading plus that transaction's lock; operations
// that change the list or the header take mu for writing.
type vaultEntry struct {
	mu     sync.RWMutex
	header models.Vault
	txs    []*txEntry
	byID   map[string]*txEntry

	// dirty is set when a change could not be written through; the next
	// fetch saves every transaction again.
	dirty atomic.Bool
}

// txEntry serializes the mutations of one transaction.
type txEntry struct {
	mu sync.Mutex
	tx models.Transaction
}

func newRegistry() *registry {
	return &registry{vaults: make(map[string]*vaultEntry)}
}

func (r *registry) get(address string) (*vaultEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.vaults[address]
	return entry, ok
}

// putIfAbsent registers entry unless another entry for the same address won
// the race, in which case the registered one is returned.
func (r *registry) putIfAbsent(address string, entry *vaultEntry) *vaultEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.vaults[address]; ok {
		return existing
	}
	r.vaults[address] = entry
	return entry
}

func (r *registry) addresses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	addresses := make([]string, 0, len(r.vaults))
	for address := range r.vaults {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}

// newVaultEntry builds an entry from persisted state. Transactions are taken
// in the order given and renumbered so positions stay dense.
func newVaultEntry(persisted models.Vault) *vaultEntry {
	entry := &vaultEntry{
		header: persisted.Header(),
		txs:    make([]*txEntry, 0, len(persisted.Transactions)),
		byID:   make(map[string]*txEntry, len(persisted.Transactions)),
	}
	for _, tx := range persisted.Transactions {
		if tx.ID == "" {
			continue
		}
		if _, ok := entry.byID[tx.ID]; ok {
			continue
		}
		entry.appendLocked(tx.Clone())
	}
	return entry
}

// appendLocked adds tx at the end of the list. mu must be held for writing.
func (e *vaultEntry) appendLocked(tx models.Transaction) *txEntry {
	tx.Position = len(e.txs)
	te := &txEntry{tx: tx}
	e.txs = append(e.txs, te)
	e.byID[tx.ID] = te
	return te
}

// mergeLocked applies a validated ledger snapshot and returns the
// transactions whose state changed. mu must be held for writing.
//
// The ledger owns the header. Transactions only move forward: approvals are
// OR-ed into the local signer snapshot, a remote terminal status is adopted
// by non-terminal local transactions, and a local terminal transaction is
// never touched.
func (e *vaultEntry) mergeLocked(snapshot models.Vault) []models.Transaction {
	e.header = snapshot.Header()

	changed := make(map[string]struct{})
	for _, remote := range snapshot.Transactions {
		te, ok := e.byID[remote.ID]
		if !ok {
			e.appendLocked(remote.Clone())
			changed[remote.ID] = struct{}{}
			continue
		}

		te.mu.Lock()
		if mergeTransaction(&te.tx, remote) {
			changed[remote.ID] = struct{}{}
		}
		te.mu.Unlock()
	}

	// The threshold comes from the ledger, so readiness labels follow it in
	// both directions. Approvals and terminal states are never undone.
	var result []models.Transaction
	for _, te := range e.txs {
		te.mu.Lock()
		status := quorum.DeriveStatus(te.tx.Status, te.tx.Signers, e.header.Threshold)
		if status != te.tx.Status {
			te.tx.Status = status
			changed[te.tx.ID] = struct{}{}
		}
		if _, ok := changed[te.tx.ID]; ok {
			result = append(result, te.tx.Clone())
		}
		te.mu.Unlock()
	}

	return result
}

// mergeTransaction folds remote into local and reports whether local
// changed. Membership of the local signer snapshot never changes.
func mergeTransaction(local *models.Transaction, remote models.Transaction) bool {
	if local.Status.IsTerminal() {
		return false
	}

	changed := false
	for _, rs := range remote.Signers {
		if !rs.HasSigned {
			continue
		}
		if i := local.SignerIndex(rs.Address); i >= 0 && !local.Signers[i].HasSigned {
			local.Signers[i].HasSigned = true
			changed = true
		}
	}

	if remote.Status.IsTerminal() {
		local.Status = remote.Status
		local.ExecutedRef = remote.ExecutedRef
		local.FailureReason = remote.FailureReason
		changed = true
	}

	return changed
}

// snapshotLocked returns a deep copy of the vault. mu must be held.
func (e *vaultEntry) snapshotLocked() models.Vault {
	vault := e.header.Clone()
	vault.Transactions = make([]models.Transaction, 0, len(e.txs))
	for _, te := range e.txs {
		te.mu.Lock()
		vault.Transactions = append(vault.Transactions, te.tx.Clone())
		te.mu.Unlock()
	}
	return vault
}

// transactionsLocked returns copies of every transaction. mu must be held.
func (e *vaultEntry) transactionsLocked() []models.Transaction {
	result := make([]models.Transaction, 0, len(e.txs))
	for _, te := range e.txs {
		te.mu.Lock()
		result = append(result, te.tx.Clone())
		te.mu.Unlock()
	}
	return result
}

// snapshot returns a deep copy of the vault.
func (e *vaultEntry) snapshot() models.Vault {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// transaction returns a copy of the transaction with the given id.
func (e *vaultEntry) transaction(id string) (models.Transaction, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	te, ok := e.byID[id]
	if !ok {
		return models.Transaction{}, false
	}
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.tx.Clone(), true
}

// transactionWithThreshold returns a copy of the transaction together with
// the vault threshold read under the same lock.
func (e *vaultEntry) transactionWithThreshold(id string) (models.Transaction, int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	te, ok := e.byID[id]
	if !ok {
		return models.Transaction{}, 0, false
	}
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.tx.Clone(), e.header.Threshold, true
}

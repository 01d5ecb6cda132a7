package store

import (
	"context"
	"sort"
	"sync"

	"github.com/MKhiriev/go-multisig-keeper/models"
)

// memoryVault is the stored form of a vault: its header plus transactions
// keyed by id.
type memoryVault struct {
	header       models.Vault
	transactions map[string]models.Transaction
}

// memoryStorage keeps vault state in process memory. It is the default
// backend and the one used by tests.
type memoryStorage struct {
	mu     sync.RWMutex
	vaults map[string]*memoryVault
}

// NewMemoryStorage returns an empty in-memory [VaultStorage].
func NewMemoryStorage() VaultStorage {
	return &memoryStorage{vaults: make(map[string]*memoryVault)}
}

func (m *memoryStorage) LoadVault(ctx context.Context, address string) (models.Vault, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.vaults[address]
	if !ok {
		return models.Vault{}, ErrVaultNotFound
	}

	vault := stored.header.Header()
	vault.Transactions = make([]models.Transaction, 0, len(stored.transactions))
	for _, tx := range stored.transactions {
		vault.Transactions = append(vault.Transactions, tx.Clone())
	}
	sort.SliceStable(vault.Transactions, func(i, j int) bool {
		return vault.Transactions[i].Position < vault.Transactions[j].Position
	})

	return vault, nil
}

func (m *memoryStorage) SaveVault(ctx context.Context, vault models.Vault) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.vaults[vault.Address]
	if !ok {
		stored = &memoryVault{transactions: make(map[string]models.Transaction)}
		m.vaults[vault.Address] = stored
	}
	stored.header = vault.Header()

	return nil
}

func (m *memoryStorage) SaveTransaction(ctx context.Context, vaultAddress string, tx models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.vaults[vaultAddress]
	if !ok {
		stored = &memoryVault{
			header:       models.Vault{Address: vaultAddress},
			transactions: make(map[string]models.Transaction),
		}
		m.vaults[vaultAddress] = stored
	}
	stored.transactions[tx.ID] = tx.Clone()

	return nil
}

func (m *memoryStorage) Close() error {
	return nil
}

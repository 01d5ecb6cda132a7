package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-multisig-keeper/internal/adapter"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/quorum"
	"github.com/MKhiriev/go-multisig-keeper/internal/store"
	"github.com/MKhiriev/go-multisig-keeper/internal/validators"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

// vaultService is the concrete implementation of VaultService.
type vaultService struct {
	// registry holds the live state of every fetched vault.
	registry *registry

	// ledger is the authoritative source of vault snapshots.
	ledger adapter.LedgerAdapter

	// storage receives every accepted change (write-through).
	storage store.VaultStorage

	// addresses checks the shape of the requested vault address.
	addresses *validators.AddressValidator

	// snapshots validates the signer set and threshold of ledger snapshots.
	snapshots validators.Validator

	logger *logger.Logger
}

// NewVaultService constructs the vault registry on top of the given ledger
// and storage.
func NewVaultService(ledger adapter.LedgerAdapter, storage store.VaultStorage, addresses *validators.AddressValidator, logger *logger.Logger) VaultService {
	return newVaultService(newRegistry(), ledger, storage, addresses, logger)
}

func newVaultService(r *registry, ledger adapter.LedgerAdapter, storage store.VaultStorage, addresses *validators.AddressValidator, logger *logger.Logger) *vaultService {
	return &vaultService{
		registry:  r,
		ledger:    ledger,
		storage:   storage,
		addresses: addresses,
		snapshots: validators.NewVaultValidator(addresses),
		logger:    logger.WithComponent("vault-service"),
	}
}

// Fetch implements VaultService.
//
// Returns:
//   - ErrInvalidAddress if address is empty or malformed;
//   - ErrVaultNotFound (wraps ErrNotFound) if the ledger does not know the vault;
//   - ErrInvalidVaultSnapshot if the ledger reports a broken threshold;
//   - ErrLedgerUnavailable or ErrStorage for collaborator failures.
func (s *vaultService) Fetch(ctx context.Context, address string) (models.Vault, error) {
	entry, err := s.fetch(ctx, address)
	if err != nil {
		return models.Vault{}, err
	}
	return entry.snapshot(), nil
}

// Load implements VaultService.
func (s *vaultService) Load(ctx context.Context, address string) (models.Vault, error) {
	entry, err := s.entry(ctx, address)
	if err != nil {
		return models.Vault{}, err
	}
	return entry.snapshot(), nil
}

// Refresh implements VaultService.
func (s *vaultService) Refresh(ctx context.Context) error {
	var errs []error
	for _, address := range s.registry.addresses() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.fetch(ctx, address); err != nil {
			s.logger.Err(err).Str("vault", address).Msg("vault refresh failed")
			errs = append(errs, fmt.Errorf("refresh %s: %w", address, err))
		}
	}
	return errors.Join(errs...)
}

// Addresses implements VaultService.
func (s *vaultService) Addresses() []string {
	return s.registry.addresses()
}

// entry returns the registered entry for address, fetching the vault first
// when it is not registered. Used by mutators.
func (s *vaultService) entry(ctx context.Context, address string) (*vaultEntry, error) {
	if entry, ok := s.registry.get(address); ok {
		return entry, nil
	}
	return s.fetch(ctx, address)
}

// lookup returns the registered entry without any I/O. Used by queries.
func (s *vaultService) lookup(address string) (*vaultEntry, bool) {
	return s.registry.get(address)
}

func (s *vaultService) fetch(ctx context.Context, address string) (*vaultEntry, error) {
	log := logger.FromContext(ctx)

	if err := s.addresses.ValidateAddress(address); err != nil {
		log.Err(err).Str("vault", address).Msg("invalid vault address")
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	snapshot, err := s.ledger.FetchVault(ctx, address)
	if err != nil {
		if errors.Is(err, adapter.ErrVaultNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, address)
		}
		log.Err(err).Str("vault", address).Msg("ledger fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}

	snapshot, err = s.normalizeSnapshot(ctx, address, snapshot)
	if err != nil {
		log.Err(err).Str("vault", address).Msg("ledger returned an invalid vault")
		return nil, err
	}

	entry, err := s.lockEntry(ctx, address)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	changed := entry.mergeLocked(snapshot)
	if entry.dirty.Load() {
		changed = entry.transactionsLocked()
	}

	if err = s.persistLocked(ctx, entry, changed); err != nil {
		entry.dirty.Store(true)
		log.Err(err).Str("vault", address).Msg("saving merged vault failed")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	entry.dirty.Store(false)

	log.Debug().Str("vault", address).Int("changed", len(changed)).Msg("vault merged")
	return entry, nil
}

// lockEntry returns the entry for address with mu held for writing. A new
// entry is locked before it is published so no other goroutine observes it
// without a merged header.
func (s *vaultService) lockEntry(ctx context.Context, address string) (*vaultEntry, error) {
	if entry, ok := s.registry.get(address); ok {
		entry.mu.Lock()
		return entry, nil
	}

	persisted, err := s.storage.LoadVault(ctx, address)
	if err != nil && !errors.Is(err, store.ErrVaultNotFound) {
		logger.FromContext(ctx).Err(err).Str("vault", address).Msg("loading persisted vault failed")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	persisted.Address = address

	// fresh is unreachable until putIfAbsent returns, so holding its lock
	// while taking registry.mu cannot deadlock.
	fresh := newVaultEntry(persisted)
	fresh.mu.Lock()

	entry := s.registry.putIfAbsent(address, fresh)
	if entry != fresh {
		fresh.mu.Unlock()
		entry.mu.Lock()
	}
	return entry, nil
}

func (s *vaultService) persistLocked(ctx context.Context, entry *vaultEntry, changed []models.Transaction) error {
	if err := s.storage.SaveVault(ctx, entry.header); err != nil {
		return err
	}
	for _, tx := range changed {
		if err := s.storage.SaveTransaction(ctx, entry.header.Address, tx); err != nil {
			return err
		}
	}
	return nil
}

// normalizeSnapshot pins the snapshot to address, collapses duplicate signers
// and validates the threshold. Transactions that cannot be represented
// (missing or repeated id, unknown kind, executed without a reference) are
// dropped.
func (s *vaultService) normalizeSnapshot(ctx context.Context, address string, snapshot models.Vault) (models.Vault, error) {
	log := logger.FromContext(ctx)

	snapshot = snapshot.Clone()
	snapshot.Address = address
	snapshot.Signers = uniqueSigners(snapshot.Signers)

	if err := s.snapshots.Validate(ctx, snapshot, validators.FieldSigners, validators.FieldThreshold); err != nil {
		return models.Vault{}, fmt.Errorf("%w: %w", ErrInvalidVaultSnapshot, err)
	}

	txs := make([]models.Transaction, 0, len(snapshot.Transactions))
	seen := make(map[string]struct{}, len(snapshot.Transactions))
	for _, tx := range snapshot.Transactions {
		if _, dup := seen[tx.ID]; dup || tx.ID == "" || !tx.Kind.IsValid() ||
			(tx.Status == models.StatusExecuted && tx.ExecutedRef == "") {
			log.Warn().Str("vault", address).Str("tx_id", tx.ID).Msg("skipping malformed ledger transaction")
			continue
		}
		seen[tx.ID] = struct{}{}

		if tx.Status != models.StatusExecuted {
			tx.ExecutedRef = ""
		}
		tx.CreatedAt = tx.CreatedAt.UTC()
		tx.Status = quorum.DeriveStatus(tx.Status, tx.Signers, snapshot.Threshold)
		txs = append(txs, tx)
	}
	snapshot.Transactions = txs

	return snapshot, nil
}

// uniqueSigners removes repeated addresses, keeping the first occurrence.
func uniqueSigners(signers []string) []string {
	seen := make(map[string]struct{}, len(signers))
	result := make([]string, 0, len(signers))
	for _, s := range signers {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store persists vault headers and their transactions.
//
// [VaultStorage] is a write-through sink: the service layer keeps the live
// state in memory and saves every accepted change. Backends are selected by
// the storage DSN: memory, PostgreSQL, SQLite or Badger.
package store

import (
	"context"

	"github.com/MKhiriev/go-multisig-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/vault_storage_mock.go -package=mock

// VaultStorage persists vault state.
type VaultStorage interface {
	// LoadVault returns the persisted vault header together with its
	// transactions in proposal order. Returns [ErrVaultNotFound] when the
	// vault was never saved.
	LoadVault(ctx context.Context, address string) (models.Vault, error)

	// SaveVault upserts the vault header (signers, threshold, balance).
	// vault.Transactions is ignored.
	SaveVault(ctx context.Context, vault models.Vault) error

	// SaveTransaction upserts tx as a transaction of the vault at
	// vaultAddress, keyed by tx.ID.
	SaveTransaction(ctx context.Context, vaultAddress string, tx models.Transaction) error

	// Close releases the resources held by the backend.
	Close() error
}

// ErrorClassificator decides whether a failed database operation may be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

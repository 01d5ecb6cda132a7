// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the boundary to the authoritative ledger that owns
// vault state.
//
// The primary abstraction is [LedgerAdapter], which decouples the service
// layer from the protocol used to reach the ledger. The package ships a
// deterministic placeholder implementation ([NewPlaceholderLedger]) and an
// HTTP gateway client ([NewHTTPLedgerAdapter]); [NewLedgerAdapter] picks one
// from configuration.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrVaultNotFound] for 404).
package adapter

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-multisig-keeper/internal/config"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/ledger_adapter_mock.go -package=mock

// LedgerAdapter reads vault snapshots from the ledger and broadcasts
// transactions that reached their approval threshold.
type LedgerAdapter interface {
	// FetchVault returns the ledger's snapshot of the vault at address,
	// including the transactions the ledger knows about. Returns
	// [ErrVaultNotFound] (wrapped) when the ledger has no such vault.
	FetchVault(ctx context.Context, address string) (models.Vault, error)

	// Broadcast submits tx on behalf of the vault and returns the on-chain
	// reference of the resulting transfer. Any error means the ledger did
	// not accept the transfer.
	Broadcast(ctx context.Context, vaultAddress string, tx models.Transaction) (string, error)
}

// NewLedgerAdapter builds the LedgerAdapter selected by cfg.Mode.
func NewLedgerAdapter(cfg config.Adapter, log *logger.Logger) (LedgerAdapter, error) {
	switch cfg.Mode {
	case config.AdapterModePlaceholder, "":
		return NewPlaceholderLedger(cfg.PlaceholderSigners, cfg.PlaceholderThreshold), nil
	case config.AdapterModeHTTP:
		return NewHTTPLedgerAdapter(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported ledger mode %q", cfg.Mode)
	}
}

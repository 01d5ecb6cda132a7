// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// applyDefaults fills zero-valued fields that have a sensible default.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.App.Version == "" {
		cfg.App.Version = defaultVersion
	}
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = defaultTokenIssuer
	}
	if cfg.App.TokenDuration == 0 {
		cfg.App.TokenDuration = defaultTokenDuration
	}
	if cfg.App.AddressFormat == "" {
		cfg.App.AddressFormat = AddressFormatEVM
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Adapter.Mode == "" {
		cfg.Adapter.Mode = AdapterModePlaceholder
	}
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = defaultAdapterRequestTimeout
	}
	if cfg.Workers.RefreshInterval == 0 {
		cfg.Workers.RefreshInterval = defaultRefreshInterval
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Server.HTTPAddress == "" && cfg.Server.GRPCAddress == "" {
		return fmt.Errorf("%w: neither HTTP nor gRPC address is set", ErrInvalidServerConfigs)
	}

	if cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: token sign key is required", ErrInvalidAppConfigs)
	}

	switch cfg.App.AddressFormat {
	case AddressFormatEVM, AddressFormatBech32, AddressFormatOpaque:
	default:
		return fmt.Errorf("%w: unsupported address format %q", ErrInvalidAppConfigs, cfg.App.AddressFormat)
	}

	switch cfg.Adapter.Mode {
	case AdapterModePlaceholder:
		signers := len(cfg.Adapter.PlaceholderSigners)
		threshold := cfg.Adapter.PlaceholderThreshold
		if threshold < 0 || (signers > 0 && threshold > signers) {
			return fmt.Errorf("%w: placeholder threshold %d does not fit %d signers", ErrInvalidAdapterConfigs, threshold, signers)
		}
	case AdapterModeHTTP:
		if cfg.Adapter.LedgerURL == "" {
			return fmt.Errorf("%w: ledger URL is required in http mode", ErrInvalidAdapterConfigs)
		}
	default:
		return fmt.Errorf("%w: unsupported ledger mode %q", ErrInvalidAdapterConfigs, cfg.Adapter.Mode)
	}

	if _, err := StorageKind(cfg.Storage.DB.DSN); err != nil {
		return err
	}

	return nil
}

// Storage backend kinds returned by [StorageKind].
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageBadger   = "badger"
)

// StorageKind resolves the backend selected by dsn.
func StorageKind(dsn string) (string, error) {
	switch {
	case dsn == "" || dsn == StorageMemory:
		return StorageMemory, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return StoragePostgres, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return StorageSQLite, nil
	case strings.HasPrefix(dsn, "badger://"):
		return StorageBadger, nil
	default:
		return "", fmt.Errorf("%w: unsupported DSN scheme", ErrInvalidStorageConfigs)
	}
}

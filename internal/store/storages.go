package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-multisig-keeper/internal/config"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
)

// NewVaultStorage opens the backend selected by cfg.DB.DSN and prepares it
// for use. SQL backends are migrated before they are returned.
func NewVaultStorage(ctx context.Context, cfg config.Storage, log *logger.Logger) (VaultStorage, error) {
	dsn := cfg.DB.DSN

	kind, err := config.StorageKind(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedDSN, err)
	}

	switch kind {
	case config.StorageMemory:
		log.Info().Str("func", "NewVaultStorage").Msg("using in-memory storage")
		return NewMemoryStorage(), nil
	case config.StorageBadger:
		return NewBadgerStorage(strings.TrimPrefix(dsn, "badger://"), log)
	}

	var db *DB
	switch kind {
	case config.StoragePostgres:
		db, err = NewConnectPostgres(ctx, dsn, log)
	case config.StorageSQLite:
		db, err = NewConnectSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"), log)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewVaultStorage").Msg("error applying migrations")
		db.Close()
		return nil, err
	}

	return NewSQLVaultStorage(db), nil
}

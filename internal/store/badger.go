package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/models"
	"github.com/dgraph-io/badger/v4"
)

// Key layout, with the vault address hex encoded:
//
//	vault/<address>                     -> JSON vault header
//	tx/<address>/<position %020d>/<id>  -> JSON transaction
//
// The zero-padded position keeps prefix iteration in proposal order.
const (
	badgerVaultPrefix = "vault/"
	badgerTxPrefix    = "tx/"
)

type badgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage opens (or creates) a Badger database in dir. An empty dir
// opens an in-memory database.
func NewBadgerStorage(dir string, log *logger.Logger) (VaultStorage, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log.WithComponent("badger")})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		log.Err(err).Str("func", "NewBadgerStorage").Str("dir", dir).Msg("error opening badger database")
		return nil, fmt.Errorf("error opening badger database: %w", err)
	}

	return &badgerStorage{db: db}, nil
}

func badgerVaultKey(address string) []byte {
	return []byte(badgerVaultPrefix + hex.EncodeToString([]byte(address)))
}

func badgerTxPrefixFor(address string) []byte {
	return []byte(badgerTxPrefix + hex.EncodeToString([]byte(address)) + "/")
}

func badgerTxKey(address string, tx models.Transaction) []byte {
	return append(badgerTxPrefixFor(address), fmt.Sprintf("%020d/%s", tx.Position, tx.ID)...)
}

func (b *badgerStorage) LoadVault(ctx context.Context, address string) (models.Vault, error) {
	var vault models.Vault

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerVaultKey(address))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrVaultNotFound
		}
		if err != nil {
			return err
		}
		if err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &vault)
		}); err != nil {
			return fmt.Errorf("%w: %w", ErrEncodingValue, err)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerTxPrefixFor(address)
		it := txn.NewIterator(opts)
		defer it.Close()

		vault.Transactions = make([]models.Transaction, 0, 16)
		for it.Rewind(); it.Valid(); it.Next() {
			var tx models.Transaction
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &tx)
			})
			if err != nil {
				return fmt.Errorf("%w: %w", ErrEncodingValue, err)
			}
			vault.Transactions = append(vault.Transactions, tx)
		}
		return nil
	})
	if err != nil {
		return models.Vault{}, err
	}

	return vault, nil
}

func (b *badgerStorage) SaveVault(ctx context.Context, vault models.Vault) error {
	data, err := json.Marshal(vault.Header())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerVaultKey(vault.Address), data)
	})
}

func (b *badgerStorage) SaveTransaction(ctx context.Context, vaultAddress string, tx models.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerTxKey(vaultAddress, tx), data)
	})
}

func (b *badgerStorage) Close() error {
	return b.db.Close()
}

// badgerLogger routes Badger's internal log lines through zerolog.
type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Trace().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

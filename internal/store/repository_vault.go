package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

// sqlVaultStorage is the SQL implementation of [VaultStorage] shared by the
// PostgreSQL and SQLite backends. Queries are built with squirrel using the
// placeholder format of the connection's dialect.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced with
// structured fields (vault, tx_id, classification).
type sqlVaultStorage struct {
	*DB
	now func() time.Time
}

// NewSQLVaultStorage constructs a [VaultStorage] backed by db.
func NewSQLVaultStorage(db *DB) VaultStorage {
	return &sqlVaultStorage{
		DB:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// LoadVault reads the vault header and its transactions ordered by position.
func (s *sqlVaultStorage) LoadVault(ctx context.Context, address string) (models.Vault, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectVaultQuery(s.builder, address)
	if err != nil {
		return models.Vault{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		vault   models.Vault
		signers string
		balance string
	)
	err = s.QueryRowContext(ctx, query, args...).Scan(&vault.Address, &signers, &vault.Threshold, &balance, new(time.Time))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vault{}, ErrVaultNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "sqlVaultStorage.LoadVault").
			Str("vault", address).
			Stringer("classification", s.classify(err)).
			Msg("failed to read vault header")
		return models.Vault{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if err = json.Unmarshal([]byte(signers), &vault.Signers); err != nil {
		return models.Vault{}, fmt.Errorf("%w: signers: %w", ErrEncodingValue, err)
	}
	if vault.Balance, err = strconv.ParseUint(balance, 10, 64); err != nil {
		return models.Vault{}, fmt.Errorf("%w: balance: %w", ErrEncodingValue, err)
	}

	vault.Transactions, err = s.loadTransactions(ctx, address)
	if err != nil {
		return models.Vault{}, err
	}

	return vault, nil
}

func (s *sqlVaultStorage) loadTransactions(ctx context.Context, address string) ([]models.Transaction, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectTransactionsQuery(s.builder, address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "sqlVaultStorage.loadTransactions").
			Str("vault", address).
			Stringer("classification", s.classify(err)).
			Msg("failed to execute query for vault transactions")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0, 16)

	for rows.Next() {
		var (
			tx      models.Transaction
			kind    string
			amount  string
			status  string
			signers string
		)

		scanErr := rows.Scan(
			&tx.ID,
			&tx.Position,
			&kind,
			&amount,
			&tx.Recipient,
			&tx.TokenContract,
			&status,
			&signers,
			&tx.CreatedAt,
			&tx.ExecutedRef,
			&tx.FailureReason,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "sqlVaultStorage.loadTransactions").
				Str("vault", address).
				Msg("failed to scan transaction row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		tx.Kind = models.TransactionKind(kind)
		tx.Status = models.TransactionStatus(status)
		tx.CreatedAt = tx.CreatedAt.UTC()
		if tx.Amount, err = strconv.ParseUint(amount, 10, 64); err != nil {
			return nil, fmt.Errorf("%w: amount of %s: %w", ErrEncodingValue, tx.ID, err)
		}
		if err = json.Unmarshal([]byte(signers), &tx.Signers); err != nil {
			return nil, fmt.Errorf("%w: signers of %s: %w", ErrEncodingValue, tx.ID, err)
		}

		transactions = append(transactions, tx)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "sqlVaultStorage.loadTransactions").
			Str("vault", address).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return transactions, nil
}

// SaveVault upserts the vault header.
func (s *sqlVaultStorage) SaveVault(ctx context.Context, vault models.Vault) error {
	query, args, err := buildUpsertVaultQuery(s.builder, vault, s.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return s.execUpsert(ctx, "sqlVaultStorage.SaveVault", vault.Address, "", query, args, ErrVaultNotSaved)
}

// SaveTransaction upserts a single transaction of the vault.
func (s *sqlVaultStorage) SaveTransaction(ctx context.Context, vaultAddress string, tx models.Transaction) error {
	query, args, err := buildUpsertTransactionQuery(s.builder, vaultAddress, tx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return s.execUpsert(ctx, "sqlVaultStorage.SaveTransaction", vaultAddress, tx.ID, query, args, ErrTransactionNotSaved)
}

func (s *sqlVaultStorage) execUpsert(ctx context.Context, fn, vaultAddress, txID, query string, args []any, notSaved error) error {
	log := logger.FromContext(ctx)

	result, err := s.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", fn).
			Str("vault", vaultAddress).
			Str("tx_id", txID).
			Stringer("classification", s.classify(err)).
			Msg("failed to execute upsert")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return notSaved
	}

	return nil
}

func (s *sqlVaultStorage) Close() error {
	return s.DB.Close()
}

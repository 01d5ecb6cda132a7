package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectVaultSQL        = `SELECT address, signers, threshold, balance, updated_at FROM vaults WHERE address = \$1`
	selectTransactionsSQL = `SELECT id, position, kind, amount, recipient, token_contract, status, signers, created_at, executed_ref, failure_reason FROM vault_transactions WHERE vault_address = \$1 ORDER BY position ASC`
	upsertVaultSQL        = `INSERT INTO vaults .* ON CONFLICT \(address\) DO UPDATE SET`
	upsertTransactionSQL  = `INSERT INTO vault_transactions .* ON CONFLICT \(vault_address, id\) DO UPDATE SET`
)

var transactionRowColumns = []string{
	"id", "position", "kind", "amount", "recipient", "token_contract",
	"status", "signers", "created_at", "executed_ref", "failure_reason",
}

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newTestRepo создаёт sqlVaultStorage поверх sqlmock с плейсхолдерами PostgreSQL
func newTestRepo(t *testing.T, db *sql.DB) *sqlVaultStorage {
	t.Helper()
	s := NewSQLVaultStorage(newPostgresDB(db, logger.Nop())).(*sqlVaultStorage)
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func TestSQLVaultStorage_LoadVault(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
		check   func(t *testing.T, v models.Vault)
	}{
		{
			name: "success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectVaultSQL).
					WithArgs("V").
					WillReturnRows(sqlmock.NewRows(vaultColumns).
						AddRow("V", `["A","B","C"]`, 2, "18446744073709551615", created))
				mock.ExpectQuery(selectTransactionsSQL).
					WithArgs("V").
					WillReturnRows(sqlmock.NewRows(transactionRowColumns).
						AddRow("tx-1", 0, "native-transfer", "10", "R", "", "signed",
							`[{"address":"A","has_signed":true},{"address":"B","has_signed":false}]`,
							created, "", "").
						AddRow("tx-2", 1, "token-transfer", "5", "R", "T", "failed", `[]`, created, "", "rejected"))
			},
			check: func(t *testing.T, v models.Vault) {
				assert.Equal(t, []string{"A", "B", "C"}, v.Signers)
				assert.Equal(t, 2, v.Threshold)
				assert.Equal(t, uint64(18446744073709551615), v.Balance)
				require.Len(t, v.Transactions, 2)
				assert.Equal(t, models.StatusSigned, v.Transactions[0].Status)
				assert.True(t, v.Transactions[0].Signers[0].HasSigned)
				assert.Equal(t, uint64(10), v.Transactions[0].Amount)
				assert.Equal(t, models.TokenTransfer, v.Transactions[1].Kind)
				assert.Equal(t, "rejected", v.Transactions[1].FailureReason)
			},
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectVaultSQL).WithArgs("V").WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrVaultNotFound,
		},
		{
			name: "header query fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectVaultSQL).WithArgs("V").WillReturnError(errors.New("connection reset"))
			},
			wantErr: ErrScanningRow,
		},
		{
			name: "corrupt signers",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectVaultSQL).
					WithArgs("V").
					WillReturnRows(sqlmock.NewRows(vaultColumns).AddRow("V", `not json`, 2, "1", created))
			},
			wantErr: ErrEncodingValue,
		},
		{
			name: "transactions query fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectVaultSQL).
					WithArgs("V").
					WillReturnRows(sqlmock.NewRows(vaultColumns).AddRow("V", `["A"]`, 1, "1", created))
				mock.ExpectQuery(selectTransactionsSQL).WithArgs("V").WillReturnError(errors.New("timeout"))
			},
			wantErr: ErrExecutingQuery,
		},
		{
			name: "row iteration error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectVaultSQL).
					WithArgs("V").
					WillReturnRows(sqlmock.NewRows(vaultColumns).AddRow("V", `["A"]`, 1, "1", created))
				mock.ExpectQuery(selectTransactionsSQL).
					WithArgs("V").
					WillReturnRows(sqlmock.NewRows(transactionRowColumns).
						AddRow("tx-1", 0, "native-transfer", "10", "R", "", "pending", `[]`, created, "", "").
						RowError(0, errors.New("broken row")))
			},
			wantErr: ErrScanningRows,
		},
		{
			name: "bad amount",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectVaultSQL).
					WithArgs("V").
					WillReturnRows(sqlmock.NewRows(vaultColumns).AddRow("V", `["A"]`, 1, "1", created))
				mock.ExpectQuery(selectTransactionsSQL).
					WithArgs("V").
					WillReturnRows(sqlmock.NewRows(transactionRowColumns).
						AddRow("tx-1", 0, "native-transfer", "-1", "R", "", "pending", `[]`, created, "", ""))
			},
			wantErr: ErrEncodingValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			tt.setup(mock)

			got, err := newTestRepo(t, db).LoadVault(testContext(), "V")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				tt.check(t, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLVaultStorage_SaveVault(t *testing.T) {
	vault := models.Vault{Address: "V", Signers: []string{"A", "B"}, Threshold: 2, Balance: 42}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(upsertVaultSQL).
					WithArgs("V", `["A","B"]`, 2, "42", now).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "exec error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(upsertVaultSQL).WillReturnError(errors.New("deadlock"))
			},
			wantErr: ErrExecutingStatement,
		},
		{
			name: "no rows affected",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(upsertVaultSQL).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrVaultNotSaved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			tt.setup(mock)

			err := newTestRepo(t, db).SaveVault(testContext(), vault)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLVaultStorage_SaveTransaction(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tx := models.Transaction{
		ID:          "tx-1",
		Position:    3,
		Kind:        models.NativeTransfer,
		Amount:      10,
		Recipient:   "R",
		Status:      models.StatusExecuted,
		Signers:     []models.Signer{{Address: "A", HasSigned: true}},
		CreatedAt:   created,
		ExecutedRef: "0xref",
	}

	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectExec(upsertTransactionSQL).
			WithArgs("V", "tx-1", 3, "native-transfer", "10", "R", "", "executed",
				`[{"address":"A","has_signed":true}]`, created, "0xref", "").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, newTestRepo(t, db).SaveTransaction(testContext(), "V", tx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows affected", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectExec(upsertTransactionSQL).WillReturnResult(sqlmock.NewResult(0, 0))

		err := newTestRepo(t, db).SaveTransaction(testContext(), "V", tx)
		assert.ErrorIs(t, err, ErrTransactionNotSaved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectExec(upsertTransactionSQL).WillReturnError(errors.New("fk violation"))

		err := newTestRepo(t, db).SaveTransaction(testContext(), "V", tx)
		assert.ErrorIs(t, err, ErrExecutingStatement)
	})
}

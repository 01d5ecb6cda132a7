package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/models"
	sq "github.com/Masterminds/squirrel"
)

const (
	vaultsTable       = "vaults"
	transactionsTable = "vault_transactions"
)

var (
	vaultColumns = []string{"address", "signers", "threshold", "balance", "updated_at"}

	transactionColumns = []string{
		"id", "position", "kind", "amount", "recipient", "token_contract",
		"status", "signers", "created_at", "executed_ref", "failure_reason",
	}
)

const (
	upsertVaultSuffix = `ON CONFLICT (address) DO UPDATE SET
		signers = excluded.signers,
		threshold = excluded.threshold,
		balance = excluded.balance,
		updated_at = excluded.updated_at`

	upsertTransactionSuffix = `ON CONFLICT (vault_address, id) DO UPDATE SET
		status = excluded.status,
		signers = excluded.signers,
		executed_ref = excluded.executed_ref,
		failure_reason = excluded.failure_reason`
)

func buildSelectVaultQuery(b sq.StatementBuilderType, address string) (string, []any, error) {
	return b.Select(vaultColumns...).
		From(vaultsTable).
		Where(sq.Eq{"address": address}).
		ToSql()
}

func buildSelectTransactionsQuery(b sq.StatementBuilderType, address string) (string, []any, error) {
	return b.Select(transactionColumns...).
		From(transactionsTable).
		Where(sq.Eq{"vault_address": address}).
		OrderBy("position ASC").
		ToSql()
}

func buildUpsertVaultQuery(b sq.StatementBuilderType, vault models.Vault, now time.Time) (string, []any, error) {
	signers, err := json.Marshal(vault.Signers)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}

	return b.Insert(vaultsTable).
		Columns(vaultColumns...).
		Values(vault.Address, string(signers), vault.Threshold, strconv.FormatUint(vault.Balance, 10), now).
		Suffix(upsertVaultSuffix).
		ToSql()
}

// buildUpsertTransactionQuery inserts tx or updates its mutable columns.
// Kind, amount, recipient, token contract, position and creation time are
// fixed at proposal and never rewritten.
func buildUpsertTransactionQuery(b sq.StatementBuilderType, vaultAddress string, tx models.Transaction) (string, []any, error) {
	signers, err := json.Marshal(tx.Signers)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}

	return b.Insert(transactionsTable).
		Columns(append([]string{"vault_address"}, transactionColumns...)...).
		Values(
			vaultAddress,
			tx.ID,
			tx.Position,
			string(tx.Kind),
			strconv.FormatUint(tx.Amount, 10),
			tx.Recipient,
			tx.TokenContract,
			string(tx.Status),
			string(signers),
			tx.CreatedAt.UTC(),
			tx.ExecutedRef,
			tx.FailureReason,
		).
		Suffix(upsertTransactionSuffix).
		ToSql()
}

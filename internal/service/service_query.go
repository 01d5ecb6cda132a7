package service

import (
	"context"

	"github.com/MKhiriev/go-multisig-keeper/internal/quorum"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

// queryService is the concrete implementation of QueryService. It reads
// registered vaults only and never triggers a ledger fetch.
type queryService struct {
	vaults *vaultService
}

func newQueryService(vaults *vaultService) *queryService {
	return &queryService{vaults: vaults}
}

func (q *queryService) GetTransaction(ctx context.Context, vaultAddress, id string) (models.Transaction, bool) {
	entry, ok := q.vaults.lookup(vaultAddress)
	if !ok {
		return models.Transaction{}, false
	}
	return entry.transaction(id)
}

func (q *queryService) GetTransactionView(ctx context.Context, vaultAddress, id string) (models.TransactionView, bool) {
	entry, ok := q.vaults.lookup(vaultAddress)
	if !ok {
		return models.TransactionView{}, false
	}

	tx, threshold, ok := entry.transactionWithThreshold(id)
	if !ok {
		return models.TransactionView{}, false
	}
	return newTransactionView(ctx, tx, threshold), true
}

// ListTransactions returns views in proposal order. An unknown filter is
// treated as FilterAll.
func (q *queryService) ListTransactions(ctx context.Context, vaultAddress string, filter models.TransactionFilter) []models.TransactionView {
	entry, ok := q.vaults.lookup(vaultAddress)
	if !ok {
		return []models.TransactionView{}
	}

	entry.mu.RLock()
	txs := entry.transactionsLocked()
	threshold := entry.header.Threshold
	entry.mu.RUnlock()

	views := make([]models.TransactionView, 0, len(txs))
	for _, tx := range txs {
		if matchesFilter(tx, filter) {
			views = append(views, newTransactionView(ctx, tx, threshold))
		}
	}
	return views
}

// GetPendingTransactions returns every transaction that is not executed,
// failed ones included.
func (q *queryService) GetPendingTransactions(ctx context.Context, vaultAddress string) []models.Transaction {
	return q.filter(vaultAddress, models.FilterPending)
}

func (q *queryService) GetExecutedTransactions(ctx context.Context, vaultAddress string) []models.Transaction {
	return q.filter(vaultAddress, models.FilterExecuted)
}

func (q *queryService) GetSignatureCount(ctx context.Context, vaultAddress, id string) int {
	tx, ok := q.GetTransaction(ctx, vaultAddress, id)
	if !ok {
		return 0
	}
	return quorum.SignatureCount(tx.Signers)
}

// IsReadyToExecute recomputes readiness from the live signers and the
// current vault threshold. It reports the quorum only; Execute additionally
// rejects terminal transactions.
func (q *queryService) IsReadyToExecute(ctx context.Context, vaultAddress, id string) bool {
	entry, ok := q.vaults.lookup(vaultAddress)
	if !ok {
		return false
	}
	tx, threshold, ok := entry.transactionWithThreshold(id)
	if !ok {
		return false
	}
	return quorum.IsReady(tx.Signers, threshold)
}

// HasSigned reports whether address approved the transaction. It is false
// when no identity is present in ctx.
func (q *queryService) HasSigned(ctx context.Context, vaultAddress, id, address string) bool {
	if _, ok := utils.IdentityFromContext(ctx); !ok {
		return false
	}
	tx, ok := q.GetTransaction(ctx, vaultAddress, id)
	if !ok {
		return false
	}
	return hasSigned(tx, address)
}

// IsAuthorizedSigner reports whether the identity in ctx belongs to the
// vault's signer set. The check is advisory.
func (q *queryService) IsAuthorizedSigner(ctx context.Context, vaultAddress string) bool {
	identity, ok := utils.IdentityFromContext(ctx)
	if !ok {
		return false
	}
	entry, ok := q.vaults.lookup(vaultAddress)
	if !ok {
		return false
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	return entry.header.IsSigner(identity.Address)
}

func (q *queryService) filter(vaultAddress string, filter models.TransactionFilter) []models.Transaction {
	entry, ok := q.vaults.lookup(vaultAddress)
	if !ok {
		return []models.Transaction{}
	}

	entry.mu.RLock()
	txs := entry.transactionsLocked()
	entry.mu.RUnlock()

	result := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if matchesFilter(tx, filter) {
			result = append(result, tx)
		}
	}
	return result
}

func matchesFilter(tx models.Transaction, filter models.TransactionFilter) bool {
	switch filter {
	case models.FilterPending:
		return tx.Status != models.StatusExecuted
	case models.FilterExecuted:
		return tx.Status == models.StatusExecuted
	default:
		return true
	}
}

func hasSigned(tx models.Transaction, address string) bool {
	i := tx.SignerIndex(address)
	return i >= 0 && tx.Signers[i].HasSigned
}

func newTransactionView(ctx context.Context, tx models.Transaction, threshold int) models.TransactionView {
	view := models.TransactionView{
		Transaction:    tx,
		SignatureCount: quorum.SignatureCount(tx.Signers),
		ReadyToExecute: quorum.IsReady(tx.Signers, threshold),
	}
	if identity, ok := utils.IdentityFromContext(ctx); ok {
		view.SignedByCaller = hasSigned(tx, identity.Address)
	}
	return view
}

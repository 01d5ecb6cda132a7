package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/internal/adapter"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/quorum"
	"github.com/MKhiriev/go-multisig-keeper/internal/store"
	"github.com/MKhiriev/go-multisig-keeper/internal/validators"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

// idGenerator produces transaction ids. Implementations must be safe for
// concurrent use and collision-free without coordination.
type idGenerator interface {
	Generate() string
}

// maxIDAttempts bounds the regeneration of an id already taken in the vault.
const maxIDAttempts = 8

var errEmptyExecutedRef = errors.New("ledger returned an empty reference")

// transactionService is the concrete implementation of TransactionService.
type transactionService struct {
	// vaults resolves (and lazily fetches) the vault a request targets.
	vaults *vaultService

	// ledger broadcasts ready transactions.
	ledger adapter.LedgerAdapter

	// storage receives every accepted transition.
	storage store.VaultStorage

	ids idGenerator
	now func() time.Time

	// broadcastTimeout bounds a broadcast made under the vault read lock.
	// Zero leaves the ctx deadline alone.
	broadcastTimeout time.Duration

	logger *logger.Logger
}

func newTransactionService(vaults *vaultService, ledger adapter.LedgerAdapter, storage store.VaultStorage, ids idGenerator, logger *logger.Logger) *transactionService {
	return &transactionService{
		vaults:  vaults,
		ledger:  ledger,
		storage: storage,
		ids:     ids,
		now:     time.Now,
		logger:  logger.WithComponent("transaction-service"),
	}
}

// Propose implements TransactionService.
//
// The new transaction is pending, snapshots the current signer set of the
// vault with no approvals and is appended at the end of the vault's list.
// Returns ErrValidation for a zero amount, an unknown kind or a token
// transfer without a token contract; nothing is added in that case.
func (s *transactionService) Propose(ctx context.Context, request models.ProposeRequest) (models.Transaction, error) {
	log := logger.FromContext(ctx)

	if err := checkProposal(request); err != nil {
		log.Err(err).Str("vault", request.VaultAddress).Msg("invalid proposal")
		return models.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	entry, err := s.vaults.entry(ctx, request.VaultAddress)
	if err != nil {
		return models.Transaction{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	id, err := s.nextID(entry)
	if err != nil {
		return models.Transaction{}, err
	}

	signers := make([]models.Signer, len(entry.header.Signers))
	for i, address := range entry.header.Signers {
		signers[i] = models.Signer{Address: address}
	}

	tx := models.Transaction{
		ID:            id,
		Position:      len(entry.txs),
		Kind:          request.Kind,
		Amount:        request.Amount,
		Recipient:     request.Recipient,
		TokenContract: request.TokenContract,
		Signers:       signers,
		CreatedAt:     s.now().UTC(),
	}
	tx.Status = quorum.DeriveStatus(models.StatusPending, tx.Signers, entry.header.Threshold)

	if err = s.storage.SaveTransaction(ctx, request.VaultAddress, tx); err != nil {
		log.Err(err).Str("vault", request.VaultAddress).Str("tx_id", id).Msg("saving proposed transaction failed")
		return models.Transaction{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	entry.appendLocked(tx)

	log.Info().Str("vault", request.VaultAddress).Str("tx_id", id).Str("kind", string(tx.Kind)).Msg("transaction proposed")
	return tx.Clone(), nil
}

// Sign implements TransactionService.
//
// Returns ErrTransactionNotFound, ErrAlreadyTerminal or ErrUnknownSigner.
// Signing twice by the same signer is a no-op.
func (s *transactionService) Sign(ctx context.Context, request models.SignRequest) (models.Transaction, error) {
	return s.withTransaction(ctx, request.VaultAddress, request.TransactionID,
		func(entry *vaultEntry, te *txEntry) (models.Transaction, error) {
			log := logger.FromContext(ctx)

			if te.tx.Status.IsTerminal() {
				return models.Transaction{}, fmt.Errorf("%w: %s is %s", ErrAlreadyTerminal, te.tx.ID, te.tx.Status)
			}

			i := te.tx.SignerIndex(request.Signer)
			if i < 0 {
				log.Warn().Str("tx_id", te.tx.ID).Str("signer", request.Signer).Msg("sign attempt by unknown signer")
				return models.Transaction{}, fmt.Errorf("%w: %s", ErrUnknownSigner, request.Signer)
			}
			if te.tx.Signers[i].HasSigned {
				return te.tx.Clone(), nil
			}

			candidate := te.tx.Clone()
			candidate.Signers[i].HasSigned = true
			candidate.Status = quorum.DeriveStatus(candidate.Status, candidate.Signers, entry.header.Threshold)

			if err := s.storage.SaveTransaction(ctx, request.VaultAddress, candidate); err != nil {
				log.Err(err).Str("tx_id", te.tx.ID).Msg("saving signature failed")
				return models.Transaction{}, fmt.Errorf("%w: %w", ErrStorage, err)
			}
			te.tx = candidate

			log.Info().Str("tx_id", te.tx.ID).Str("signer", request.Signer).Str("status", string(te.tx.Status)).Msg("transaction signed")
			return te.tx.Clone(), nil
		})
}

// Execute implements TransactionService.
//
// The readiness check and the broadcast run under the transaction lock. A
// broadcast error moves the transaction to failed and is returned wrapped in
// ErrBroadcast. The outcome of a broadcast is applied even when it cannot be
// written through; the vault is then saved again on its next fetch.
func (s *transactionService) Execute(ctx context.Context, request models.ExecuteRequest) (models.Transaction, error) {
	return s.withTransaction(ctx, request.VaultAddress, request.TransactionID,
		func(entry *vaultEntry, te *txEntry) (models.Transaction, error) {
			log := logger.FromContext(ctx)

			if te.tx.Status.IsTerminal() {
				return models.Transaction{}, fmt.Errorf("%w: %s is %s", ErrAlreadyTerminal, te.tx.ID, te.tx.Status)
			}
			if !quorum.IsReady(te.tx.Signers, entry.header.Threshold) {
				return models.Transaction{}, fmt.Errorf("%w: %d of %d signatures", ErrQuorumNotMet,
					quorum.SignatureCount(te.tx.Signers), entry.header.Threshold)
			}

			ref, err := s.broadcast(ctx, request.VaultAddress, te.tx.Clone())
			if err == nil && ref == "" {
				err = errEmptyExecutedRef
			}

			candidate := te.tx.Clone()
			if err != nil {
				candidate.Status = models.StatusFailed
				candidate.FailureReason = err.Error()
			} else {
				candidate.Status = models.StatusExecuted
				candidate.ExecutedRef = ref
			}
			te.tx = candidate

			if saveErr := s.storage.SaveTransaction(ctx, request.VaultAddress, candidate); saveErr != nil {
				entry.dirty.Store(true)
				log.Err(saveErr).Str("tx_id", candidate.ID).Msg("saving execution outcome failed")
			}

			if err != nil {
				log.Err(err).Str("tx_id", candidate.ID).Msg("broadcast failed, transaction marked failed")
				return models.Transaction{}, fmt.Errorf("%w: %w", ErrBroadcast, err)
			}

			log.Info().Str("tx_id", candidate.ID).Str("ref", ref).Msg("transaction executed")
			return candidate.Clone(), nil
		})
}

// MarkFailed implements TransactionService.
func (s *transactionService) MarkFailed(ctx context.Context, request models.FailRequest) (models.Transaction, error) {
	return s.withTransaction(ctx, request.VaultAddress, request.TransactionID,
		func(entry *vaultEntry, te *txEntry) (models.Transaction, error) {
			log := logger.FromContext(ctx)

			if te.tx.Status.IsTerminal() {
				return models.Transaction{}, fmt.Errorf("%w: %s is %s", ErrAlreadyTerminal, te.tx.ID, te.tx.Status)
			}

			candidate := te.tx.Clone()
			candidate.Status = models.StatusFailed
			candidate.FailureReason = request.Reason

			if err := s.storage.SaveTransaction(ctx, request.VaultAddress, candidate); err != nil {
				log.Err(err).Str("tx_id", te.tx.ID).Msg("saving failure failed")
				return models.Transaction{}, fmt.Errorf("%w: %w", ErrStorage, err)
			}
			te.tx = candidate

			log.Info().Str("tx_id", te.tx.ID).Str("reason", request.Reason).Msg("transaction marked failed")
			return te.tx.Clone(), nil
		})
}

func (s *transactionService) broadcast(ctx context.Context, vaultAddress string, tx models.Transaction) (string, error) {
	if s.broadcastTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.broadcastTimeout)
		defer cancel()
	}
	return s.ledger.Broadcast(ctx, vaultAddress, tx)
}

// withTransaction runs fn holding the vault read lock and the transaction
// lock, fetching the vault first when it is not registered.
func (s *transactionService) withTransaction(ctx context.Context, vaultAddress, id string,
	fn func(entry *vaultEntry, te *txEntry) (models.Transaction, error)) (models.Transaction, error) {
	entry, err := s.vaults.entry(ctx, vaultAddress)
	if err != nil {
		return models.Transaction{}, err
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()

	te, ok := entry.byID[id]
	if !ok {
		return models.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}

	te.mu.Lock()
	defer te.mu.Unlock()

	return fn(entry, te)
}

// nextID returns an id not used in the vault yet. entry.mu must be held.
func (s *transactionService) nextID(entry *vaultEntry) (string, error) {
	for range maxIDAttempts {
		id := s.ids.Generate()
		if _, taken := entry.byID[id]; !taken && id != "" {
			return id, nil
		}
	}
	return "", errors.New("could not allocate a unique transaction id")
}

// checkProposal enforces the invariants of a new transaction that do not
// depend on the address format.
func checkProposal(request models.ProposeRequest) error {
	switch {
	case !request.Kind.IsValid():
		return fmt.Errorf("%w: %q", validators.ErrInvalidKind, request.Kind)
	case request.Amount == 0:
		return validators.ErrInvalidAmount
	case request.Kind == models.TokenTransfer && request.TokenContract == "":
		return validators.ErrMissingTokenContract
	case request.Kind == models.NativeTransfer && request.TokenContract != "":
		return validators.ErrUnexpectedTokenContract
	}
	return nil
}

package service

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

// Session is the caller-facing facade of one signed-in caller. It remembers
// the active vault selected by the last successful Fetch and the current
// identity, and exposes the query facade without explicit parameters.
//
// A Session is safe for concurrent use. Its state is discarded with it; the
// vaults it touched stay in the shared registry.
type Session struct {
	vaults       VaultService
	transactions TransactionService
	queries      QueryService

	mu       sync.RWMutex
	active   string
	identity models.Identity
}

// NewSession returns a session with no active vault and no identity.
func NewSession(services *Services) *Session {
	return &Session{
		vaults:       services.VaultService,
		transactions: services.TransactionService,
		queries:      services.QueryService,
	}
}

// SetIdentity replaces the current identity. The zero value signs the
// caller out.
func (s *Session) SetIdentity(identity models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

// Identity returns the current identity.
func (s *Session) Identity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// ActiveVault returns the address of the active vault.
func (s *Session) ActiveVault() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != ""
}

// Fetch loads the vault at address and makes it the active vault.
func (s *Session) Fetch(ctx context.Context, address string) (models.Vault, error) {
	vault, err := s.vaults.Fetch(s.withIdentity(ctx), address)
	if err != nil {
		return models.Vault{}, err
	}

	s.mu.Lock()
	s.active = address
	s.mu.Unlock()

	return vault, nil
}

// Propose proposes a transfer from the active vault.
func (s *Session) Propose(ctx context.Context, kind models.TransactionKind, amount uint64, recipient, tokenContract string) (models.Transaction, error) {
	vault, ok := s.ActiveVault()
	if !ok {
		return models.Transaction{}, ErrNoActiveVault
	}
	return s.transactions.Propose(s.withIdentity(ctx), models.ProposeRequest{
		VaultAddress:  vault,
		Kind:          kind,
		Amount:        amount,
		Recipient:     recipient,
		TokenContract: tokenContract,
	})
}

// Sign approves the transaction with the current identity. Without an
// identity it fails with ErrUnknownSigner.
func (s *Session) Sign(ctx context.Context, id string) (models.Transaction, error) {
	vault, ok := s.ActiveVault()
	if !ok {
		return models.Transaction{}, ErrNoActiveVault
	}
	identity := s.Identity()
	if identity.IsZero() {
		return models.Transaction{}, ErrUnknownSigner
	}
	return s.transactions.Sign(s.withIdentity(ctx), models.SignRequest{
		VaultAddress:  vault,
		TransactionID: id,
		Signer:        identity.Address,
	})
}

// Execute broadcasts a ready transaction of the active vault.
func (s *Session) Execute(ctx context.Context, id string) (models.Transaction, error) {
	vault, ok := s.ActiveVault()
	if !ok {
		return models.Transaction{}, ErrNoActiveVault
	}
	return s.transactions.Execute(s.withIdentity(ctx), models.ExecuteRequest{
		VaultAddress:  vault,
		TransactionID: id,
	})
}

// MarkFailed reports an external failure for a transaction of the active
// vault.
func (s *Session) MarkFailed(ctx context.Context, id, reason string) (models.Transaction, error) {
	vault, ok := s.ActiveVault()
	if !ok {
		return models.Transaction{}, ErrNoActiveVault
	}
	return s.transactions.MarkFailed(s.withIdentity(ctx), models.FailRequest{
		VaultAddress:  vault,
		TransactionID: id,
		Reason:        reason,
	})
}

func (s *Session) GetTransaction(id string) (models.Transaction, bool) {
	vault, ok := s.ActiveVault()
	if !ok {
		return models.Transaction{}, false
	}
	return s.queries.GetTransaction(s.queryContext(), vault, id)
}

// GetPendingTransactions returns every transaction of the active vault that
// is not executed. Failed transactions are included.
func (s *Session) GetPendingTransactions() []models.Transaction {
	vault, ok := s.ActiveVault()
	if !ok {
		return []models.Transaction{}
	}
	return s.queries.GetPendingTransactions(s.queryContext(), vault)
}

func (s *Session) GetExecutedTransactions() []models.Transaction {
	vault, ok := s.ActiveVault()
	if !ok {
		return []models.Transaction{}
	}
	return s.queries.GetExecutedTransactions(s.queryContext(), vault)
}

func (s *Session) GetSignatureCount(id string) int {
	vault, ok := s.ActiveVault()
	if !ok {
		return 0
	}
	return s.queries.GetSignatureCount(s.queryContext(), vault, id)
}

func (s *Session) IsReadyToExecute(id string) bool {
	vault, ok := s.ActiveVault()
	if !ok {
		return false
	}
	return s.queries.IsReadyToExecute(s.queryContext(), vault, id)
}

func (s *Session) HasSigned(id, address string) bool {
	vault, ok := s.ActiveVault()
	if !ok {
		return false
	}
	return s.queries.HasSigned(s.queryContext(), vault, id, address)
}

// IsAuthorizedSigner reports whether the current identity may sign for the
// active vault. Sign enforces membership on its own.
func (s *Session) IsAuthorizedSigner() bool {
	vault, ok := s.ActiveVault()
	if !ok {
		return false
	}
	return s.queries.IsAuthorizedSigner(s.queryContext(), vault)
}

func (s *Session) withIdentity(ctx context.Context) context.Context {
	return utils.WithIdentity(ctx, s.Identity())
}

func (s *Session) queryContext() context.Context {
	return s.withIdentity(context.Background())
}

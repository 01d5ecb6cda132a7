// Package service implements the multisig vault transaction model: the vault
// registry, the transaction state machine and the read-only query facade.
//
// The registry keeps the live state of every known vault in memory and
// writes each accepted change through to a [store.VaultStorage]. Mutations of
// a single transaction are serialized by a per-transaction lock, so a
// readiness check and the broadcast in Execute are atomic with respect to
// concurrent Sign calls.
package service

import (
	"context"

	"github.com/MKhiriev/go-multisig-keeper/models"
)

// VaultService is the vault registry.
type VaultService interface {
	// Fetch validates address, reads the vault snapshot from the ledger and
	// merges it into the registry. Returns the merged vault including its
	// full transaction history.
	Fetch(ctx context.Context, address string) (models.Vault, error)

	// Load returns the registered vault, fetching it first when the address
	// is not registered yet.
	Load(ctx context.Context, address string) (models.Vault, error)

	// Refresh re-fetches every registered vault. A failure for one vault does
	// not stop the others; all failures are returned joined.
	Refresh(ctx context.Context) error

	// Addresses lists the registered vault addresses.
	Addresses() []string
}

// TransactionService is the transaction state machine.
type TransactionService interface {
	Propose(ctx context.Context, request models.ProposeRequest) (models.Transaction, error)
	Sign(ctx context.Context, request models.SignRequest) (models.Transaction, error)
	Execute(ctx context.Context, request models.ExecuteRequest) (models.Transaction, error)
	MarkFailed(ctx context.Context, request models.FailRequest) (models.Transaction, error)
}

// QueryService is the read-only facade over registered vaults.
//
// It never returns domain errors: unknown vaults and transactions yield
// neutral values. The current identity is taken from the context.
type QueryService interface {
	GetTransaction(ctx context.Context, vaultAddress, id string) (models.Transaction, bool)
	GetTransactionView(ctx context.Context, vaultAddress, id string) (models.TransactionView, bool)
	ListTransactions(ctx context.Context, vaultAddress string, filter models.TransactionFilter) []models.TransactionView

	GetPendingTransactions(ctx context.Context, vaultAddress string) []models.Transaction
	GetExecutedTransactions(ctx context.Context, vaultAddress string) []models.Transaction

	GetSignatureCount(ctx context.Context, vaultAddress, id string) int
	IsReadyToExecute(ctx context.Context, vaultAddress, id string) bool
	HasSigned(ctx context.Context, vaultAddress, id, address string) bool
	IsAuthorizedSigner(ctx context.Context, vaultAddress string) bool
}

// IdentityService resolves identity tokens issued by the external identity
// provider.
type IdentityService interface {
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
	CreateToken(ctx context.Context, subject string, accounts map[models.Network]string) (models.Token, error)
}

// AppInfoService exposes application metadata.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string

	// GetBuildInfo returns the build metadata with Version set to the
	// configured application version.
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}

// TransactionServiceWrapper defines middleware composition for
// TransactionService. Implementations wrap an existing TransactionService to
// add behavior such as validation.
type TransactionServiceWrapper interface {
	Wrap(TransactionService) TransactionService // returns a decorated TransactionService applying additional behavior
}

package service

import (
	"errors"
	"fmt"
)

// Domain errors returned by the vault registry and the transaction state
// machine. Callers match them with errors.Is.
var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownSigner   = errors.New("signer is not authorized for this transaction")
	ErrAlreadyTerminal = errors.New("transaction is already executed or failed")
	ErrQuorumNotMet    = errors.New("signature quorum not met")
	ErrNotFound        = errors.New("not found")
	ErrBroadcast       = errors.New("broadcast failed")
)

var (
	// ErrInvalidVaultSnapshot is returned when the ledger reports a vault that
	// breaks the threshold invariant.
	ErrInvalidVaultSnapshot = fmt.Errorf("%w: invalid vault snapshot", ErrValidation)

	ErrVaultNotFound       = fmt.Errorf("vault %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrNoActiveVault       = fmt.Errorf("active vault %w", ErrNotFound)

	ErrLedgerUnavailable = errors.New("ledger request failed")
	ErrStorage           = errors.New("storage operation failed")
)

var (
	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrTokenSignKeyIsNotSpecified = errors.New("token sign key is not specified")
	ErrInvalidToken               = errors.New("invalid identity token")
	ErrTokenIsExpired             = errors.New("token is expired")
)

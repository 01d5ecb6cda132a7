// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// TransactionKind is the semantic type of a proposed transfer.
type TransactionKind string

const (
	// NativeTransfer moves the chain's native coin out of the vault.
	NativeTransfer TransactionKind = "native-transfer"

	// TokenTransfer moves a token held by the vault. A token transfer must
	// reference the token contract it operates on.
	TokenTransfer TransactionKind = "token-transfer"
)

// IsValid reports whether k is one of the supported transaction kinds.
func (k TransactionKind) IsValid() bool {
	return k == NativeTransfer || k == TokenTransfer
}

// TransactionStatus is the cached lifecycle label of a [Transaction].
//
// The label is derived from the signer list and the vault threshold; read
// paths that report readiness always recompute it instead of trusting the
// stored value.
type TransactionStatus string

const (
	// StatusPending means no signer has approved the transaction yet.
	StatusPending TransactionStatus = "pending"

	// StatusSigned means at least one, but fewer than threshold, signers
	// have approved the transaction.
	StatusSigned TransactionStatus = "signed"

	// StatusReadyToExecute means the number of approvals reached the vault
	// threshold and the transaction may be broadcast.
	StatusReadyToExecute TransactionStatus = "ready-to-execute"

	// StatusExecuted is terminal: the transaction was broadcast and carries
	// an on-chain reference.
	StatusExecuted TransactionStatus = "executed"

	// StatusFailed is terminal: the transaction was rejected or reported as
	// failed and will never be executed.
	StatusFailed TransactionStatus = "failed"
)

// IsTerminal reports whether s is an absorbing state.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusExecuted || s == StatusFailed
}

// Signer is a single approval slot on a transaction.
//
// HasSigned only ever transitions from false to true; there is no
// signature revocation.
type Signer struct {
	// Address is the account expected to approve the transaction.
	Address string `json:"address"`

	// HasSigned reports whether Address has approved the transaction.
	HasSigned bool `json:"has_signed"`
}

// Transaction is a transfer proposed from a vault.
//
// The Signers field is a snapshot of the vault's authorized signer set taken
// at proposal time; its membership never changes afterwards, even if the
// vault's signer set does.
type Transaction struct {
	// ID uniquely identifies the transaction within its vault.
	ID string `json:"id"`

	// Position is the zero-based proposal order inside the vault.
	Position int `json:"position"`

	// Kind is the transfer type.
	Kind TransactionKind `json:"kind"`

	// Amount is expressed in the smallest unit of the transferred asset.
	Amount uint64 `json:"amount"`

	// Recipient is the destination account address.
	Recipient string `json:"recipient"`

	// TokenContract references the token being transferred. Required iff
	// Kind is [TokenTransfer]; empty otherwise.
	TokenContract string `json:"token_contract,omitempty"`

	// Status is the cached lifecycle label.
	Status TransactionStatus `json:"status"`

	// Signers is the fixed approval snapshot.
	Signers []Signer `json:"signers"`

	// CreatedAt is the proposal time in UTC.
	CreatedAt time.Time `json:"created_at"`

	// ExecutedRef is the on-chain reference returned by the broadcaster.
	// Present iff Status is [StatusExecuted].
	ExecutedRef string `json:"executed_ref,omitempty"`

	// FailureReason explains why the transaction reached [StatusFailed].
	FailureReason string `json:"failure_reason,omitempty"`
}

// Clone returns a deep copy of t so callers can never alias the signer
// slice owned by the registry.
func (t Transaction) Clone() Transaction {
	clone := t
	if t.Signers != nil {
		clone.Signers = make([]Signer, len(t.Signers))
		copy(clone.Signers, t.Signers)
	}
	return clone
}

// SignerIndex returns the position of address in the signer snapshot, or -1.
func (t Transaction) SignerIndex(address string) int {
	for i, s := range t.Signers {
		if s.Address == address {
			return i
		}
	}
	return -1
}

// TransactionView is the read model returned to presentation layers: the
// transaction plus values derived live from its signer snapshot.
type TransactionView struct {
	Transaction

	// SignatureCount is the number of signers that approved the transaction.
	SignatureCount int `json:"signature_count"`

	// ReadyToExecute reports whether the approvals reach the vault threshold.
	ReadyToExecute bool `json:"ready_to_execute"`

	// SignedByCaller reports whether the current identity has approved.
	SignedByCaller bool `json:"signed_by_caller"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ProposeRequest carries the input of the propose operation.
type ProposeRequest struct {
	// VaultAddress selects the vault the transfer is proposed from.
	VaultAddress string `json:"vault_address"`

	// Kind is the transfer type.
	Kind TransactionKind `json:"kind"`

	// Amount is expressed in the smallest unit and must be positive.
	Amount uint64 `json:"amount"`

	// Recipient is the destination account address.
	Recipient string `json:"recipient"`

	// TokenContract is required for token transfers.
	TokenContract string `json:"token_contract,omitempty"`
}

// SignRequest approves a transaction on behalf of Signer.
type SignRequest struct {
	VaultAddress  string `json:"vault_address"`
	TransactionID string `json:"transaction_id"`
	Signer        string `json:"signer"`
}

// ExecuteRequest asks for a ready transaction to be broadcast.
type ExecuteRequest struct {
	VaultAddress  string `json:"vault_address"`
	TransactionID string `json:"transaction_id"`
}

// FailRequest reports an external failure for a transaction.
type FailRequest struct {
	VaultAddress  string `json:"vault_address"`
	TransactionID string `json:"transaction_id"`

	// Reason is a free-form explanation stored on the transaction.
	Reason string `json:"reason"`
}

// TransactionFilter selects which transactions a list query returns.
type TransactionFilter string

const (
	// FilterAll returns every transaction of the vault.
	FilterAll TransactionFilter = "all"

	// FilterPending returns every transaction not yet executed, including
	// failed ones.
	FilterPending TransactionFilter = "pending"

	// FilterExecuted returns executed transactions only.
	FilterExecuted TransactionFilter = "executed"
)

// TransactionList is the response envelope of a list query.
type TransactionList struct {
	// Transactions holds the matching transactions in proposal order.
	Transactions []TransactionView `json:"transactions"`

	// Length is the number of entries in Transactions.
	Length int `json:"length"`
}

// AuthorizationResponse tells a caller whether its identity may sign for a
// vault. The check is advisory; the state machine enforces membership
// independently.
type AuthorizationResponse struct {
	Address    string `json:"address,omitempty"`
	Authorized bool   `json:"authorized"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import "github.com/MKhiriev/go-multisig-keeper/models"

// FetchVaultRequest selects the vault to re-read from the ledger.
type FetchVaultRequest struct {
	Address string `json:"address"`
}

// ProposeTransactionRequest carries a new transfer for a vault.
type ProposeTransactionRequest struct {
	VaultAddress  string                 `json:"vault_address"`
	Kind          models.TransactionKind `json:"kind"`
	Amount        uint64                 `json:"amount"`
	Recipient     string                 `json:"recipient"`
	TokenContract string                 `json:"token_contract,omitempty"`
}

// TransactionRequest addresses one transaction of a vault. It is the input
// of SignTransaction, ExecuteTransaction and GetTransaction.
type TransactionRequest struct {
	VaultAddress  string `json:"vault_address"`
	TransactionID string `json:"transaction_id"`
}

// FailTransactionRequest marks a transaction failed with an optional reason.
type FailTransactionRequest struct {
	VaultAddress  string `json:"vault_address"`
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason,omitempty"`
}

// ListTransactionsRequest lists the transactions of a vault. Status is one of
// "all" (default), "pending" or "executed".
type ListTransactionsRequest struct {
	VaultAddress string                   `json:"vault_address"`
	Status       models.TransactionFilter `json:"status,omitempty"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Vault is an account controlled by a fixed set of authorized signers and a
// minimum-approval threshold. A vault owns its transactions exclusively.
type Vault struct {
	// Address identifies the vault on chain. Compared by exact equality.
	Address string `json:"address"`

	// Signers is the authorized signer set in ledger order, without
	// duplicates.
	Signers []string `json:"signers"`

	// Threshold is the minimum number of distinct approvals required for a
	// transaction to execute. Always 1 <= Threshold <= len(Signers).
	Threshold int `json:"threshold"`

	// Balance is the vault's native balance in the smallest unit.
	Balance uint64 `json:"balance"`

	// Transactions are ordered by proposal order.
	Transactions []Transaction `json:"transactions"`
}

// IsSigner reports whether address belongs to the authorized signer set.
func (v Vault) IsSigner(address string) bool {
	for _, s := range v.Signers {
		if s == address {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of v.
func (v Vault) Clone() Vault {
	clone := v
	if v.Signers != nil {
		clone.Signers = make([]string, len(v.Signers))
		copy(clone.Signers, v.Signers)
	}
	if v.Transactions != nil {
		clone.Transactions = make([]Transaction, len(v.Transactions))
		for i, tx := range v.Transactions {
			clone.Transactions[i] = tx.Clone()
		}
	}
	return clone
}

// Header returns a copy of v without its transactions.
func (v Vault) Header() Vault {
	header := v.Clone()
	header.Transactions = nil
	return header
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package quorum evaluates multisig readiness.
//
// Every function is pure: the result depends only on the signer snapshot of a
// transaction and the vault threshold, so two observers holding the same
// snapshot always agree on the status.
package quorum

import "github.com/MKhiriev/go-multisig-keeper/models"

// SignatureCount returns the number of signers that approved.
func SignatureCount(signers []models.Signer) int {
	count := 0
	for _, s := range signers {
		if s.HasSigned {
			count++
		}
	}
	return count
}

// IsReady reports whether the approvals reach threshold.
//
// A non-positive threshold never makes a transaction ready; vaults with such
// a threshold are rejected before they reach the registry.
func IsReady(signers []models.Signer, threshold int) bool {
	if threshold < 1 {
		return false
	}
	return SignatureCount(signers) >= threshold
}

// DeriveStatus recomputes the status of a transaction.
//
// A terminal current status is returned unchanged. Otherwise the status is
// ready-to-execute when the threshold is met, signed when at least one
// approval exists, and pending when none does.
func DeriveStatus(current models.TransactionStatus, signers []models.Signer, threshold int) models.TransactionStatus {
	if current.IsTerminal() {
		return current
	}

	switch {
	case IsReady(signers, threshold):
		return models.StatusReadyToExecute
	case SignatureCount(signers) > 0:
		return models.StatusSigned
	default:
		return models.StatusPending
	}
}

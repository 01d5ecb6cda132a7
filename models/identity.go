// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Network designates the chain an account address belongs to.
type Network string

const (
	// Mainnet is the production network.
	Mainnet Network = "mainnet"

	// Testnet is the test network. When an identity holds accounts on both
	// networks the testnet account is used as the current address.
	Testnet Network = "testnet"
)

// Identity is the signed-in account supplied by the external identity
// provider. The zero value means "no identity": no authorized signer is
// present.
type Identity struct {
	// Address is the current account address selected for this session.
	Address string `json:"address"`

	// Network is the network Address belongs to.
	Network Network `json:"network,omitempty"`
}

// IsZero reports whether no identity is present.
func (i Identity) IsZero() bool {
	return i.Address == ""
}

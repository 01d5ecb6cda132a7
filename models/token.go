package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is the claim set of identity tokens issued by the external
// identity provider.
//
// The standard "sub" claim carries the primary account address. Accounts
// optionally lists one address per network; see [Identity] for how the
// current address is selected.
type IdentityClaims struct {
	jwt.RegisteredClaims

	// Accounts maps a network to the account address the holder controls on
	// that network.
	Accounts map[Network]string `json:"accounts,omitempty"`
}

// Token wraps a parsed or freshly signed identity token.
type Token struct {
	// Token is the underlying JWT token used for signing and claim inspection.
	*jwt.Token `json:"-"`

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// Identity is the identity resolved from the token claims.
	Identity Identity `json:"-"`
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}

package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/models"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateIdentityToken creates a signed HMAC-SHA256 identity token.
//
// The token includes the following claims:
//   - Issuer    (iss): identifies the identity provider
//   - Subject   (sub): the primary account address
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus tokenDuration
//   - accounts       : optional per-network account addresses
//
// issuer, subject, tokenDuration and signKey are required.
//
// Example usage:
//
//	token, err := utils.GenerateIdentityToken("idp", "0xabc", nil, time.Hour, "secret")
func GenerateIdentityToken(issuer, subject string, accounts map[models.Network]string, tokenDuration time.Duration, signKey string) (models.Token, error) {
	if issuer == "" || subject == "" || tokenDuration == 0 || signKey == "" {
		return models.Token{}, errors.New("invalid params for generating identity token")
	}

	now := time.Now()
	claims := &models.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Accounts: accounts,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred during singing identity token: %w", err)
	}

	return models.Token{Token: token, SignedString: tokenString, Identity: SelectIdentity(claims)}, nil
}

// ValidateAndParseIdentityToken validates the given token string and
// resolves the identity it carries.
//
// Validation includes:
//   - Signature verification using the provided sign key (HS256 only)
//   - Issuer (iss) claim check against tokenIssuer
//   - Expiration (exp) claim check
//   - Presence of a subject or at least one account
//
// Example usage:
//
//	token, err := utils.ValidateAndParseIdentityToken(raw, "secret", "idp")
//	if err != nil {
//	    // handle invalid or expired token
//	}
func ValidateAndParseIdentityToken(tokenString, tokenSignKey, tokenIssuer string) (models.Token, error) {
	claims := &models.IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	identity := SelectIdentity(claims)
	if identity.IsZero() {
		return models.Token{}, errors.New("token carries no account address")
	}

	return models.Token{Token: token, SignedString: tokenString, Identity: identity}, nil
}

// SelectIdentity picks the current account address from claims.
// The testnet account is preferred over the mainnet one; the subject is
// used when neither is present.
func SelectIdentity(claims *models.IdentityClaims) models.Identity {
	if claims == nil {
		return models.Identity{}
	}
	if addr := claims.Accounts[models.Testnet]; addr != "" {
		return models.Identity{Address: addr, Network: models.Testnet}
	}
	if addr := claims.Accounts[models.Mainnet]; addr != "" {
		return models.Identity{Address: addr, Network: models.Mainnet}
	}
	return models.Identity{Address: claims.Subject}
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/internal/config"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/models"
	"github.com/golang-jwt/jwt/v5"
)

// identityService is the concrete implementation of IdentityService.
// Tokens are HS256 JWTs signed with a key shared with the identity provider.
type identityService struct {
	// tokenSignKey is the HMAC secret used to sign and verify tokens.
	tokenSignKey string

	// tokenIssuer is the expected "iss" claim. Tokens issued by anyone else
	// are rejected.
	tokenIssuer string

	// tokenDuration controls how long a token created by CreateToken stays
	// valid.
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewIdentityService constructs an IdentityService from the App config.
// Returns ErrTokenSignKeyIsNotSpecified when no sign key is configured.
func NewIdentityService(cfg config.App, logger *logger.Logger) (IdentityService, error) {
	if cfg.TokenSignKey == "" {
		return nil, ErrTokenSignKeyIsNotSpecified
	}

	return &identityService{
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        logger,
	}, nil
}

// ParseToken validates tokenString and resolves the identity it carries.
// The testnet account is preferred over the mainnet one.
//
// Returns ErrTokenIsExpired for an expired token and ErrInvalidToken for any
// other rejection.
func (s *identityService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	log := logger.FromContext(ctx)

	token, err := utils.ValidateAndParseIdentityToken(tokenString, s.tokenSignKey, s.tokenIssuer)
	if err != nil {
		log.Err(err).Msg("identity token rejected")
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Token{}, ErrTokenIsExpired
		}
		return models.Token{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return token, nil
}

// CreateToken issues a token for subject. It stands in for the external
// identity provider in development and tests.
func (s *identityService) CreateToken(ctx context.Context, subject string, accounts map[models.Network]string) (models.Token, error) {
	token, err := utils.GenerateIdentityToken(s.tokenIssuer, subject, accounts, s.tokenDuration, s.tokenSignKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("subject", subject).Msg("token creation failed")
		return models.Token{}, fmt.Errorf("token creation failed: %w", err)
	}
	return token, nil
}

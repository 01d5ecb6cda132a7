package http

import (
	"net/http"
	"strings"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
)

// withIdentity resolves the caller's identity from the "Authorization"
// header and stores it in the request context via [utils.WithIdentity].
//
// A request without the header proceeds anonymously. A header that cannot be
// parsed, or a token rejected by [service.IdentityService.ParseToken], ends
// the request with HTTP 401.
func (h *Handler) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := getTokenFromAuthHeader(authHeader)
		if err != nil {
			writeError(w, r, err, "malformed authorization header")
			return
		}

		ctx := r.Context()
		token, err := h.services.IdentityService.ParseToken(ctx, tokenString)
		if err != nil {
			writeError(w, r, err, "identity token rejected")
			return
		}

		log := logger.FromContext(ctx).With().Str("identity", token.Identity.Address).Logger()
		ctx = log.WithContext(utils.WithIdentity(ctx, token.Identity))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireIdentity rejects anonymous requests with HTTP 401.
func (h *Handler) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.IdentityFromContext(r.Context()); !ok {
			writeError(w, r, ErrIdentityRequired, "anonymous call to a mutating route")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getTokenFromAuthHeader extracts the token from a raw "Authorization"
// header value of the form "<scheme> <token>".
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}

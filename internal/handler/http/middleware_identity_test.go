package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/service"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Mock: IdentityService ----

type mockIdentityService struct {
	parseFn func(ctx context.Context, token string) (models.Token, error)
	calls   int
}

func (m *mockIdentityService) ParseToken(ctx context.Context, token string) (models.Token, error) {
	m.calls++
	return m.parseFn(ctx, token)
}

func (m *mockIdentityService) CreateToken(_ context.Context, _ string, _ map[models.Network]string) (models.Token, error) {
	return models.Token{}, errors.New("not supported")
}

func newHandlerWithIdentity(svc service.IdentityService) *Handler {
	return &Handler{
		logger:   logger.Nop(),
		services: &service.Services{IdentityService: svc},
	}
}

// ---- getTokenFromAuthHeader ----

func TestGetTokenFromAuthHeader_TableTest(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   error
	}{
		{name: "valid Bearer token", header: "Bearer my-jwt-token", wantToken: "my-jwt-token"},
		{name: "missing token part", header: "Bearer", wantErr: ErrInvalidAuthorizationHeader},
		{name: "only spaces", header: " ", wantErr: ErrEmptyToken},
		{name: "extra parts — second part is used", header: "Bearer token extra-part", wantToken: "token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := getTokenFromAuthHeader(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

// ---- withIdentity ----

func TestWithIdentity_TableTest(t *testing.T) {
	signer := models.Identity{Address: "0xA", Network: models.Testnet}

	tests := []struct {
		name         string
		authHeader   string
		parseFn      func(ctx context.Context, s string) (models.Token, error)
		wantStatus   int
		wantNext     bool
		wantIdentity models.Identity
		wantParsed   bool
	}{
		{
			name:       "no header → anonymous",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "header without token → 401",
			authHeader: "Bearer",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token → identity in context",
			authHeader: "Bearer good",
			parseFn: func(_ context.Context, s string) (models.Token, error) {
				return models.Token{SignedString: s, Identity: signer}, nil
			},
			wantStatus:   http.StatusOK,
			wantNext:     true,
			wantIdentity: signer,
			wantParsed:   true,
		},
		{
			name:       "expired token → 401",
			authHeader: "Bearer old",
			parseFn: func(_ context.Context, _ string) (models.Token, error) {
				return models.Token{}, service.ErrTokenIsExpired
			},
			wantStatus: http.StatusUnauthorized,
			wantParsed: true,
		},
		{
			name:       "invalid token → 401",
			authHeader: "Bearer forged",
			parseFn: func(_ context.Context, _ string) (models.Token, error) {
				return models.Token{}, service.ErrInvalidToken
			},
			wantStatus: http.StatusUnauthorized,
			wantParsed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockIdentityService{parseFn: tt.parseFn}
			h := newHandlerWithIdentity(svc)

			nextCalled := false
			var got models.Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				got, _ = utils.IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/vaults/v1", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			h.withIdentity(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantNext, nextCalled)
			assert.Equal(t, tt.wantIdentity, got)
			assert.Equal(t, tt.wantParsed, svc.calls == 1)
		})
	}
}

// ---- requireIdentity ----

func TestRequireIdentity(t *testing.T) {
	h := newTestHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("anonymous → 401", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.requireIdentity(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), ErrIdentityRequired.Error())
	})

	t.Run("identity present → next", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(utils.WithIdentity(req.Context(), models.Identity{Address: "0xA"}))

		rr := httptest.NewRecorder()
		h.requireIdentity(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/service"
)

// errorStatusMap lists the transport status of every error a handler can
// surface. Entries must not overlap: no error in the table wraps another.
var errorStatusMap = map[error]int{
	service.ErrInvalidAddress: http.StatusBadRequest,
	service.ErrValidation:     http.StatusBadRequest,
	ErrInvalidJSON:            http.StatusBadRequest,
	ErrInvalidStatusFilter:    http.StatusBadRequest,

	service.ErrInvalidToken:       http.StatusUnauthorized,
	service.ErrTokenIsExpired:     http.StatusUnauthorized,
	ErrIdentityRequired:           http.StatusUnauthorized,
	ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	ErrEmptyToken:                 http.StatusUnauthorized,

	service.ErrUnknownSigner: http.StatusForbidden,

	service.ErrNotFound: http.StatusNotFound,

	service.ErrAlreadyTerminal: http.StatusConflict,
	service.ErrQuorumNotMet:    http.StatusConflict,

	service.ErrBroadcast:         http.StatusBadGateway,
	service.ErrLedgerUnavailable: http.StatusBadGateway,

	service.ErrStorage: http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and answers with its mapped status. Internal failures
// are reported with the generic status text only.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFromError(err)

	log := logger.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg(msg)
	} else {
		log.Warn().Err(err).Int("status", status).Msg(msg)
	}

	if status == http.StatusInternalServerError {
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

package grpc

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodeMap = map[error]codes.Code{
	service.ErrInvalidAddress: codes.InvalidArgument,
	service.ErrValidation:     codes.InvalidArgument,

	service.ErrInvalidToken:   codes.Unauthenticated,
	service.ErrTokenIsExpired: codes.Unauthenticated,

	service.ErrUnknownSigner: codes.PermissionDenied,

	service.ErrNotFound: codes.NotFound,

	service.ErrAlreadyTerminal: codes.FailedPrecondition,
	service.ErrQuorumNotMet:    codes.FailedPrecondition,

	service.ErrBroadcast:         codes.Unavailable,
	service.ErrLedgerUnavailable: codes.Unavailable,

	service.ErrStorage: codes.Internal,
}

func codeFromError(err error) codes.Code {
	for target, code := range errorCodeMap {
		if errors.Is(err, target) {
			return code
		}
	}
	return codes.Internal
}

// toStatus logs err and converts it to a gRPC status error. Internal failures
// carry no details.
func toStatus(ctx context.Context, err error, msg string) error {
	code := codeFromError(err)

	log := logger.FromContext(ctx)
	if code == codes.Internal || code == codes.Unavailable {
		log.Err(err).Str("code", code.String()).Msg(msg)
	} else {
		log.Warn().Err(err).Str("code", code.String()).Msg(msg)
	}

	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

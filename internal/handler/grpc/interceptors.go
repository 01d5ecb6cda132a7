package grpc

import (
	"context"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	traceIDKey       = "x-trace-id"
	authorizationKey = "authorization"
)

// mutatingMethods act on behalf of the caller and require an identity.
var mutatingMethods = map[string]struct{}{
	ProposeTransactionMethod: {},
	SignTransactionMethod:    {},
	ExecuteTransactionMethod: {},
	FailTransactionMethod:    {},
}

// withTraceID attaches a child logger carrying the trace id from the
// "x-trace-id" metadata, or a generated one, and sends the id back in the
// response header.
func (h *Handler) withTraceID(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	traceID := firstMetadataValue(ctx, traceIDKey)
	if traceID == "" {
		traceID = uuid.NewString()
	}

	l := h.logger.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", traceID)
	})

	_ = grpc.SetHeader(ctx, metadata.Pairs(traceIDKey, traceID))

	return handler(l.WithContext(ctx), req)
}

func (h *Handler) withLogging(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	logger.FromContext(ctx).Info().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("duration", time.Since(start)).
		Send()

	return resp, err
}

// withIdentity resolves the caller's identity from the "authorization"
// metadata. Calls without it proceed anonymously unless the method mutates
// state; an unparsable or rejected token always fails with Unauthenticated.
func (h *Handler) withIdentity(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	header := firstMetadataValue(ctx, authorizationKey)
	if header == "" {
		if _, mutating := mutatingMethods[info.FullMethod]; mutating {
			return nil, status.Error(codes.Unauthenticated, "identity token required")
		}
		return handler(ctx, req)
	}

	tokenString, err := utils.ParseBearerToken(header)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	token, err := h.services.IdentityService.ParseToken(ctx, tokenString)
	if err != nil {
		return nil, toStatus(ctx, err, "identity token rejected")
	}

	log := logger.FromContext(ctx).With().Str("identity", token.Identity.Address).Logger()
	return handler(log.WithContext(utils.WithIdentity(ctx, token.Identity)), req)
}

func firstMetadataValue(ctx context.Context, key string) string {
	if values := metadata.ValueFromIncomingContext(ctx, key); len(values) > 0 {
		return values[0]
	}
	return ""
}

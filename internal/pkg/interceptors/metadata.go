package interceptors

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors/constants"
)

var contextKeys = map[string]any{
	constants.HeaderXRequestId:      constants.ContextKeyRequestID,
	constants.HeaderXIdempotencyKey: constants.ContextKeyIdempotencyKey,
	constants.HeaderXSessionID:      constants.ContextKeySessionID,
}

// WithRequestMetadata stores the request id and idempotency key both as typed
// context values and as outgoing gRPC metadata.
func WithRequestMetadata(ctx context.Context, requestID, idempotencyKey string) context.Context {
	ctx = context.WithValue(ctx, constants.ContextKeyRequestID, requestID)
	ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)
	return metadata.AppendToOutgoingContext(ctx,
		constants.HeaderXRequestId, requestID,
		constants.HeaderXIdempotencyKey, idempotencyKey,
	)
}

// GetMetadataValue looks key up in the typed context values first, then in the
// incoming and outgoing gRPC metadata.
func GetMetadataValue(ctx context.Context, key string) string {
	if ck, ok := contextKeys[key]; ok {
		if v, ok := ctx.Value(ck).(string); ok && v != "" {
			return v
		}
	}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(key); len(vals) > 0 {
			return vals[0]
		}
	}

	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		if vals := md.Get(key); len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

func RequestID(ctx context.Context) string {
	return GetMetadataValue(ctx, constants.HeaderXRequestId)
}

func IdempotencyKey(ctx context.Context) string {
	return GetMetadataValue(ctx, constants.HeaderXIdempotencyKey)
}

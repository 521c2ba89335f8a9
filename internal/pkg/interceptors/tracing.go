package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors/constants"
)

// TraceServerInterceptor lifts x-request-id and x-idempotency-key from incoming
// metadata into the handler context and logs the call.
func TraceServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		requestID := ""
		idempotencyKey := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(constants.HeaderXRequestId); len(ids) > 0 {
				requestID = ids[0]
			}
			if ids := md.Get(constants.HeaderXIdempotencyKey); len(ids) > 0 {
				idempotencyKey = ids[0]
			}
		}
		newCtx := context.WithValue(ctx, constants.ContextKeyRequestID, requestID)
		newCtx = context.WithValue(newCtx, constants.ContextKeyIdempotencyKey, idempotencyKey)

		slog.DebugContext(newCtx, "grpc call",
			"method", info.FullMethod,
			"request_id", requestID,
			"idempotency_key", idempotencyKey,
		)

		return handler(newCtx, req)
	}
}

package interceptors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors/constants"
)

func TestWithRequestMetadata(t *testing.T) {
	ctx := WithRequestMetadata(context.Background(), "req-1", "idem-1")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "idem-1", IdempotencyKey(ctx))

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"idem-1"}, md.Get(constants.HeaderXIdempotencyKey))
}

func TestGetMetadataValue_Incoming(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(constants.HeaderXRequestId, "from-md"))
	assert.Equal(t, "from-md", RequestID(ctx))
	assert.Empty(t, IdempotencyKey(ctx))
}

func TestTraceServerInterceptor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		constants.HeaderXRequestId, "req-9",
		constants.HeaderXIdempotencyKey, "key-9",
	))

	var seen context.Context
	_, err := TraceServerInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
		func(ctx context.Context, _ any) (any, error) {
			seen = ctx
			return nil, nil
		})
	require.NoError(t, err)
	assert.Equal(t, "req-9", seen.Value(constants.ContextKeyRequestID))
	assert.Equal(t, "key-9", seen.Value(constants.ContextKeyIdempotencyKey))
}

package constants

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"
	HeaderXSessionID      = "x-session-id"
	HeaderReplayed        = "Idempotent-Replayed"

	// ContextKeyRequestID is the context key for the request ID.
	ContextKeyRequestID contextKey = HeaderXRequestId
	// ContextKeyIdempotencyKey is the context key for the idempotency key.
	ContextKeyIdempotencyKey contextKey = HeaderXIdempotencyKey
	// ContextKeySessionID is the context key for the guest session ID.
	ContextKeySessionID contextKey = HeaderXSessionID
)

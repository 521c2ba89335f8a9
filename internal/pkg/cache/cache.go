// Package cache stores short-lived checkout state: idempotency replays and the
// in-flight lock that keeps two submissions with the same key from racing.
package cache

import (
	"context"
	"fmt"
	"time"
)

type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get returns "" without error when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	// CompareAndDelete removes key only while it still holds value and
	// reports whether it did.
	CompareAndDelete(ctx context.Context, key string, value string) (bool, error)
	GenerateKey(operation, key string) string
}

func generateKey(serviceName, operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", serviceName, operation, key)
}

package repository

import (
	"context"
	"time"
)

// CacheRepository is the TTL key-value store backing OTP entries, payment
// sessions and elicitation state.
type CacheRepository interface {
	// Set stores a value under the key with the given expiration.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Get returns the value for the key.
	Get(ctx context.Context, key string) (string, error)

	// GetDel atomically reads and deletes the key. Losers of a concurrent
	// consume race observe a not-found error.
	GetDel(ctx context.Context, key string) (string, error)

	// Delete removes the key.
	Delete(ctx context.Context, key string) error

	// SetMulti stores several key-value pairs in one pipeline, all with the
	// same expiration.
	SetMulti(ctx context.Context, items map[string]string, expiration time.Duration) error

	// DeleteMulti removes several keys at once.
	DeleteMulti(ctx context.Context, keys []string) error

	// IsNotFound reports whether the error means the key does not exist.
	IsNotFound(err error) bool
}

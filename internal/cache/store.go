package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidTTL is returned by Set for a non-positive time-to-live.
var ErrInvalidTTL = errors.New("cache: ttl must be positive")

// ErrEmptyKey is returned for an empty cache key.
var ErrEmptyKey = errors.New("cache: key is required")

// Store is a key to payload map with per-entry expiry.
type Store interface {
	// Get returns the payload for key, or ok=false when absent or expired.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)

	// Set replaces the entry for key, expiring ttl from now.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Purge removes every entry.
	Purge(ctx context.Context) error
}

// Entry is one cached payload.
type Entry struct {
	Key       string
	Payload   []byte
	ExpiresAt time.Time
}

// Expired reports whether the entry must no longer be served at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now, for tests that step past an expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func validateSet(key string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return nil
}

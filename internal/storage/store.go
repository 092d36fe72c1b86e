// Package storage keeps per-visitor state: the session token, the cached user record, the cookie
// consent flag and the booking draft. Visitors are identified by the vid cookie.
package storage

import (
	"context"
	"errors"
	"time"
)

const (
	KeyToken   = "session_token"
	KeyUser    = "session_user"
	KeyConsent = "cookie_consent"
	KeyDraft   = "booking_draft"
	KeySubmit  = "booking_submit"
)

var ErrNotFound = errors.New("storage: key not found")

type Store interface {
	Get(ctx context.Context, visitor, key string) ([]byte, error)
	Put(ctx context.Context, visitor, key string, value []byte) error
	Delete(ctx context.Context, visitor string, keys ...string) error
	// Claim sets key unless a claim younger than ttl already holds it, and reports whether the
	// caller got it. It is atomic across every process sharing the store.
	Claim(ctx context.Context, visitor, key string, ttl time.Duration) (bool, error)
	Close() error
}

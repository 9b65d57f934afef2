package ports

import (
	"context"
	"time"
)

// SessionStore manages interactive sign-in sessions.
type SessionStore interface {
	// Create opens a session for the username and returns its opaque id.
	Create(ctx context.Context, username string, ttl time.Duration) (string, error)
	// Lookup resolves a session id to its username, or
	// domain.ErrSessionNotFound when absent or expired.
	Lookup(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// LockoutStore tracks consecutive interactive sign-in failures per username.
type LockoutStore interface {
	IsLockedOut(ctx context.Context, username string) (bool, error)
	// RecordFailure counts one failed attempt and reports whether the
	// username is now locked out.
	RecordFailure(ctx context.Context, username string) (bool, error)
	// Reset clears the failure counter after a successful sign-in.
	Reset(ctx context.Context, username string) error
}

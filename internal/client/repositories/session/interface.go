// Package session persists the bearer token of the current authenticated
// session. The store is a single durable slot: at most one token exists at a
// time, it survives restarts, and its absence means "anonymous".
package session

import (
	"context"
)

// Repository is the durable session slot.
//
// Contract:
//   - Get returns the stored token, or "" when no session exists.
//   - Set stores the token, replacing any previous one.
//   - Clear removes the token and is idempotent.
//
// The slot is written only by the auth flow (on verify/logout) and by the
// transport (on an authorization failure).
type Repository interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

package session

import (
	"context"
	"errors"
)

// Store resolves bearer tokens to user identities. The auth mechanism that
// issues tokens lives outside this repository; the store only keeps the
// token -> user mapping for the session's lifetime.
type Store interface {
	Save(ctx context.Context, token, userID string) error
	Lookup(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

var ErrNotFound = errors.New("session not found")

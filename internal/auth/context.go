package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// Identity is the per-request identity resolved from a session token.
// It is a projection of the sessions→users join, never stored on its own.
type Identity struct {
	TelegramID int64
	UserID     uuid.UUID
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

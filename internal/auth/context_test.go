package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestIdentityFromContextEmpty(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	if ok {
		t.Error("expected no identity on empty context")
	}
}

func TestWithIdentity(t *testing.T) {
	id := Identity{TelegramID: 443621429, UserID: uuid.New()}
	ctx := WithIdentity(context.Background(), id)

	got, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatal("expected identity")
	}
	if got != id {
		t.Errorf("identity = %+v, want %+v", got, id)
	}
}

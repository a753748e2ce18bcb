package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithUserRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := WithUser(context.Background(), User{ID: id, Role: "staff"})

	user, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected user in context")
	}
	if user.ID != id || user.Role != "staff" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no user in empty context")
	}
}

func TestFromContextNilUUID(t *testing.T) {
	ctx := WithUser(context.Background(), User{})
	if _, ok := FromContext(ctx); ok {
		t.Fatal("expected nil-id user to be treated as absent")
	}
}

package identity

import (
	"context"

	"github.com/google/uuid"
)

// User is the authenticated principal attached to a request.
type User struct {
	ID   uuid.UUID
	Role string
}

type ctxKey string

const userKey ctxKey = "booking.user"

// WithUser stores the authenticated user in context.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// FromContext extracts the authenticated user if present.
func FromContext(ctx context.Context) (User, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return User{}, false
	}
	user, ok := val.(User)
	return user, ok && user.ID != uuid.Nil
}

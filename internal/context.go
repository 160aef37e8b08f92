package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/shopfront/internal/core/role"
)

type ctxKey string

const ContextUserKey ctxKey = "principal"

// User is the authenticated principal attached to a request.
type User struct {
	ID    int64
	Email string
	Role  role.Role
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == role.Admin
}

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(ContextUserKey).(*User)
	return user, ok && user != nil
}

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

package internal

import (
	"context"
	"time"

	"github.com/clinicore/access-management/internal/catalog"
)

// Identity is the authenticated caller as seen by the access engine: a
// username plus the role the token was issued for.
type Identity struct {
	Username string
	Role     catalog.Role
}

type ctxKey string

const identityKey ctxKey = "identity"

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if
// duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

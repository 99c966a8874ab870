package user

import "context"

type ctxKey string

// contextUserKey carries the identity resolved by the authentication
// middleware. Handlers read it through FromContext and pass the identity into
// services explicitly.
const contextUserKey ctxKey = "user"

// FromContext returns the request identity, if one was resolved.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok
}

// NewContext stores the resolved identity for downstream handlers.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

// Package session carries the caller's identity through a request context.
package session

import "context"

// Identity describes who is calling. SessionID is always set; UserID and
// Token are present only for authenticated users.
type Identity struct {
	SessionID string
	UserID    string
	Token     string
}

// Scope is the key under which per-user state such as the last order id is
// stored. Anonymous sessions fall back to the session id.
func (i Identity) Scope() string {
	if i.UserID != "" {
		return "user:" + i.UserID
	}
	return "session:" + i.SessionID
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

package context

import "context"

// UserContext identifies the authenticated API caller.
type UserContext struct {
	Subject string
	Name    string
	Admin   bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context, or nil.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetSubject returns the authenticated subject or empty string.
func GetSubject(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.Subject
	}
	return ""
}

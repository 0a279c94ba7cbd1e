// Package audit carries the acting user identity through context so that
// services can stamp CreatedBy / LastModifiedBy without knowing anything
// about authentication.
package audit

import "context"

type contextKey struct{}

// System is stamped when an operation runs outside a user request
// (workers, seeds, migrations).
const System = "system"

// WithUser returns a context carrying the acting user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID extracts the acting user id, falling back to System.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey{}).(string); ok && v != "" {
		return v
	}
	return System
}

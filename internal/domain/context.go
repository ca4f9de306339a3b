// Package domain provides core business types and context helpers for Courier.
//
// Context helpers centralize request-scoped data access so authenticated
// principal handling stays consistent throughout the codebase.
package domain

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// userContextKey stores the authenticated principal in context.
	userContextKey contextKey = iota
)

// User represents the authenticated principal stored in context.
// It is supplied by the host authentication framework; this service
// only consumes the id for log-entry lineage.
type User struct {
	ID    uuid.UUID
	Email string
}

// NewContextWithUser returns a new context carrying the principal.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the principal from the context, or nil when
// the request is unauthenticated.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey).(*User)
	return user
}

// UserIDFromContext returns the principal's id, or nil when absent.
// Useful for optional lineage fields. A zero id also yields nil: a
// token-authenticated caller without a forwarded identity is a real
// principal but not an actor any email should be attributed to.
func UserIDFromContext(ctx context.Context) *uuid.UUID {
	user := UserFromContext(ctx)
	if user == nil || user.ID == uuid.Nil {
		return nil
	}
	id := user.ID
	return &id
}

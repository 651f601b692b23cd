package httpx

import (
	"context"
	"net/http"
)

type contextKey int

const (
	principalKey contextKey = iota
	requestIDKey
)

// principal is the authenticated caller stored by AuthMiddleware.
type principal struct {
	userID string
	role   string
}

func principalFrom(ctx context.Context) principal {
	p, _ := ctx.Value(principalKey).(principal)
	return p
}

// UserIDFrom returns the token subject, or "" for anonymous requests.
func UserIDFrom(r *http.Request) string {
	return principalFrom(r.Context()).userID
}

// RoleFrom returns the token role, or "" for anonymous requests.
func RoleFrom(r *http.Request) string {
	return principalFrom(r.Context()).role
}

// RequestIDFrom retrieves the request ID set by RequestIDMiddleware.
func RequestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

func ContextWithUser(ctx context.Context, userID, role string) context.Context {
	return context.WithValue(ctx, principalKey, principal{userID: userID, role: role})
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

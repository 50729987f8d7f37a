package server

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is the type used for request context keys.
type ContextKey string

const CtxUsername ContextKey = "username"

// WithUser stores the caller named by the X-User header in the request
// context. Requests without the header act as "system".
func WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimSpace(r.Header.Get("X-User"))
		if user == "" {
			user = "system"
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxUsername, user)))
	})
}

// Username returns the caller stored by WithUser.
func Username(r *http.Request) string {
	if u, ok := r.Context().Value(CtxUsername).(string); ok && u != "" {
		return u
	}
	return "system"
}

// Package auth resolves bearer tokens to user identities.
//
// Sessions are created by the external auth provider; this package only
// reads them. A request without a valid session is not rejected here:
// handlers decide whether the operation needs a user.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// ContextKey type for context keys
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
)

// SessionStore looks up sessions written by the auth provider.
type SessionStore interface {
	GetSessionByToken(ctx context.Context, token string) (core.Session, error)
}

// Middleware resolves the Authorization header into a user ID on the
// request context. Missing, unknown, and expired tokens all pass through
// anonymously.
type Middleware struct {
	store SessionStore
	now   func() time.Time
}

// NewMiddleware creates a new session resolution middleware
func NewMiddleware(store SessionStore) *Middleware {
	return &Middleware{store: store, now: time.Now}
}

// Middleware returns HTTP middleware that attaches the user ID to the context
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.store.GetSessionByToken(r.Context(), token)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}
		if !session.ExpiresAt.After(m.now()) {
			slog.InfoContext(r.Context(), "Expired session presented", "session_id", session.ID)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, session.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID extracts the authenticated user ID from context. The second
// return value is false for anonymous requests.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

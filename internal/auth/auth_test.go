package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type fakeSessionStore struct {
	sessions map[string]core.Session
}

func (f *fakeSessionStore) GetSessionByToken(_ context.Context, token string) (core.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return core.Session{}, storage.ErrNotFound
	}
	return s, nil
}

func resolveUser(t *testing.T, m *Middleware, authHeader string) (string, bool) {
	t.Helper()

	var gotID string
	var gotOK bool
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return gotID, gotOK
}

func TestMiddlewareResolvesValidToken(t *testing.T) {
	now := time.Now()
	m := NewMiddleware(&fakeSessionStore{sessions: map[string]core.Session{
		"tok-1": {ID: "sess-1", Token: "tok-1", ExpiresAt: now.Add(time.Hour), UserID: "user-1"},
	}})

	id, ok := resolveUser(t, m, "Bearer tok-1")
	if !ok || id != "user-1" {
		t.Fatalf("expected user-1, got %q (ok=%v)", id, ok)
	}
}

func TestMiddlewarePassesAnonymousRequests(t *testing.T) {
	m := NewMiddleware(&fakeSessionStore{sessions: map[string]core.Session{}})

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"unknown token", "Bearer nope"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"malformed", "Bearer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if id, ok := resolveUser(t, m, tc.header); ok {
				t.Fatalf("expected anonymous, got user %q", id)
			}
		})
	}
}

func TestMiddlewareRejectsExpiredSession(t *testing.T) {
	now := time.Now()
	m := NewMiddleware(&fakeSessionStore{sessions: map[string]core.Session{
		"tok-old": {ID: "sess-old", Token: "tok-old", ExpiresAt: now.Add(-time.Minute), UserID: "user-1"},
	}})

	if id, ok := resolveUser(t, m, "Bearer tok-old"); ok {
		t.Fatalf("expected anonymous for expired session, got user %q", id)
	}
}

func TestUserIDMissing(t *testing.T) {
	if _, ok := UserID(context.Background()); ok {
		t.Fatal("expected no user on empty context")
	}
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

type stubSessionStore struct {
	sessions map[string]string
}

func (s *stubSessionStore) Create(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "", nil
}

func (s *stubSessionStore) Lookup(_ context.Context, id string) (string, error) {
	u, ok := s.sessions[id]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return u, nil
}

func (s *stubSessionStore) Delete(_ context.Context, _ string) error { return nil }

func runSession(t *testing.T, store *stubSessionStore, cookie *http.Cookie) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/account/login", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Session(store)
	if err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c); err != nil {
		t.Fatalf("session middleware must never reject: %v", err)
	}
	return c
}

func TestSession_ValidCookie(t *testing.T) {
	store := &stubSessionStore{sessions: map[string]string{"sess-1": "alice"}}

	c := runSession(t, store, &http.Cookie{Name: SessionCookie, Value: "sess-1"})

	if c.Get("session_username") != "alice" {
		t.Fatalf("expected username in context, got %v", c.Get("session_username"))
	}
	if c.Get("session_id") != "sess-1" {
		t.Fatalf("expected session id in context, got %v", c.Get("session_id"))
	}
}

func TestSession_NoCookieIsAnonymous(t *testing.T) {
	store := &stubSessionStore{sessions: map[string]string{}}

	c := runSession(t, store, nil)

	if c.Get("session_username") != nil {
		t.Fatalf("expected anonymous context, got %v", c.Get("session_username"))
	}
}

func TestSession_StaleCookieIsAnonymous(t *testing.T) {
	store := &stubSessionStore{sessions: map[string]string{}}

	c := runSession(t, store, &http.Cookie{Name: SessionCookie, Value: "expired"})

	if c.Get("session_username") != nil {
		t.Fatalf("expected anonymous context, got %v", c.Get("session_username"))
	}
}

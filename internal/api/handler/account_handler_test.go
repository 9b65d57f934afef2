package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pegasusdeploy/platform-api/internal/api/middleware"
	"github.com/pegasusdeploy/platform-api/internal/core/domain"
	"github.com/pegasusdeploy/platform-api/internal/core/ports"
)

type stubAccountService struct {
	registerFn   func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
	signInFn     func(ctx context.Context, in ports.SignInInput) (*ports.SignInOutcome, error)
	signOutFn    func(ctx context.Context, sessionID string) error
	issueTokenFn func(ctx context.Context, username, password string) (*ports.TokenResult, error)
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) SignIn(ctx context.Context, in ports.SignInInput) (*ports.SignInOutcome, error) {
	return s.signInFn(ctx, in)
}

func (s *stubAccountService) SignOut(ctx context.Context, sessionID string) error {
	return s.signOutFn(ctx, sessionID)
}

func (s *stubAccountService) IssueToken(ctx context.Context, username, password string) (*ports.TokenResult, error) {
	return s.issueTokenFn(ctx, username, password)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func formContext(e *echo.Echo, target string, values url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAccountHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			if in.Username != "alice" || in.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.RegisterResult{Account: &domain.Account{Username: in.Username}}, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/register", url.Values{
		"UserName": {"alice"},
		"Email":    {"alice@example.com"},
		"Password": {"s3cret-pass"},
	})
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/account/login" {
		t.Fatalf("expected redirect to login, got %q", loc)
	}
}

func TestAccountHandler_Register_WeakPassword(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return nil, &domain.CredentialError{Descriptions: []string{"password must contain at least one digit"}}
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/register", url.Values{
		"UserName": {"alice"},
		"Email":    {"alice@example.com"},
		"Password": {"weakpassword"},
	})
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "at least one digit") {
		t.Fatalf("expected policy description in form, got %q", rec.Body.String())
	}
}

func TestAccountHandler_Register_Duplicate(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return nil, domain.ErrAccountExists
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/register", url.Values{
		"UserName": {"alice"},
		"Email":    {"alice@example.com"},
		"Password": {"s3cret-pass"},
	})
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Register_AuthenticatedRedirects(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/register", url.Values{})
	c.Set("session_username", "alice")

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to landing page, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestAccountHandler_Login_SetsSessionCookie(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		signInFn: func(ctx context.Context, in ports.SignInInput) (*ports.SignInOutcome, error) {
			if !in.RememberMe {
				t.Fatalf("expected remember me to bind")
			}
			return &ports.SignInOutcome{
				Result:    domain.SignInResult{Succeeded: true},
				SessionID: "sess-42",
			}, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/login", url.Values{
		"UserName":   {"alice"},
		"Password":   {"s3cret-pass"},
		"RememberMe": {"true"},
	})
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			cookie = ck
		}
	}
	if cookie == nil || cookie.Value != "sess-42" {
		t.Fatalf("expected session cookie, got %+v", cookie)
	}
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestAccountHandler_Login_HonorsLocalReturnURL(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		signInFn: func(ctx context.Context, in ports.SignInInput) (*ports.SignInOutcome, error) {
			return &ports.SignInOutcome{Result: domain.SignInResult{Succeeded: true}, SessionID: "sess-1"}, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/login?ReturnUrl=/channels", url.Values{
		"UserName": {"alice"},
		"Password": {"s3cret-pass"},
	})
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/channels" {
		t.Fatalf("expected redirect to /channels, got %q", loc)
	}
}

func TestAccountHandler_Login_RejectsExternalReturnURL(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		signInFn: func(ctx context.Context, in ports.SignInInput) (*ports.SignInOutcome, error) {
			return &ports.SignInOutcome{Result: domain.SignInResult{Succeeded: true}, SessionID: "sess-1"}, nil
		},
	}
	handler := NewAccountHandler(stub)

	for _, target := range []string{
		"/account/login?ReturnUrl=https://evil.example",
		"/account/login?ReturnUrl=//evil.example",
	} {
		c, rec := formContext(e, target, url.Values{
			"UserName": {"alice"},
			"Password": {"s3cret-pass"},
		})
		if err := handler.Login(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
			t.Fatalf("%s: expected redirect to landing page, got %q", target, loc)
		}
	}
}

func TestAccountHandler_Login_LockedOut(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		signInFn: func(ctx context.Context, in ports.SignInInput) (*ports.SignInOutcome, error) {
			return &ports.SignInOutcome{Result: domain.SignInResult{LockedOut: true}}, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/login", url.Values{
		"UserName": {"alice"},
		"Password": {"wrong"},
	})
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "locked out") {
		t.Fatalf("expected locked-out message, got %q", rec.Body.String())
	}
}

func TestAccountHandler_Login_TwoFactorStaysGeneric(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		signInFn: func(ctx context.Context, in ports.SignInInput) (*ports.SignInOutcome, error) {
			return &ports.SignInOutcome{Result: domain.SignInResult{RequiresTwoFactor: true}}, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/login", url.Values{
		"UserName": {"alice"},
		"Password": {"s3cret-pass"},
	})
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "2FA") || strings.Contains(body, "factor") {
		t.Fatalf("two-factor state must not leak to the form: %q", body)
	}
	if !strings.Contains(body, "invalid login attempt") {
		t.Fatalf("expected generic failure line, got %q", body)
	}
}

func TestAccountHandler_Login_MissingFields(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		signInFn: func(ctx context.Context, in ports.SignInInput) (*ports.SignInOutcome, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/login", url.Values{"UserName": {"alice"}})
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestAccountHandler_Logout(t *testing.T) {
	e := newEcho()
	var deleted string
	stub := &stubAccountService{
		signOutFn: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	}
	handler := NewAccountHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/account/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session_id", "sess-42")
	c.Set("session_username", "alice")

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if deleted != "sess-42" {
		t.Fatalf("expected session sess-42 to be deleted, got %q", deleted)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to landing page, got %d", rec.Code)
	}
	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			cookie = ck
		}
	}
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected expired session cookie, got %+v", cookie)
	}
}

func TestAccountHandler_CreateToken_Success(t *testing.T) {
	e := newEcho()
	expires := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	stub := &stubAccountService{
		issueTokenFn: func(ctx context.Context, username, password string) (*ports.TokenResult, error) {
			if username != "alice" || password != "s3cret-pass" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.TokenResult{Token: "token123", ExpiresAt: expires}, nil
		},
	}
	handler := NewAccountHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(`{"username":"alice","password":"s3cret-pass"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
	if _, ok := resp["expiration"].(string); !ok {
		t.Fatalf("expected expiration in response: %v", resp)
	}
}

func TestAccountHandler_CreateToken_BadCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		issueTokenFn: func(ctx context.Context, username, password string) (*ports.TokenResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAccountHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateToken(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestAccountHandler_CreateToken_MalformedPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		issueTokenFn: func(ctx context.Context, username, password string) (*ports.TokenResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAccountHandler(stub)

	for _, body := range []string{"not-json", `{"username":"alice"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.CreateToken(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %v", body, err)
		}
		if he.Message != "invalid username or password" {
			t.Fatalf("%s: expected generic message, got %v", body, he.Message)
		}
	}
}

func TestAccountHandler_Register_GrantFailureFlashesNotice(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return &ports.RegisterResult{
				Account:         &domain.Account{Username: in.Username},
				RoleGrantErrors: []string{"failed to grant the administrator role", "role store unavailable"},
			}, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := formContext(e, "/account/register", url.Values{
		"UserName": {"alice"},
		"Email":    {"alice@example.com"},
		"Password": {"s3cret-pass"},
	})
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/account/login" {
		t.Fatalf("grant failure must not block the redirect, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	var flash *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == flashCookie {
			flash = ck
		}
	}
	if flash == nil || flash.Value == "" {
		t.Fatalf("expected flash cookie with grant messages")
	}

	// The next login page load surfaces the messages and clears the cookie.
	req := httptest.NewRequest(http.MethodGet, "/account/login", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: flash.Value})
	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(req, rec2)

	if err := handler.LoginForm(c2); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec2.Body.String()
	if !strings.Contains(body, "failed to grant the administrator role") || !strings.Contains(body, "role store unavailable") {
		t.Fatalf("expected grant messages on the login page, got %q", body)
	}
	var cleared *http.Cookie
	for _, ck := range rec2.Result().Cookies() {
		if ck.Name == flashCookie {
			cleared = ck
		}
	}
	if cleared == nil || cleared.MaxAge != -1 {
		t.Fatalf("expected flash cookie to be expired, got %+v", cleared)
	}
}

func TestAccountHandler_Forms_CarryAntiForgeryToken(t *testing.T) {
	e := newEcho()
	handler := NewAccountHandler(&stubAccountService{})

	pages := []struct {
		name string
		fn   func(echo.Context) error
	}{
		{"register", handler.RegisterForm},
		{"login", handler.LoginForm},
	}
	for _, page := range pages {
		req := httptest.NewRequest(http.MethodGet, "/account/"+page.name, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("csrf", "tok-123")

		if err := page.fn(c); err != nil {
			t.Fatalf("%s: handler error: %v", page.name, err)
		}
		if !strings.Contains(rec.Body.String(), `name="_csrf" value="tok-123"`) {
			t.Fatalf("%s: expected hidden anti-forgery field, got %q", page.name, rec.Body.String())
		}
	}
}

func TestSafeReturnURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/channels", "/channels"},
		{"/account", "/account"},
		{"//evil.example", "/"},
		{"https://evil.example", "/"},
		{"channels", "/"},
	}
	for _, tc := range cases {
		if got := safeReturnURL(tc.in); got != tc.want {
			t.Errorf("safeReturnURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

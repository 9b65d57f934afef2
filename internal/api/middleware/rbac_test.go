package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

type stubAccountRepo struct {
	accounts map[string]*domain.Account
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	return account, nil
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	a, ok := r.accounts[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

func (r *stubAccountRepo) AddRole(_ context.Context, _, _ string) error { return nil }

func (r *stubAccountRepo) ClaimFirstAccount(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func runRequireRole(t *testing.T, repo *stubAccountRepo, username string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/channels", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if username != "" {
		c.Set("username", username)
	}

	mw := RequireRole(repo, domain.RoleAdministrator)
	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return rec, err
}

func TestRequireRole_Administrator(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]*domain.Account{
		"alice": {Username: "alice", Roles: []string{domain.RoleAdministrator}},
	}}

	rec, err := runRequireRole(t, repo, "alice")
	if err != nil {
		t.Fatalf("expected pass-through, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_MissingClaims(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]*domain.Account{}}

	_, err := runRequireRole(t, repo, "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestRequireRole_RoleAbsent(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]*domain.Account{
		"bob": {Username: "bob"},
	}}

	rec, err := runRequireRole(t, repo, "bob")
	if err != nil {
		t.Fatalf("expected handled response, got %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_UnknownAccount(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]*domain.Account{}}

	rec, err := runRequireRole(t, repo, "ghost")
	if err != nil {
		t.Fatalf("expected handled response, got %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

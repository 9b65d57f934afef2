package ports

import (
	"context"
	"time"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterResult reports the outcome of a successful account creation.
// RoleGrantErrors is non-empty when the bootstrap administrator grant was
// attempted and failed; the creation itself still stands.
type RegisterResult struct {
	Account         *domain.Account
	BootstrapAdmin  bool
	RoleGrantErrors []string
}

// SignInInput carries the interactive login form fields.
type SignInInput struct {
	Username   string
	Password   string
	RememberMe bool
}

// SignInOutcome is the interactive sign-in result plus, on success, the
// session id to set as a cookie.
type SignInOutcome struct {
	Result    domain.SignInResult
	SessionID string
}

// TokenResult is a freshly issued bearer token and its expiry.
type TokenResult struct {
	Token     string
	ExpiresAt time.Time
}

// AccountService orchestrates registration, sign-in, sign-out and bearer
// token issuance.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	SignIn(ctx context.Context, in SignInInput) (*SignInOutcome, error)
	SignOut(ctx context.Context, sessionID string) error
	IssueToken(ctx context.Context, username, password string) (*TokenResult, error)
}

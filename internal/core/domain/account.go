package domain

import (
	"errors"
	"strings"
	"time"
)

// RoleAdministrator is granted once, to the first account ever registered.
const RoleAdministrator = "administrator"

var ErrAccountExists = errors.New("account already exists")
var ErrAccountNotFound = errors.New("account not found")
var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrSessionNotFound = errors.New("session not found")

// Account models a registered user of the platform.
type Account struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles"`
	// Disabled blocks interactive and API sign-in ("not allowed").
	Disabled         bool      `json:"disabled"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasRole reports whether the account holds the given role.
func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// SignInResult is the outcome of a password check. Succeeded excludes the
// other flags, but NotAllowed, LockedOut and RequiresTwoFactor may all be
// set on the same attempt.
type SignInResult struct {
	Succeeded         bool
	NotAllowed        bool
	LockedOut         bool
	RequiresTwoFactor bool
}

// FailureReason renders the applicable failure flags as a comma-separated
// string in fixed order. Empty for a plain bad-password failure.
func (r SignInResult) FailureReason() string {
	var parts []string
	if r.NotAllowed {
		parts = append(parts, "not allowed")
	}
	if r.LockedOut {
		parts = append(parts, "locked out")
	}
	if r.RequiresTwoFactor {
		parts = append(parts, "needs 2FA")
	}
	return strings.Join(parts, ", ")
}

// CredentialError aggregates credential-store error descriptions so the
// registration form can surface them verbatim, one per line.
type CredentialError struct {
	Descriptions []string
}

func (e *CredentialError) Error() string {
	return strings.Join(e.Descriptions, "; ")
}

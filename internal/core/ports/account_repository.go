package ports

import (
	"context"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// Create inserts the account. A duplicate username yields
	// domain.ErrAccountExists.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// AddRole grants a role to the account. Granting a role the account
	// already holds is a no-op.
	AddRole(ctx context.Context, accountID, role string) error
	// ClaimFirstAccount atomically claims the one-time first-account marker.
	// It returns true for exactly one caller across all concurrent
	// registrations; every later call returns false.
	ClaimFirstAccount(ctx context.Context, accountID string) (bool, error)
}

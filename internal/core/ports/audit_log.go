package ports

import (
	"context"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

// AuditUnit is a unit of work over the login-attempt audit trail. Appended
// records are buffered until Commit writes them as one atomic batch.
type AuditUnit interface {
	AppendAttempt(attempt *domain.LoginAttempt)
	Commit(ctx context.Context) error
}

// AuditLog opens units of work against the append-only attempt log.
type AuditLog interface {
	Begin() AuditUnit
}

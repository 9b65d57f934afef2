package ports

import (
	"context"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

// EnvVarRepository defines persistence operations for environment variables.
type EnvVarRepository interface {
	Upsert(ctx context.Context, v *domain.EnvironmentVariable) error
	Get(ctx context.Context, key string) (*domain.EnvironmentVariable, error)
	List(ctx context.Context) ([]*domain.EnvironmentVariable, error)
	Delete(ctx context.Context, key string) error
}

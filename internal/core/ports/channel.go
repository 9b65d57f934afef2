package ports

import (
	"context"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

// ChannelRepository defines persistence operations for channels.
type ChannelRepository interface {
	// Create inserts the channel. A duplicate name yields
	// domain.ErrChannelExists.
	Create(ctx context.Context, channel *domain.Channel) (*domain.Channel, error)
	FindByName(ctx context.Context, name string) (*domain.Channel, error)
	List(ctx context.Context) ([]*domain.Channel, error)
}

// ChannelService validates and creates deployment channels.
type ChannelService interface {
	CreateChannel(ctx context.Context, name, domainName string) (*domain.Channel, error)
	ListChannels(ctx context.Context) ([]*domain.Channel, error)
}

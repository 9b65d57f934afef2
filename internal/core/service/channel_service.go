package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
	"github.com/pegasusdeploy/platform-api/internal/core/ports"
)

// ValidationError carries the structured rule violations for a rejected
// channel command.
type ValidationError struct {
	Violations []domain.Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

type channelService struct {
	repo ports.ChannelRepository
	log  zerolog.Logger
}

// NewChannelService returns a ChannelService implementation.
func NewChannelService(repo ports.ChannelRepository, log zerolog.Logger) ports.ChannelService {
	return &channelService{repo: repo, log: log}
}

// CreateChannel validates the proposed channel and persists it. The name and
// domain rules run before any repository call; violations reject the command
// without side effects.
func (s *channelService) CreateChannel(ctx context.Context, name, domainName string) (*domain.Channel, error) {
	ch := domain.Channel{Name: name, Domain: domainName}
	if vs := ch.Validate(); len(vs) > 0 {
		return nil, &ValidationError{Violations: vs}
	}

	created, err := s.repo.Create(ctx, &ch)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("name", created.Name).Str("domain", created.Domain).Msg("channel created")
	return created, nil
}

func (s *channelService) ListChannels(ctx context.Context) ([]*domain.Channel, error) {
	return s.repo.List(ctx)
}

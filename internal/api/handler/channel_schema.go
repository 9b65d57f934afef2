package handler

import (
	"time"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

// The name/domain rules live in the domain validator, not in struct tags:
// they are business rules and their violations are reported as a structured
// list, not a bind failure.
type createChannelRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type channelResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

func toChannelResponse(ch *domain.Channel) channelResponse {
	return channelResponse{
		ID:        ch.ID,
		Name:      ch.Name,
		Domain:    ch.Domain,
		CreatedAt: ch.CreatedAt,
	}
}

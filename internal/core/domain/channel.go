package domain

import (
	"errors"
	"regexp"
	"time"
)

var ErrChannelExists = errors.New("channel already exists")
var ErrChannelNotFound = errors.New("channel not found")

const maxChannelNameLength = 64

var (
	channelNameRe   = regexp.MustCompile(`^[a-zA-Z0-9-_]*$`)
	channelDomainRe = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*\.)+[a-z]{2,}$`)
)

// Channel is a named deployment target bound to a DNS domain.
type Channel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// Violation describes a single failed validation rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the channel's name and domain against the naming rules.
// It is a pure predicate: no lookups, no side effects.
//
// TODO: a Domain already bound to another channel is not rejected here;
// that needs a uniqueness check at the repository layer.
func (c Channel) Validate() []Violation {
	var vs []Violation

	switch {
	case c.Name == "":
		vs = append(vs, Violation{Field: "name", Message: "name is required"})
	case len(c.Name) > maxChannelNameLength:
		vs = append(vs, Violation{Field: "name", Message: "name must be 64 characters or fewer"})
	case !channelNameRe.MatchString(c.Name):
		vs = append(vs, Violation{Field: "name", Message: "name may only contain letters, digits, hyphens and underscores"})
	}

	switch {
	case c.Domain == "":
		vs = append(vs, Violation{Field: "domain", Message: "domain is required"})
	case !channelDomainRe.MatchString(c.Domain):
		vs = append(vs, Violation{Field: "domain", Message: "domain must be a valid DNS name"})
	}

	return vs
}

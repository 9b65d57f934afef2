package domain

import "time"

// AttemptOrigin tags the surface a sign-in attempt came through.
type AttemptOrigin string

const (
	OriginUI  AttemptOrigin = "ui"
	OriginAPI AttemptOrigin = "api"
)

// LoginAttempt is the immutable audit record of a single sign-in try.
// Exactly one is appended per attempt, successful or not.
type LoginAttempt struct {
	Origin        AttemptOrigin
	Username      string
	Succeeded     bool
	FailureReason string
	At            time.Time
}

// NewLoginAttempt builds the audit record for a sign-in outcome. The failure
// reason is synthesized from the result flags; it is empty on success.
func NewLoginAttempt(origin AttemptOrigin, username string, result SignInResult) *LoginAttempt {
	a := &LoginAttempt{
		Origin:    origin,
		Username:  username,
		Succeeded: result.Succeeded,
		At:        time.Now().UTC(),
	}
	if !result.Succeeded {
		a.FailureReason = result.FailureReason()
	}
	return a
}

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/pegasusdeploy/platform-api/internal/core/ports"
)

// SessionCookie is the interactive session cookie name.
const SessionCookie = "platform_session"

// Session resolves the session cookie, if any, and injects the signed-in
// username and session id into the request context. It never rejects: the
// account handlers decide what an anonymous or authenticated caller may do.
func Session(sessions ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			username, err := sessions.Lookup(c.Request().Context(), cookie.Value)
			if err != nil {
				// Stale cookie: treat the caller as anonymous.
				return next(c)
			}

			c.Set("session_id", cookie.Value)
			c.Set("session_username", username)
			return next(c)
		}
	}
}

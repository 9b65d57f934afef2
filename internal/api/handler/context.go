package handler

import "github.com/labstack/echo/v4"

// currentUsername returns the signed-in username injected by the Session
// middleware, or "" for an anonymous caller.
func currentUsername(c echo.Context) string {
	username, _ := c.Get("session_username").(string)
	return username
}

// currentSessionID returns the validated session id, or "".
func currentSessionID(c echo.Context) string {
	id, _ := c.Get("session_id").(string)
	return id
}

// csrfToken returns the anti-forgery token issued by the CSRF middleware.
func csrfToken(c echo.Context) string {
	token, _ := c.Get("csrf").(string)
	return token
}

package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// flashCookie carries one-shot notices across the post-registration redirect.
const flashCookie = "platform_flash"

// setFlash stores the messages for the next interactive page load.
func setFlash(c echo.Context, msgs []string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(strings.Join(msgs, "\n")),
		Path:     "/account",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns any pending notices and expires the cookie.
func takeFlash(c echo.Context) []string {
	cookie, err := c.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/account",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	decoded, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	return strings.Split(decoded, "\n")
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// AntiForgeryField is the form field carrying the anti-forgery token.
const AntiForgeryField = "_csrf"

// AntiForgery protects the interactive form endpoints against cross-site
// request forgery. The token rides a cookie and must be echoed back as a
// hidden form field; the JSON token endpoint is registered outside this
// middleware and stays exempt.
func AntiForgery() echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:" + AntiForgeryField,
		CookieName:     "_csrf",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "invalid anti-forgery token")
		},
	})
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pegasusdeploy/platform-api/internal/core/ports"
)

// RequireRole loads the authenticated account and enforces role membership.
// Tokens deliberately carry no role claim, so grants and revocations take
// effect immediately instead of at token expiry.
func RequireRole(repo ports.AccountRepository, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get("username").(string)
			if username == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			acct, err := repo.FindByUsername(c.Request().Context(), username)
			if err != nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			if !acct.HasRole(role) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

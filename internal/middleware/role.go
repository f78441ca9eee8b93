package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose role claim (stored by JWTAuth) is not
// one of roles with 403 Forbidden.  With no roles it accepts everyone, so
// it can always be installed after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	if len(roles) == 0 {
		return passthrough
	}
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the authenticated user
// holds at least one of the given roles.  Role names correspond to the
// values in the token's "roles" claim.  Membership is checked against the
// claim list populated by JWTAuth; a missing or non-matching claim aborts
// the request with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			held, ok := c.Get(CtxRoles).([]string)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			for _, r := range held {
				if allowed[r] {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}

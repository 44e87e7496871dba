package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StampSource resolves the current security stamp for a user.  The
// credential store implements it.
type StampSource interface {
	SecurityStamp(ctx context.Context, username string) (string, error)
}

// SecurityStamp returns a middleware that compares the token's stamp claim
// against the stored stamp for the subject.  The stamp rotates on every
// credential change, so a token minted before a password change fails this
// check even though its signature and expiry are still valid.  Must run
// after JWTAuth.
func SecurityStamp(users StampSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get(CtxUsername).(string)
			claimed, _ := c.Get(CtxStamp).(string)
			if username == "" || claimed == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			current, err := users.SecurityStamp(c.Request().Context(), username)
			if err != nil || current != claimed {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token no longer valid"})
			}
			return next(c)
		}
	}
}

// Package middleware contains reusable HTTP middleware: bearer-token
// validation, role enforcement, security-stamp checking and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skovalev/authcore/internal/token"
)

// Context keys populated by JWTAuth for downstream middleware and handlers.
const (
	CtxUsername = "username"
	CtxRoles    = "roles"
	CtxStamp    = "stamp"
)

// JWTAuth returns an Echo middleware that validates a Bearer token and
// injects the token's subject, role and stamp claims into the request
// context.  The token service must share the secret, issuer and audience
// used at issue time.  Rejections carry no detail beyond a generic message.
func JWTAuth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Validate enforces the HMAC signing method, signature,
			// issuer, audience and expiry in one place.
			claims, err := tokens.Validate(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxUsername, claims.Subject)
			c.Set(CtxRoles, claims.Roles)
			c.Set(CtxStamp, claims.Stamp)
			return next(c)
		}
	}
}

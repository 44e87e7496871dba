// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/skovalev/authcore/internal/config"
	"github.com/skovalev/authcore/internal/handler"
	"github.com/skovalev/authcore/internal/middleware"
	"github.com/skovalev/authcore/internal/service"
	"github.com/skovalev/authcore/internal/token"
)

// RegisterRoutes registers routes that need no dependencies.  Currently it
// exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the credential endpoints and the middleware
// guarding them.  Register, login and change-password are rate limited but
// otherwise public.  Register-admin is gated behind a valid Admin bearer
// token unless ADMIN_OPEN_SIGNUP is set; the escape hatch exists only so the
// first admin of a fresh deployment can be created, and should be turned off
// immediately afterwards.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, tokens *token.Service, users middleware.StampSource, cfg config.Config, rdb *redis.Client) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/api/auth", rl)
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/change-password", h.ChangePassword)

	if cfg.AdminOpenSignup {
		g.POST("/register-admin", h.RegisterAdmin)
	} else {
		admin := e.Group("/api/auth", rl,
			middleware.JWTAuth(tokens),
			middleware.SecurityStamp(users),
			middleware.RequireRole(service.RoleAdmin),
		)
		admin.POST("/register-admin", h.RegisterAdmin)
	}

	// Protected sample endpoint exercising the full validation chain:
	// signature/issuer/audience/expiry, then the security-stamp check.
	me := e.Group("/api",
		middleware.JWTAuth(tokens),
		middleware.SecurityStamp(users),
	)
	me.GET("/me", h.Me)
}

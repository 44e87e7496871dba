package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skovalev/authcore/internal/middleware"
	"github.com/skovalev/authcore/internal/service"
)

// AuthHandler bundles dependencies for the credential endpoints.
type AuthHandler struct {
	Auth *service.Auth
}

func NewAuthHandler(auth *service.Auth) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordReq struct {
	Username           string `json:"username"`
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// response is the {status, message} envelope used by every non-login
// endpoint.
type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type loginResp struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

func errResp(msg string) response     { return response{Status: "Error", Message: msg} }
func successResp(msg string) response { return response{Status: "Success", Message: msg} }

// reqCtx bounds each store round trip the way the rest of the handlers do.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// Register creates a regular user account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errResp("invalid body"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Register(ctx, req.Username, req.Email, req.Password); err != nil {
		return registrationError(c, err)
	}
	return c.JSON(http.StatusCreated, successResp("User created successfully!"))
}

// RegisterAdmin creates a user and grants it the Admin role.  The route is
// normally registered behind JWT + RequireRole(Admin); see the router.
func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errResp("invalid body"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.RegisterAdmin(ctx, req.Username, req.Email, req.Password); err != nil {
		return registrationError(c, err)
	}
	return c.JSON(http.StatusCreated, successResp("User created successfully!"))
}

// registrationError maps service failures from either register variant.
// Policy violations surface as the store-reported detail list, joined the
// way the original API reported identity-store errors.
func registrationError(c echo.Context, err error) error {
	var pe *service.PolicyError
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return c.JSON(http.StatusBadRequest, errResp("username and password are required"))
	case errors.Is(err, service.ErrUserExists):
		return c.JSON(http.StatusBadRequest, errResp("User already exists"))
	case errors.As(err, &pe):
		return c.JSON(http.StatusInternalServerError, errResp(strings.Join(pe.Violations, ", ")))
	default:
		return c.JSON(http.StatusInternalServerError, errResp("user creation failed"))
	}
}

// Login verifies credentials and returns a bearer token with its expiry.
// Failures are a bare 401: no body detail distinguishes an unknown username
// from a wrong password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errResp("invalid body"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return c.NoContent(http.StatusUnauthorized)
		}
		return c.JSON(http.StatusInternalServerError, errResp("login failed"))
	}
	return c.JSON(http.StatusOK, loginResp{Token: sess.Token, Expiration: sess.ExpiresAt})
}

// ChangePassword verifies the current password and stores a new hash.
// Unlike login, a 404 for an unknown user is considered acceptable here.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errResp("invalid body"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Auth.ChangePassword(ctx, req.Username, req.CurrentPassword, req.NewPassword, req.ConfirmNewPassword)
	if err != nil {
		var pe *service.PolicyError
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, errResp("User does not exist!"))
		case errors.Is(err, service.ErrPasswordMismatch):
			return c.JSON(http.StatusBadRequest, errResp("Password and confirm new password must be equal"))
		case errors.Is(err, service.ErrVerificationFailed):
			// Surfaced as a store validation failure, matching the
			// change-password contract.
			return c.JSON(http.StatusInternalServerError, errResp("Incorrect password."))
		case errors.As(err, &pe):
			return c.JSON(http.StatusInternalServerError, errResp(strings.Join(pe.Violations, ", ")))
		default:
			return c.JSON(http.StatusInternalServerError, errResp("password change failed"))
		}
	}
	return c.JSON(http.StatusOK, successResp("Password successfully changed."))
}

// Me is a simple protected endpoint returning the authenticated subject and
// role claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"username": c.Get(middleware.CtxUsername),
		"roles":    c.Get(middleware.CtxRoles),
	})
}

// Package token issues and validates the HS256 bearer tokens handed out on
// login.  Issuer and validator share one Config; any party holding the same
// secret, issuer and audience values can verify a token, so no server-side
// session state exists.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 3 * time.Hour

// ErrInvalidToken is returned for tokens that fail signature, method,
// issuer, audience or claim-shape checks.
var ErrInvalidToken = errors.New("invalid token")

// Config carries the symmetric signing material.  All three values are
// required and loaded once at process start; they are never derived from the
// request.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims is the payload embedded in every issued token.  Subject carries the
// username; Roles one claim per assigned role; Stamp the user's security
// stamp at issue time so that credential changes invalidate older tokens.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
	Stamp string   `json:"stamp,omitempty"`
}

// Service signs and verifies tokens for a single Config.
type Service struct {
	cfg Config
}

// New returns a token Service.  A non-positive TTL falls back to DefaultTTL.
func New(cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Service{cfg: cfg}
}

// Issue builds and signs a token for the given user.  Each token carries a
// fresh random jti for traceability.  The expiry is computed from the local
// clock at call time.
func (s *Service) Issue(username, stamp string, roles []string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.TTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   username,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Roles: roles,
		Stamp: stamp,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Validate parses a raw token and returns its claims.  It rejects tokens
// signed with a different method or secret, tokens whose issuer or audience
// do not match the configuration, and expired tokens.
func (s *Service) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Package service implements the credential lifecycle core: registration,
// login, and password change, orchestrating the credential store, role
// registry, password hasher and token issuer behind constructor-injected
// interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skovalev/authcore/internal/model"
	"github.com/skovalev/authcore/internal/password"
	"github.com/skovalev/authcore/internal/queue"
	"github.com/skovalev/authcore/internal/repository"
)

// Well-known role names.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

var (
	// ErrMissingFields is returned when username or password is empty.
	ErrMissingFields = errors.New("username and password are required")
	// ErrUserExists is returned when registering an already-taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned by ChangePassword for an unknown user.
	// Login deliberately never returns it; see ErrUnauthorized.
	ErrUserNotFound = errors.New("user does not exist")
	// ErrUnauthorized covers both an unknown username and a wrong password
	// on login, so callers cannot enumerate accounts.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrPasswordMismatch is returned when the new password and its
	// confirmation differ.
	ErrPasswordMismatch = errors.New("new password and confirmation must be equal")
	// ErrVerificationFailed is returned when the current password does not
	// verify against the stored hash.
	ErrVerificationFailed = errors.New("current password is incorrect")
)

// UserStore is the credential store contract.  Implementations must enforce
// username uniqueness atomically and map duplicate inserts to
// repository.ErrUserExists.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByName(ctx context.Context, username string) (*model.User, error)
	UpdatePassword(ctx context.Context, username, passwordHash, securityStamp string) error
}

// RoleStore is the role registry contract.
type RoleStore interface {
	RoleExists(ctx context.Context, name string) (bool, error)
	CreateRole(ctx context.Context, name string) error
	AssignRole(ctx context.Context, userID uint64, name string) error
	RolesForUser(ctx context.Context, userID uint64) ([]string, error)
}

// TokenIssuer mints signed bearer tokens embedding identity and role claims.
type TokenIssuer interface {
	Issue(username, stamp string, roles []string) (string, time.Time, error)
}

// Publisher emits auth events.  Failures are logged and ignored; event
// delivery never blocks or fails a request.
type Publisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

// NoopPublisher discards events.  Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, queue.Event) error { return nil }

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Auth orchestrates the credential lifecycle use cases.
type Auth struct {
	users      UserStore
	roles      RoleStore
	tokens     TokenIssuer
	events     Publisher
	bcryptCost int
}

// NewAuth constructs the authentication service.  A nil events publisher
// falls back to NoopPublisher.
func NewAuth(users UserStore, roles RoleStore, tokens TokenIssuer, events Publisher, bcryptCost int) *Auth {
	if events == nil {
		events = NoopPublisher{}
	}
	return &Auth{
		users:      users,
		roles:      roles,
		tokens:     tokens,
		events:     events,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user with a hashed password and a fresh security
// stamp.
func (s *Auth) Register(ctx context.Context, username, email, plain string) error {
	_, err := s.register(ctx, username, email, plain, false)
	return err
}

// RegisterAdmin registers a user and grants it the Admin role, creating the
// well-known Admin and User roles first if they are absent.
func (s *Auth) RegisterAdmin(ctx context.Context, username, email, plain string) error {
	u, err := s.register(ctx, username, email, plain, true)
	if err != nil {
		return err
	}

	if err := s.ensureRole(ctx, RoleAdmin); err != nil {
		return err
	}
	if err := s.ensureRole(ctx, RoleUser); err != nil {
		return err
	}

	exists, err := s.roles.RoleExists(ctx, RoleAdmin)
	if err != nil {
		return fmt.Errorf("check role %s: %w", RoleAdmin, err)
	}
	if exists {
		if err := s.roles.AssignRole(ctx, u.ID, RoleAdmin); err != nil {
			return fmt.Errorf("assign role %s: %w", RoleAdmin, err)
		}
	}
	return nil
}

// register is the shared creation path.  The username lookup is a fast
// rejection only; the store's unique index is the authority when concurrent
// registrations race past it.
func (s *Auth) register(ctx context.Context, username, email, plain string, admin bool) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return nil, ErrMissingFields
	}
	// The conflict check runs first so a taken username answers
	// ErrUserExists regardless of what password came with it.
	if _, err := s.users.FindByName(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if v := ValidatePassword(plain); len(v) > 0 {
		return nil, &PolicyError{Violations: v}
	}

	hash, err := password.Hash(plain, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		SecurityStamp: uuid.NewString(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.emit(ctx, queue.Event{
		Type:     queue.EventUserRegistered,
		Username: username,
		Email:    email,
		Admin:    admin,
	})
	return u, nil
}

// ensureRole creates the role if missing.  The check-then-create sequence is
// not atomic; a concurrent creation surfaces as ErrRoleExists and counts as
// success.
func (s *Auth) ensureRole(ctx context.Context, name string) error {
	exists, err := s.roles.RoleExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check role %s: %w", name, err)
	}
	if exists {
		return nil
	}
	if err := s.roles.CreateRole(ctx, name); err != nil && !errors.Is(err, repository.ErrRoleExists) {
		return fmt.Errorf("create role %s: %w", name, err)
	}
	return nil
}

// Login verifies the credentials and issues a bearer token carrying the
// user's roles.  An unknown username and a wrong password are
// indistinguishable to the caller.
func (s *Auth) Login(ctx context.Context, username, plain string) (*Session, error) {
	// Registration trims the username before storing it; apply the same
	// normalization so the credentials the user typed keep working.
	username = strings.TrimSpace(username)
	u, err := s.users.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !password.Verify(u.PasswordHash, plain) {
		return nil, ErrUnauthorized
	}

	roles, err := s.roles.RolesForUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	tok, exp, err := s.tokens.Issue(u.Username, u.SecurityStamp, roles)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: tok, ExpiresAt: exp}, nil
}

// ChangePassword verifies the current password and persists a new hash with
// a rotated security stamp.  The confirmation is compared before the stored
// hash is touched, so a mismatch leaves the old credentials fully intact.
func (s *Auth) ChangePassword(ctx context.Context, username, current, newPlain, confirm string) error {
	username = strings.TrimSpace(username)
	u, err := s.users.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if newPlain != confirm {
		return ErrPasswordMismatch
	}
	if !password.Verify(u.PasswordHash, current) {
		return ErrVerificationFailed
	}
	if v := ValidatePassword(newPlain); len(v) > 0 {
		return &PolicyError{Violations: v}
	}

	hash, err := password.Hash(newPlain, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	// Rotating the stamp here invalidates tokens issued before the change.
	if err := s.users.UpdatePassword(ctx, u.Username, hash, uuid.NewString()); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	s.emit(ctx, queue.Event{
		Type:     queue.EventPasswordChanged,
		Username: u.Username,
	})
	return nil
}

func (s *Auth) emit(ctx context.Context, ev queue.Event) {
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("auth: publish %s event failed: %v", ev.Type, err)
	}
}

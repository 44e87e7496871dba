package model

import "time"

// User represents a row in the `users` table.  The json tags are omitted
// because these structs are used internally by the repository layer; handlers
// define their own response types with appropriate JSON tags.
//
// Fields:
//
//	ID            – primary key identifier of the user.
//	Username      – unique login name, compared case‑sensitively.  Uniqueness
//	                is enforced by a unique index on users.username; the
//	                repository maps duplicate‑key failures to ErrUserExists.
//	Email         – unique email address.
//	PasswordHash  – bcrypt hashed password.  The plaintext is never stored
//	                or logged.
//	SecurityStamp – opaque marker regenerated whenever credentials change.
//	                Tokens embed the stamp at issue time; a rotated stamp
//	                invalidates previously issued tokens.
//	CreatedAt     – timestamp of creation.
//	UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	Username      string    // users.username
	Email         string    // users.email
	PasswordHash  string    // users.password_hash
	SecurityStamp string    // users.security_stamp
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}

// Role represents a row in the `roles` table.  It maps a small integer ID to
// a unique role name.  The well‑known roles Admin and User are created lazily
// during admin registration.
type Role struct {
	ID   uint8  // roles.id
	Name string // roles.name
}

// UserRole models an entry in the `user_roles` join table.  A user may hold
// zero or more roles; membership is always checked explicitly, never
// inferred.
type UserRole struct {
	UserID uint64 // user_roles.user_id
	RoleID uint8  // user_roles.role_id
}

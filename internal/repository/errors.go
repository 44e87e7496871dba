// Package repository implements the MySQL-backed credential store and role
// registry, plus the sentinel errors shared across them.  These sentinels let
// the service layer distinguish failure scenarios without parsing driver
// error strings.
package repository

import "errors"

// ErrUserExists is returned when an insert hits the unique index on
// users.username or users.email.  The database index, not the service-level
// lookup, is the authority on uniqueness; concurrent registrations racing
// past the lookup still collapse to this error.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned when a lookup by username matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrRoleExists is returned when creating a role whose name is already
// taken.  Callers bootstrapping well-known roles treat it as success.
var ErrRoleExists = errors.New("role already exists")

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/skovalev/authcore/internal/model"
)

// UserRepo persists user identity records in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the user and fills in its ID.  The caller supplies the
// password hash and a fresh security stamp; plaintext never reaches this
// layer.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, security_stamp) VALUES (?,?,?,?)",
		u.Username, u.Email, u.PasswordHash, u.SecurityStamp)
	if err != nil {
		// MySQL 1062 = duplicate entry for a unique index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrUserExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// FindByName fetches a user by exact username.
func (r *UserRepo) FindByName(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,security_stamp,created_at,updated_at FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.SecurityStamp, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePassword stores a new password hash and rotates the security stamp
// in one statement, so tokens carrying the old stamp become stale atomically
// with the credential change.
func (r *UserRepo) UpdatePassword(ctx context.Context, username, passwordHash, securityStamp string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, security_stamp=?, updated_at=NOW() WHERE username=?",
		passwordHash, securityStamp, username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SecurityStamp returns the current stamp for a user.  The token middleware
// compares it against the stamp claim of incoming tokens.
func (r *UserRepo) SecurityStamp(ctx context.Context, username string) (string, error) {
	var stamp string
	err := r.DB.QueryRowContext(ctx,
		"SELECT security_stamp FROM users WHERE username=? LIMIT 1",
		username).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return stamp, nil
}

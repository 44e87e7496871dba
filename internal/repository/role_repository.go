package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// RoleRepo persists named roles and user→role assignments ('roles' and
// 'user_roles' tables).
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// RoleExists reports whether a role with the given name is present.
func (r *RoleRepo) RoleExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM roles WHERE name=? LIMIT 1", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateRole inserts a role.  Concurrent bootstrap can race the
// check-then-create sequence; a duplicate insert surfaces as ErrRoleExists,
// which callers treat as success.
func (r *RoleRepo) CreateRole(ctx context.Context, name string) error {
	_, err := r.DB.ExecContext(ctx, "INSERT INTO roles (name) VALUES (?)", name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrRoleExists
		}
		return err
	}
	return nil
}

// AssignRole adds the user to a role.  INSERT IGNORE makes repeated
// assignment a no-op rather than an error.
func (r *RoleRepo) AssignRole(ctx context.Context, userID uint64, name string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name=?",
		userID, name)
	return err
}

// RolesForUser returns the names of all roles held by the user.  A user with
// no assignments gets an empty slice, not an error.
func (r *RoleRepo) RolesForUser(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT r.name FROM roles r JOIN user_roles ur ON ur.role_id=r.id WHERE ur.user_id=? ORDER BY r.name",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

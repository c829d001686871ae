package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

const userColumns = `id, email, password_hash, role, is_approved, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.IsApproved, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = models.UserRole(role)
	return &u, nil
}

// CreateUser inserts an unapproved account with the user role.
// A taken email yields ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (user *models.User, err error) {
	defer func(start time.Time) { observe("create_user", start, err) }(time.Now())

	query := `
		INSERT INTO users (email, password_hash, role, is_approved)
		VALUES ($1, $2, 'user', FALSE)
		RETURNING ` + userColumns

	user, err = scanUser(r.db.Pool.QueryRow(ctx, query, email, passwordHash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", translate(err))
	}
	return user, nil
}

// SeedAdmin creates an approved admin account unless the email exists.
// It reports whether a row was inserted.
func (r *Repository) SeedAdmin(ctx context.Context, email, passwordHash string) (created bool, err error) {
	defer func(start time.Time) { observe("seed_admin", start, err) }(time.Now())

	query := `
		INSERT INTO users (email, password_hash, role, is_approved)
		VALUES ($1, $2, 'admin', TRUE)
		ON CONFLICT (email) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query, email, passwordHash)
	if err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (user *models.User, err error) {
	defer func(start time.Time) { observe("get_user_by_email", start, err) }(time.Now())

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err = scanUser(r.db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id string) (user *models.User, err error) {
	defer func(start time.Time) { observe("get_user", start, err) }(time.Now())

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err = scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}
	return user, nil
}

// ListUsers returns all accounts, newest first
func (r *Repository) ListUsers(ctx context.Context) (users []*models.User, err error) {
	defer func(start time.Time) { observe("list_users", start, err) }(time.Now())

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users = []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserApproval approves or revokes an account
func (r *Repository) SetUserApproval(ctx context.Context, id string, approved bool) (user *models.User, err error) {
	defer func(start time.Time) { observe("set_user_approval", start, err) }(time.Now())

	query := `UPDATE users SET is_approved = $2 WHERE id = $1 RETURNING ` + userColumns

	user, err = scanUser(r.db.Pool.QueryRow(ctx, query, id, approved))
	if err != nil {
		return nil, fmt.Errorf("failed to update approval: %w", translate(err))
	}
	return user, nil
}

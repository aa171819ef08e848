package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const userColumns = `id, name, email, password_hash, is_admin, created_at, last_login_at`

// UserRepository exposes typed DB operations required by account flows.
type UserRepository struct {
	db DBTX
}

// NewUserRepository wraps a pool or transaction for user-specific operations.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUserParams describes a new account. PasswordHash is nil for OAuth-only accounts.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash *string
	IsAdmin      bool
}

// UpdateUserParams carries the fields an administrator may edit.
type UpdateUserParams struct {
	Name    string
	Email   string
	IsAdmin bool
}

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.LastLoginAt)
	return u, err
}

// Create inserts an account. The very first account is always promoted to admin.
func (r *UserRepository) Create(ctx context.Context, params CreateUserParams) (User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, is_admin)
		 SELECT $1, $2, $3, $4 OR NOT EXISTS (SELECT 1 FROM users)
		 RETURNING `+userColumns,
		params.Name, params.Email, params.PasswordHash, params.IsAdmin,
	)
	u, err := scanUser(row)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", translate(err))
	}
	return u, nil
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return User{}, translate(err)
	}
	return u, nil
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return User{}, translate(err)
	}
	return u, nil
}

// UpdateLogin records the last login timestamp.
func (r *UserRepository) UpdateLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	return err
}

// List returns users newest first, filtered by a case-insensitive match on name or email.
func (r *UserRepository) List(ctx context.Context, search string) ([]User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC`, search)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update edits name, email and admin flag. A clash on email yields ErrDuplicate.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET name = $2, email = $3, is_admin = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, params.Name, params.Email, params.IsAdmin))
	if err != nil {
		return User{}, translate(err)
	}
	return u, nil
}

// SetPassword replaces the password hash, used by the create-admin command for existing accounts.
func (r *UserRepository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user and, by cascade, their results, badges, feedback and chat history.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of accounts.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/foodbank/internal/model"
)

type userRepository struct{ base }

const userColumns = `id, organization_id, email, password_hash, role, first_name, last_name, phone,
	created_at, updated_at, deleted_at`

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	_, err := r.exec(ctx,
		`INSERT INTO users (id, organization_id, email, password_hash, role, first_name, last_name, phone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.OrganizationID, u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName, u.Phone, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Get returns a non-deleted user of the organization, or nil.
func (r *userRepository) Get(ctx context.Context, orgID, id string) (*model.User, error) {
	u := &model.User{}
	found, err := r.get(ctx, u,
		`SELECT `+userColumns+` FROM users WHERE organization_id = ? AND id = ? AND deleted_at IS NULL`,
		orgID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if !found {
		return nil, nil
	}
	return u, nil
}

// GetByID returns a user by ID (including soft-deleted for auth checks).
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	found, err := r.get(ctx, u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	if !found {
		return nil, nil
	}
	return u, nil
}

// GetByEmail returns the active user with the given email, or nil.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	found, err := r.get(ctx, u,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`, email,
	)
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	if !found {
		return nil, nil
	}
	return u, nil
}

// List returns all non-deleted users of the organization.
func (r *userRepository) List(ctx context.Context, orgID string) ([]model.User, error) {
	var users []model.User
	err := r.selectRows(ctx, &users,
		`SELECT `+userColumns+` FROM users
		 WHERE organization_id = ? AND deleted_at IS NULL
		 ORDER BY last_name, first_name, email`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Update saves a user's profile and role.
func (r *userRepository) Update(ctx context.Context, u *model.User) (bool, error) {
	u.UpdatedAt = now()
	n, err := r.exec(ctx,
		`UPDATE users SET email = ?, role = ?, first_name = ?, last_name = ?, phone = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ? AND deleted_at IS NULL`,
		u.Email, u.Role, u.FirstName, u.LastName, u.Phone, u.UpdatedAt, u.OrganizationID, u.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating user: %w", err)
	}
	return n > 0, nil
}

// UpdatePassword updates a user's password hash.
func (r *userRepository) UpdatePassword(ctx context.Context, orgID, id, passwordHash string) (bool, error) {
	n, err := r.exec(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ? AND deleted_at IS NULL`,
		passwordHash, now(), orgID, id,
	)
	if err != nil {
		return false, fmt.Errorf("updating user password: %w", err)
	}
	return n > 0, nil
}

// Delete soft-deletes a user.
func (r *userRepository) Delete(ctx context.Context, orgID, id string) (bool, error) {
	n, err := r.exec(ctx,
		`UPDATE users SET deleted_at = ? WHERE organization_id = ? AND id = ? AND deleted_at IS NULL`,
		now(), orgID, id,
	)
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of active users across all organizations.
func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	if _, err := r.get(ctx, &n, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

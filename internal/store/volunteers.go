package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/foodbank/internal/model"
)

type volunteerRepository struct{ base }

const volunteerColumns = `id, organization_id, first_name, last_name, email, phone, skills, availability,
	status, notes, created_at, updated_at`

// List returns the organization's volunteers, optionally filtered by status.
func (r *volunteerRepository) List(ctx context.Context, orgID, status string) ([]model.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE organization_id = ?`
	args := []any{orgID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY last_name, first_name`

	var vols []model.Volunteer
	if err := r.selectRows(ctx, &vols, query, args...); err != nil {
		return nil, fmt.Errorf("listing volunteers: %w", err)
	}
	return vols, nil
}

// Get returns a volunteer, or nil.
func (r *volunteerRepository) Get(ctx context.Context, orgID, id string) (*model.Volunteer, error) {
	v := &model.Volunteer{}
	found, err := r.get(ctx, v,
		`SELECT `+volunteerColumns+` FROM volunteers WHERE organization_id = ? AND id = ?`, orgID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting volunteer: %w", err)
	}
	if !found {
		return nil, nil
	}
	return v, nil
}

// Create inserts a volunteer. An empty status defaults to pending.
func (r *volunteerRepository) Create(ctx context.Context, v *model.Volunteer) error {
	v.ID = uuid.NewString()
	v.CreatedAt = now()
	v.UpdatedAt = v.CreatedAt
	if v.Status == "" {
		v.Status = model.VolunteerStatusPending
	}

	_, err := r.exec(ctx,
		`INSERT INTO volunteers (id, organization_id, first_name, last_name, email, phone, skills, availability,
		   status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OrganizationID, v.FirstName, v.LastName, v.Email, v.Phone, v.Skills, v.Availability,
		v.Status, v.Notes, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating volunteer: %w", err)
	}
	return nil
}

// Update saves a volunteer's details. Availability is managed separately.
func (r *volunteerRepository) Update(ctx context.Context, v *model.Volunteer) (bool, error) {
	v.UpdatedAt = now()
	n, err := r.exec(ctx,
		`UPDATE volunteers SET first_name = ?, last_name = ?, email = ?, phone = ?, skills = ?, status = ?,
		   notes = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ?`,
		v.FirstName, v.LastName, v.Email, v.Phone, v.Skills, v.Status, v.Notes, v.UpdatedAt,
		v.OrganizationID, v.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating volunteer: %w", err)
	}
	return n > 0, nil
}

// Deactivate marks a volunteer inactive.
func (r *volunteerRepository) Deactivate(ctx context.Context, orgID, id string) (bool, error) {
	n, err := r.exec(ctx,
		`UPDATE volunteers SET status = ?, updated_at = ? WHERE organization_id = ? AND id = ?`,
		model.VolunteerStatusInactive, now(), orgID, id,
	)
	if err != nil {
		return false, fmt.Errorf("deactivating volunteer: %w", err)
	}
	return n > 0, nil
}

// SetAvailability replaces a volunteer's weekly availability.
func (r *volunteerRepository) SetAvailability(ctx context.Context, orgID, id string, availability model.AvailabilityList) (bool, error) {
	n, err := r.exec(ctx,
		`UPDATE volunteers SET availability = ?, updated_at = ? WHERE organization_id = ? AND id = ?`,
		availability, now(), orgID, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting volunteer availability: %w", err)
	}
	return n > 0, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/foodbank/internal/model"
)

type clientRepository struct{ base }

const clientColumns = `id, organization_id, first_name, last_name, email, phone, address, household_size,
	dietary_restrictions, status, notes, created_at, updated_at`

// List returns the organization's clients, optionally filtered by status.
func (r *clientRepository) List(ctx context.Context, orgID, status string) ([]model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE organization_id = ?`
	args := []any{orgID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY last_name, first_name`

	var clients []model.Client
	if err := r.selectRows(ctx, &clients, query, args...); err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	return clients, nil
}

// Get returns a client, or nil.
func (r *clientRepository) Get(ctx context.Context, orgID, id string) (*model.Client, error) {
	c := &model.Client{}
	found, err := r.get(ctx, c,
		`SELECT `+clientColumns+` FROM clients WHERE organization_id = ? AND id = ?`, orgID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting client: %w", err)
	}
	if !found {
		return nil, nil
	}
	return c, nil
}

// Create inserts a client as active.
func (r *clientRepository) Create(ctx context.Context, c *model.Client) error {
	c.ID = uuid.NewString()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	c.Status = model.ClientStatusActive
	if c.HouseholdSize == 0 {
		c.HouseholdSize = 1
	}

	_, err := r.exec(ctx,
		`INSERT INTO clients (id, organization_id, first_name, last_name, email, phone, address, household_size,
		   dietary_restrictions, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OrganizationID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.HouseholdSize,
		c.DietaryRestrictions, c.Status, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	return nil
}

// Update saves a client's details.
func (r *clientRepository) Update(ctx context.Context, c *model.Client) (bool, error) {
	c.UpdatedAt = now()
	n, err := r.exec(ctx,
		`UPDATE clients SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ?, household_size = ?,
		   dietary_restrictions = ?, status = ?, notes = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ?`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.HouseholdSize,
		c.DietaryRestrictions, c.Status, c.Notes, c.UpdatedAt, c.OrganizationID, c.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating client: %w", err)
	}
	return n > 0, nil
}

// Deactivate marks a client inactive.
func (r *clientRepository) Deactivate(ctx context.Context, orgID, id string) (bool, error) {
	n, err := r.exec(ctx,
		`UPDATE clients SET status = ?, updated_at = ? WHERE organization_id = ? AND id = ?`,
		model.ClientStatusInactive, now(), orgID, id,
	)
	if err != nil {
		return false, fmt.Errorf("deactivating client: %w", err)
	}
	return n > 0, nil
}

// ListVisits returns a client's visits, newest first.
func (r *clientRepository) ListVisits(ctx context.Context, orgID, clientID string) ([]model.ClientVisit, error) {
	var visits []model.ClientVisit
	err := r.selectRows(ctx, &visits,
		`SELECT id, organization_id, client_id, visit_date, notes, served_by, created_at
		 FROM client_visits
		 WHERE organization_id = ? AND client_id = ?
		 ORDER BY visit_date DESC, created_at DESC`,
		orgID, clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing client visits: %w", err)
	}
	return visits, nil
}

// CreateVisit records a visit. A zero visit date means now.
func (r *clientRepository) CreateVisit(ctx context.Context, v *model.ClientVisit) error {
	v.ID = uuid.NewString()
	v.CreatedAt = now()
	if v.VisitDate.IsZero() {
		v.VisitDate = v.CreatedAt
	}
	v.VisitDate = v.VisitDate.UTC()

	_, err := r.exec(ctx,
		`INSERT INTO client_visits (id, organization_id, client_id, visit_date, notes, served_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OrganizationID, v.ClientID, v.VisitDate, v.Notes, v.ServedBy, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording client visit: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/foodbank/internal/model"
)

type organizationRepository struct{ base }

const organizationColumns = `id, name, address, phone, email, website, created_at, updated_at`

// Create inserts a new organization and fills in its id and timestamps.
func (r *organizationRepository) Create(ctx context.Context, org *model.Organization) error {
	org.ID = uuid.NewString()
	org.CreatedAt = now()
	org.UpdatedAt = org.CreatedAt

	_, err := r.exec(ctx,
		`INSERT INTO organizations (id, name, address, phone, email, website, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		org.ID, org.Name, org.Address, org.Phone, org.Email, org.Website, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating organization: %w", err)
	}
	return nil
}

// Get returns an organization by ID, or nil if it does not exist.
func (r *organizationRepository) Get(ctx context.Context, id string) (*model.Organization, error) {
	org := &model.Organization{}
	found, err := r.get(ctx, org, `SELECT `+organizationColumns+` FROM organizations WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}
	if !found {
		return nil, nil
	}
	return org, nil
}

// List returns all organizations.
func (r *organizationRepository) List(ctx context.Context) ([]model.Organization, error) {
	var orgs []model.Organization
	if err := r.selectRows(ctx, &orgs, `SELECT `+organizationColumns+` FROM organizations ORDER BY name`); err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	return orgs, nil
}

// Update saves an organization's contact details. It reports false if the
// organization does not exist.
func (r *organizationRepository) Update(ctx context.Context, org *model.Organization) (bool, error) {
	org.UpdatedAt = now()
	n, err := r.exec(ctx,
		`UPDATE organizations SET name = ?, address = ?, phone = ?, email = ?, website = ?, updated_at = ?
		 WHERE id = ?`,
		org.Name, org.Address, org.Phone, org.Email, org.Website, org.UpdatedAt, org.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating organization: %w", err)
	}
	return n > 0, nil
}

// Stats returns record counts for the organization and its most recent
// inventory transactions. LowStockItems is left for the caller to derive.
func (r *organizationRepository) Stats(ctx context.Context, orgID string, recent int) (*model.OrganizationStats, error) {
	var counts struct {
		Volunteers int `db:"volunteers"`
		Clients    int `db:"clients"`
		Items      int `db:"items"`
	}
	_, err := r.get(ctx, &counts,
		`SELECT
		   (SELECT COUNT(*) FROM volunteers WHERE organization_id = ?) AS volunteers,
		   (SELECT COUNT(*) FROM clients WHERE organization_id = ?) AS clients,
		   (SELECT COUNT(*) FROM inventory_items WHERE organization_id = ?) AS items`,
		orgID, orgID, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting organization records: %w", err)
	}

	var rows []struct {
		model.InventoryTransaction
		ItemName string `db:"item_name"`
	}
	err = r.selectRows(ctx, &rows,
		`SELECT `+transactionColumns+`, i.name AS item_name
		 FROM inventory_transactions t
		 JOIN inventory_items i ON i.id = t.item_id AND i.organization_id = t.organization_id
		 WHERE t.organization_id = ?
		 ORDER BY t.transaction_date DESC, t.created_at DESC
		 LIMIT ?`,
		orgID, recent,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent activity: %w", err)
	}

	activity := make([]model.InventoryTransaction, 0, len(rows))
	for _, row := range rows {
		tx := row.InventoryTransaction
		tx.Item = &model.ItemRef{Name: row.ItemName}
		activity = append(activity, tx)
	}

	return &model.OrganizationStats{
		Volunteers:     counts.Volunteers,
		Clients:        counts.Clients,
		InventoryItems: counts.Items,
		RecentActivity: activity,
	}, nil
}

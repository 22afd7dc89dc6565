package model

import "time"

// Organization is the tenancy boundary: every other record belongs to exactly one.
type Organization struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address,omitempty" db:"address"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Email     string    `json:"email,omitempty" db:"email"`
	Website   string    `json:"website,omitempty" db:"website"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrganizationStats is the dashboard summary for one organization.
type OrganizationStats struct {
	Volunteers     int                    `json:"volunteers"`
	Clients        int                    `json:"clients"`
	InventoryItems int                    `json:"inventory_items"`
	LowStockItems  int                    `json:"low_stock_items"`
	RecentActivity []InventoryTransaction `json:"recent_activity"`
}

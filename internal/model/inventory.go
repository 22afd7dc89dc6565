package model

import "time"

// Transaction types. DistributionAlias is the older name for an outbound movement.
const (
	TransactionDonationIn   = "donation_in"
	TransactionDistribution = "distribution"
	DistributionAlias       = "distribution_out"
)

// InventoryCategory groups inventory items.
type InventoryCategory struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description,omitempty" db:"description"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// CategoryRef is the category summary embedded in item payloads.
type CategoryRef struct {
	Name string `json:"name"`
}

// InventoryItem is a stock-keeping unit. Its quantity on hand is never stored;
// it is derived from the transaction ledger.
type InventoryItem struct {
	ID             string       `json:"id" db:"id"`
	OrganizationID string       `json:"organization_id" db:"organization_id"`
	CategoryID     string       `json:"category_id" db:"category_id"`
	Name           string       `json:"name" db:"name"`
	Description    string       `json:"description,omitempty" db:"description"`
	SKU            string       `json:"sku,omitempty" db:"sku"`
	Barcode        string       `json:"barcode,omitempty" db:"barcode"`
	UnitType       string       `json:"unit_type" db:"unit_type"`
	MinimumStock   int          `json:"minimum_stock" db:"minimum_stock"`
	Notes          string       `json:"notes,omitempty" db:"notes"`
	HasImage       bool         `json:"has_image" db:"has_image"`
	Category       *CategoryRef `json:"category,omitempty" db:"-"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// UserRef is the recording user summary embedded in transaction payloads.
type UserRef struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ItemRef is the item summary embedded in activity payloads.
type ItemRef struct {
	Name string `json:"name"`
}

// InventoryTransaction is one append-only ledger entry.
type InventoryTransaction struct {
	ID              string    `json:"id" db:"id"`
	OrganizationID  string    `json:"organization_id" db:"organization_id"`
	ItemID          string    `json:"item_id" db:"item_id"`
	TransactionType string    `json:"transaction_type" db:"transaction_type"`
	Quantity        int       `json:"quantity" db:"quantity"`
	Notes           string    `json:"notes,omitempty" db:"notes"`
	UserID          string    `json:"user_id" db:"user_id"`
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	User            *UserRef  `json:"user,omitempty" db:"-"`
	Item            *ItemRef  `json:"item,omitempty" db:"-"`
}

// StockedItem is an item with its derived stock position.
type StockedItem struct {
	InventoryItem
	CurrentStock       int                    `json:"current_stock"`
	LowStock           bool                   `json:"low_stock"`
	RecentTransactions []InventoryTransaction `json:"recent_transactions,omitempty"`
}

// LowStockAlert is an item whose stock is below its minimum.
type LowStockAlert struct {
	InventoryItem
	CurrentStock int `json:"current_stock"`
	Shortage     int `json:"shortage"`
}

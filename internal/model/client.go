package model

import "time"

// Client statuses. Deleting a client marks it inactive.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client is a household served by the food bank.
type Client struct {
	ID                  string     `json:"id" db:"id"`
	OrganizationID      string     `json:"organization_id" db:"organization_id"`
	FirstName           string     `json:"first_name" db:"first_name"`
	LastName            string     `json:"last_name" db:"last_name"`
	Email               string     `json:"email,omitempty" db:"email"`
	Phone               string     `json:"phone,omitempty" db:"phone"`
	Address             string     `json:"address,omitempty" db:"address"`
	HouseholdSize       int        `json:"household_size" db:"household_size"`
	DietaryRestrictions StringList `json:"dietary_restrictions" db:"dietary_restrictions"`
	Status              string     `json:"status" db:"status"`
	Notes               string     `json:"notes,omitempty" db:"notes"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// ClientVisit records one time a client was served.
type ClientVisit struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	ClientID       string    `json:"client_id" db:"client_id"`
	VisitDate      time.Time `json:"visit_date" db:"visit_date"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
	ServedBy       string    `json:"served_by" db:"served_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

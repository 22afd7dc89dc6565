package model

import "time"

// Volunteer statuses.
const (
	VolunteerStatusActive   = "active"
	VolunteerStatusInactive = "inactive"
	VolunteerStatusPending  = "pending"
)

// ValidVolunteerStatus reports whether s is a known volunteer status.
func ValidVolunteerStatus(s string) bool {
	return s == VolunteerStatusActive || s == VolunteerStatusInactive || s == VolunteerStatusPending
}

// Volunteer is a person who donates time to an organization.
type Volunteer struct {
	ID             string           `json:"id" db:"id"`
	OrganizationID string           `json:"organization_id" db:"organization_id"`
	FirstName      string           `json:"first_name" db:"first_name"`
	LastName       string           `json:"last_name" db:"last_name"`
	Email          string           `json:"email,omitempty" db:"email"`
	Phone          string           `json:"phone,omitempty" db:"phone"`
	Skills         StringList       `json:"skills" db:"skills"`
	Availability   AvailabilityList `json:"availability" db:"availability"`
	Status         string           `json:"status" db:"status"`
	Notes          string           `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// Availability is a recurring weekly time window.
type Availability struct {
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

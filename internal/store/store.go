// Package store implements the persistence layer behind narrow, per-entity
// repository interfaces. Every query on tenant data filters by organization id.
//
// Queries are written with ? placeholders and rebound for the underlying
// driver, so the same repositories serve SQLite and PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/erazemk/foodbank/internal/model"
)

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// OrganizationRepository persists organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *model.Organization) error
	Get(ctx context.Context, id string) (*model.Organization, error)
	List(ctx context.Context) ([]model.Organization, error)
	Update(ctx context.Context, org *model.Organization) (bool, error)
	Stats(ctx context.Context, orgID string, recent int) (*model.OrganizationStats, error)
}

// UserRepository persists staff accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, orgID, id string) (*model.User, error)
	// GetByID looks a user up across organizations. It is used only to
	// resolve an authenticated principal.
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, orgID string) ([]model.User, error)
	Update(ctx context.Context, u *model.User) (bool, error)
	UpdatePassword(ctx context.Context, orgID, id, passwordHash string) (bool, error)
	Delete(ctx context.Context, orgID, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// VolunteerRepository persists volunteers.
type VolunteerRepository interface {
	List(ctx context.Context, orgID, status string) ([]model.Volunteer, error)
	Get(ctx context.Context, orgID, id string) (*model.Volunteer, error)
	Create(ctx context.Context, v *model.Volunteer) error
	Update(ctx context.Context, v *model.Volunteer) (bool, error)
	Deactivate(ctx context.Context, orgID, id string) (bool, error)
	SetAvailability(ctx context.Context, orgID, id string, availability model.AvailabilityList) (bool, error)
}

// ClientRepository persists clients and their visits.
type ClientRepository interface {
	List(ctx context.Context, orgID, status string) ([]model.Client, error)
	Get(ctx context.Context, orgID, id string) (*model.Client, error)
	Create(ctx context.Context, c *model.Client) error
	Update(ctx context.Context, c *model.Client) (bool, error)
	Deactivate(ctx context.Context, orgID, id string) (bool, error)
	ListVisits(ctx context.Context, orgID, clientID string) ([]model.ClientVisit, error)
	CreateVisit(ctx context.Context, v *model.ClientVisit) error
}

// ItemFilter narrows ListItems.
type ItemFilter struct {
	CategoryID string
}

// InventoryRepository persists items, categories, images and the transaction ledger.
type InventoryRepository interface {
	ListItems(ctx context.Context, orgID string, filter ItemFilter) ([]model.InventoryItem, error)
	GetItem(ctx context.Context, orgID, id string) (*model.InventoryItem, error)
	CreateItem(ctx context.Context, item *model.InventoryItem) error
	UpdateItem(ctx context.Context, item *model.InventoryItem) (bool, error)

	ListCategories(ctx context.Context, orgID string) ([]model.InventoryCategory, error)
	GetCategory(ctx context.Context, orgID, id string) (*model.InventoryCategory, error)
	CreateCategory(ctx context.Context, c *model.InventoryCategory) error

	RecordTransaction(ctx context.Context, tx *model.InventoryTransaction) error
	// ItemTransactions returns an item's ledger, newest first. A limit of 0 returns all rows.
	ItemTransactions(ctx context.Context, orgID, itemID string, limit int) ([]model.InventoryTransaction, error)
	// Transactions returns every ledger entry of the organization.
	Transactions(ctx context.Context, orgID string) ([]model.InventoryTransaction, error)

	SetItemImage(ctx context.Context, orgID, itemID string, data []byte, mime string) (bool, error)
	GetItemImage(ctx context.Context, orgID, itemID string) ([]byte, string, error)
}

// TokenRepository tracks revoked JWTs.
type TokenRepository interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SettingsRepository holds instance-wide settings.
type SettingsRepository interface {
	JWTSecret(ctx context.Context) (string, error)
}

// Store groups all repositories over one database handle.
type Store struct {
	Organizations OrganizationRepository
	Users         UserRepository
	Volunteers    VolunteerRepository
	Clients       ClientRepository
	Inventory     InventoryRepository
	Tokens        TokenRepository
	Settings      SettingsRepository
}

// New creates a Store backed by db.
func New(db *sqlx.DB) *Store {
	b := base{db: db}
	return &Store{
		Organizations: &organizationRepository{b},
		Users:         &userRepository{b},
		Volunteers:    &volunteerRepository{b},
		Clients:       &clientRepository{b},
		Inventory:     &inventoryRepository{b},
		Tokens:        &tokenRepository{b},
		Settings:      &settingsRepository{b},
	}
}

type base struct {
	db *sqlx.DB
}

// get scans one row into dest. It reports false without an error when no row matches.
func (b base) get(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	err := b.db.GetContext(ctx, dest, b.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b base) selectRows(ctx context.Context, dest any, query string, args ...any) error {
	return b.db.SelectContext(ctx, dest, b.db.Rebind(query), args...)
}

// exec runs a statement and returns the number of affected rows.
func (b base) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := b.db.ExecContext(ctx, b.db.Rebind(query), args...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, errors.Join(ErrDuplicate, err)
		}
		return 0, err
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func now() time.Time {
	return time.Now().UTC()
}

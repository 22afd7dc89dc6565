package store

import (
	"context"
	"testing"

	"github.com/erazemk/foodbank/internal/db"
	"github.com/erazemk/foodbank/internal/model"
)

// fixture is an organization with one admin user and one category.
type fixture struct {
	store *Store
	org   *model.Organization
	user  *model.User
	cat   *model.InventoryCategory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := New(db.NewTestDB(t))
	return &fixture{store: s}
}

func (f *fixture) seed(t *testing.T, orgName string) *fixture {
	t.Helper()
	ctx := context.Background()

	org := &model.Organization{Name: orgName}
	if err := f.store.Organizations.Create(ctx, org); err != nil {
		t.Fatalf("creating organization: %v", err)
	}
	user := &model.User{
		OrganizationID: org.ID,
		Email:          "admin@" + orgName + ".test",
		PasswordHash:   "hash",
		Role:           model.RoleAdmin,
		FirstName:      "Ada",
		LastName:       "Admin",
	}
	if err := f.store.Users.Create(ctx, user); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	cat := &model.InventoryCategory{OrganizationID: org.ID, Name: "Canned Goods"}
	if err := f.store.Inventory.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("creating category: %v", err)
	}

	return &fixture{store: f.store, org: org, user: user, cat: cat}
}

func (f *fixture) item(t *testing.T, name string, minimum int) *model.InventoryItem {
	t.Helper()
	item := &model.InventoryItem{
		OrganizationID: f.org.ID,
		CategoryID:     f.cat.ID,
		Name:           name,
		UnitType:       "cans",
		MinimumStock:   minimum,
	}
	if err := f.store.Inventory.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("creating item: %v", err)
	}
	return item
}

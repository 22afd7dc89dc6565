package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/foodbank/internal/model"
)

func TestCreateAndGetOrganization(t *testing.T) {
	f := newFixture(t).seed(t, "northside")
	ctx := context.Background()

	got, err := f.store.Organizations.Get(ctx, f.org.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Name != "northside" {
		t.Fatalf("unexpected organization: %+v", got)
	}

	missing, err := f.store.Organizations.Get(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing organization")
	}
}

func TestUpdateOrganization(t *testing.T) {
	f := newFixture(t).seed(t, "northside")
	ctx := context.Background()

	f.org.Name = "Northside Pantry"
	f.org.Website = "https://northside.example"
	ok, err := f.store.Organizations.Update(ctx, f.org)
	if err != nil || !ok {
		t.Fatalf("Update: ok=%v err=%v", ok, err)
	}

	got, _ := f.store.Organizations.Get(ctx, f.org.ID)
	if got.Name != "Northside Pantry" || got.Website != "https://northside.example" {
		t.Errorf("update not persisted: %+v", got)
	}

	ok, err = f.store.Organizations.Update(ctx, &model.Organization{ID: "nope", Name: "x"})
	if err != nil {
		t.Fatalf("Update missing: %v", err)
	}
	if ok {
		t.Error("expected false for missing organization")
	}
}

func TestOrganizationStats(t *testing.T) {
	f := newFixture(t).seed(t, "northside")
	other := (&fixture{store: f.store}).seed(t, "southside")
	ctx := context.Background()

	f.store.Volunteers.Create(ctx, &model.Volunteer{OrganizationID: f.org.ID, FirstName: "V", LastName: "One"})
	f.store.Clients.Create(ctx, &model.Client{OrganizationID: f.org.ID, FirstName: "C", LastName: "One"})
	f.store.Clients.Create(ctx, &model.Client{OrganizationID: other.org.ID, FirstName: "C", LastName: "Other"})

	rice := f.item(t, "Rice", 10)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		f.store.Inventory.RecordTransaction(ctx, &model.InventoryTransaction{
			OrganizationID:  f.org.ID,
			ItemID:          rice.ID,
			TransactionType: model.TransactionDonationIn,
			Quantity:        i + 1,
			UserID:          f.user.ID,
			TransactionDate: base.Add(time.Duration(i) * time.Hour),
		})
	}

	stats, err := f.store.Organizations.Stats(ctx, f.org.ID, 5)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Volunteers != 1 || stats.Clients != 1 || stats.InventoryItems != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if len(stats.RecentActivity) != 5 {
		t.Fatalf("expected 5 recent transactions, got %d", len(stats.RecentActivity))
	}
	if stats.RecentActivity[0].Quantity != 7 {
		t.Errorf("expected newest first, got quantity %d", stats.RecentActivity[0].Quantity)
	}
	if stats.RecentActivity[0].Item == nil || stats.RecentActivity[0].Item.Name != "Rice" {
		t.Errorf("expected item name on activity, got %+v", stats.RecentActivity[0].Item)
	}
}

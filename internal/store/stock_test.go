package store

import (
	"context"
	"testing"

	"github.com/erazemk/foodbank/internal/model"
)

func TestStockedItemsAndAlerts(t *testing.T) {
	f := newFixture(t).seed(t, "northside")
	other := (&fixture{store: f.store}).seed(t, "southside")
	ctx := context.Background()

	record := func(fx *fixture, item *model.InventoryItem, typ string, qty int) {
		t.Helper()
		err := fx.store.Inventory.RecordTransaction(ctx, &model.InventoryTransaction{
			OrganizationID: fx.org.ID, ItemID: item.ID, TransactionType: typ, Quantity: qty, UserID: fx.user.ID,
		})
		if err != nil {
			t.Fatalf("RecordTransaction: %v", err)
		}
	}

	beans := f.item(t, "Beans", 50)
	rice := f.item(t, "Rice", 20)
	soup := f.item(t, "Soup", 10)
	record(f, beans, model.TransactionDonationIn, 20)
	record(f, rice, model.TransactionDonationIn, 30)
	record(f, rice, model.TransactionDistribution, 25)
	record(f, soup, model.TransactionDonationIn, 10)
	record(f, soup, "adjustment", 7)

	// Another organization's ledger must not leak in.
	foreign := other.item(t, "Beans", 1)
	record(other, foreign, model.TransactionDonationIn, 500)

	stocked, err := StockedItems(ctx, f.store.Inventory, f.org.ID, ItemFilter{})
	if err != nil {
		t.Fatalf("StockedItems: %v", err)
	}
	want := map[string]int{"Beans": 20, "Rice": 5, "Soup": 10}
	if len(stocked) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(stocked))
	}
	for _, s := range stocked {
		if s.CurrentStock != want[s.Name] {
			t.Errorf("%s: expected stock %d, got %d", s.Name, want[s.Name], s.CurrentStock)
		}
	}

	alerts, err := LowStockAlerts(ctx, f.store.Inventory, f.org.ID)
	if err != nil {
		t.Fatalf("LowStockAlerts: %v", err)
	}
	// Soup sits exactly at its minimum and is not low.
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].Name != "Beans" || alerts[0].Shortage != 30 {
		t.Errorf("expected Beans short by 30 first, got %s short by %d", alerts[0].Name, alerts[0].Shortage)
	}
	if alerts[1].Name != "Rice" || alerts[1].Shortage != 15 {
		t.Errorf("expected Rice short by 15 second, got %s short by %d", alerts[1].Name, alerts[1].Shortage)
	}
}

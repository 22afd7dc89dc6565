package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/foodbank/internal/model"
)

func TestClientLifecycle(t *testing.T) {
	f := newFixture(t).seed(t, "northside")
	ctx := context.Background()

	c := &model.Client{
		OrganizationID:      f.org.ID,
		FirstName:           "Sam",
		LastName:            "Rivera",
		HouseholdSize:       4,
		DietaryRestrictions: model.StringList{"gluten-free"},
	}
	if err := f.store.Clients.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Status != model.ClientStatusActive {
		t.Errorf("expected active status, got %q", c.Status)
	}

	c.HouseholdSize = 5
	if ok, err := f.store.Clients.Update(ctx, c); err != nil || !ok {
		t.Fatalf("Update: ok=%v err=%v", ok, err)
	}
	got, _ := f.store.Clients.Get(ctx, f.org.ID, c.ID)
	if got.HouseholdSize != 5 || len(got.DietaryRestrictions) != 1 {
		t.Errorf("unexpected client after update: %+v", got)
	}

	if ok, _ := f.store.Clients.Deactivate(ctx, f.org.ID, c.ID); !ok {
		t.Fatal("expected Deactivate to succeed")
	}
	got, _ = f.store.Clients.Get(ctx, f.org.ID, c.ID)
	if got.Status != model.ClientStatusInactive {
		t.Errorf("expected inactive after delete, got %q", got.Status)
	}

	active, _ := f.store.Clients.List(ctx, f.org.ID, model.ClientStatusActive)
	if len(active) != 0 {
		t.Errorf("expected no active clients, got %d", len(active))
	}
}

func TestClientVisits(t *testing.T) {
	f := newFixture(t).seed(t, "northside")
	ctx := context.Background()

	c := &model.Client{OrganizationID: f.org.ID, FirstName: "Sam", LastName: "Rivera"}
	f.store.Clients.Create(ctx, c)

	first := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)
	for i, notes := range []string{"first", "second"} {
		err := f.store.Clients.CreateVisit(ctx, &model.ClientVisit{
			OrganizationID: f.org.ID,
			ClientID:       c.ID,
			VisitDate:      first.AddDate(0, 0, 7*i),
			Notes:          notes,
			ServedBy:       f.user.ID,
		})
		if err != nil {
			t.Fatalf("CreateVisit: %v", err)
		}
	}

	visits, err := f.store.Clients.ListVisits(ctx, f.org.ID, c.ID)
	if err != nil {
		t.Fatalf("ListVisits: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(visits))
	}
	if visits[0].Notes != "second" {
		t.Errorf("expected newest visit first, got %q", visits[0].Notes)
	}
	if !visits[1].VisitDate.Equal(first) {
		t.Errorf("visit date not preserved: %v", visits[1].VisitDate)
	}
}

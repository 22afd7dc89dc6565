package api

import (
	"net/http"
	"testing"

	"github.com/erazemk/foodbank/internal/model"
)

func TestOrganizationGetAndUpdate(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/api/organizations", env.token, nil)
	expectStatus(t, resp, http.StatusOK)
	var org model.Organization
	decode(t, resp, &org)
	if org.ID != env.org.ID || org.Name != "Northside Pantry" {
		t.Errorf("unexpected organization: %+v", org)
	}

	resp = env.do(t, "PUT", "/api/organizations", env.token, map[string]string{"website": "not a url"})
	expectError(t, resp, http.StatusBadRequest, "fail")

	resp = env.do(t, "PUT", "/api/organizations", env.token, map[string]string{
		"phone":   "555-0100",
		"website": "https://northside.example",
	})
	expectStatus(t, resp, http.StatusOK)
	decode(t, resp, &org)
	if org.Name != "Northside Pantry" || org.Phone != "555-0100" {
		t.Errorf("expected partial update, got %+v", org)
	}
}

func TestOrganizationStats(t *testing.T) {
	env := setupTestServer(t)

	cat := env.createCategory(t, env.token, "Staples")
	low := env.createItem(t, env.token, cat.ID, "Low", 100)
	ok := env.createItem(t, env.token, cat.ID, "Fine", 10)
	env.record(t, env.token, low.ID, model.TransactionDonationIn, 50)
	for range 6 {
		env.record(t, env.token, ok.ID, model.TransactionDonationIn, 5)
	}

	resp := env.do(t, "POST", "/api/volunteers", env.token, map[string]any{"first_name": "V", "last_name": "One"})
	expectStatus(t, resp, http.StatusCreated)
	resp = env.do(t, "POST", "/api/clients", env.token, map[string]any{"first_name": "C", "last_name": "One"})
	expectStatus(t, resp, http.StatusCreated)

	resp = env.do(t, "GET", "/api/organizations/stats", env.token, nil)
	expectStatus(t, resp, http.StatusOK)
	var stats model.OrganizationStats
	decode(t, resp, &stats)

	if stats.Volunteers != 1 || stats.Clients != 1 || stats.InventoryItems != 2 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.LowStockItems != 1 {
		t.Errorf("expected 1 low stock item, got %d", stats.LowStockItems)
	}
	if len(stats.RecentActivity) != recentActivity {
		t.Errorf("expected %d recent transactions, got %d", recentActivity, len(stats.RecentActivity))
	}
}

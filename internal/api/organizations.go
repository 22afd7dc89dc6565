package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/foodbank/internal/apperr"
	"github.com/erazemk/foodbank/internal/store"
)

// recentActivity is the number of transactions shown on the dashboard.
const recentActivity = 5

// OrganizationsHandler serves the caller's own organization.
type OrganizationsHandler struct {
	Store *store.Store
}

type updateOrganizationRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Website *string `json:"website" validate:"omitempty,url"`
}

// Get handles GET /api/organizations.
func (h *OrganizationsHandler) Get(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	org, err := h.Store.Organizations.Get(r.Context(), p.OrganizationID)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to load organization")
	}
	if org == nil {
		return apperr.NotFound("Organization not found")
	}
	jsonResponse(w, http.StatusOK, org)
	return nil
}

// Update handles PUT /api/organizations.
func (h *OrganizationsHandler) Update(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[updateOrganizationRequest](r)

	org, err := h.Store.Organizations.Get(r.Context(), p.OrganizationID)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to update organization")
	}
	if org == nil {
		return apperr.NotFound("Organization not found")
	}

	setIfPresent(&org.Name, req.Name)
	setIfPresent(&org.Address, req.Address)
	setIfPresent(&org.Phone, req.Phone)
	setIfPresent(&org.Email, req.Email)
	setIfPresent(&org.Website, req.Website)

	ok, err := h.Store.Organizations.Update(r.Context(), org)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to update organization")
	}
	if !ok {
		return apperr.NotFound("Organization not found")
	}

	slog.Info("organization updated", "organization", org.ID, "user", p.Email)
	jsonResponse(w, http.StatusOK, org)
	return nil
}

// Stats handles GET /api/organizations/stats.
func (h *OrganizationsHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	ctx := r.Context()

	stats, err := h.Store.Organizations.Stats(ctx, p.OrganizationID, recentActivity)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to load statistics")
	}

	alerts, err := store.LowStockAlerts(ctx, h.Store.Inventory, p.OrganizationID)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to load statistics")
	}
	stats.LowStockItems = len(alerts)

	jsonResponse(w, http.StatusOK, stats)
	return nil
}

// setIfPresent copies *src into dst when the field was sent.
func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

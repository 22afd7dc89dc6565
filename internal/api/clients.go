package api

import (
	"net/http"
	"time"

	"github.com/erazemk/foodbank/internal/apperr"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

// ClientsHandler handles client households and their visits.
type ClientsHandler struct {
	Clients store.ClientRepository
}

type createClientRequest struct {
	FirstName           string   `json:"first_name" validate:"required,max=100"`
	LastName            string   `json:"last_name" validate:"required,max=100"`
	Email               string   `json:"email" validate:"omitempty,email"`
	Phone               string   `json:"phone" validate:"max=50"`
	Address             string   `json:"address" validate:"max=500"`
	HouseholdSize       int      `json:"household_size" validate:"omitempty,gte=1,lte=50"`
	DietaryRestrictions []string `json:"dietary_restrictions" validate:"dive,required"`
	Notes               string   `json:"notes"`
}

type updateClientRequest struct {
	FirstName           *string   `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName            *string   `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email               *string   `json:"email" validate:"omitempty,email"`
	Phone               *string   `json:"phone" validate:"omitempty,max=50"`
	Address             *string   `json:"address" validate:"omitempty,max=500"`
	HouseholdSize       *int      `json:"household_size" validate:"omitempty,gte=1,lte=50"`
	DietaryRestrictions *[]string `json:"dietary_restrictions" validate:"omitempty,dive,required"`
	Status              *string   `json:"status" validate:"omitempty,oneof=active inactive"`
	Notes               *string   `json:"notes"`
}

type createVisitRequest struct {
	VisitDate *time.Time `json:"visit_date"`
	Notes     string     `json:"notes"`
}

// List handles GET /api/clients. An optional status query narrows the list.
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	status := r.URL.Query().Get("status")
	if status != "" && status != model.ClientStatusActive && status != model.ClientStatusInactive {
		return apperr.Validation("Invalid status filter")
	}

	clients, err := h.Clients.List(r.Context(), p.OrganizationID, status)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to list clients")
	}
	if clients == nil {
		clients = []model.Client{}
	}
	envelopeResponse(w, http.StatusOK, clients, "")
	return nil
}

// Get handles GET /api/clients/{id}.
func (h *ClientsHandler) Get(w http.ResponseWriter, r *http.Request) error {
	c, err := h.load(r)
	if err != nil {
		return err
	}
	envelopeResponse(w, http.StatusOK, c, "")
	return nil
}

// Create handles POST /api/clients. New clients are always active.
func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[createClientRequest](r)

	c := &model.Client{
		OrganizationID:      p.OrganizationID,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Phone:               req.Phone,
		Address:             req.Address,
		HouseholdSize:       req.HouseholdSize,
		DietaryRestrictions: req.DietaryRestrictions,
		Notes:               req.Notes,
	}
	if err := h.Clients.Create(r.Context(), c); err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to create client")
	}
	envelopeResponse(w, http.StatusCreated, c, "Client created successfully")
	return nil
}

// Update handles PUT /api/clients/{id}.
func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request) error {
	req := bodyFrom[updateClientRequest](r)
	c, err := h.load(r)
	if err != nil {
		return err
	}

	setIfPresent(&c.FirstName, req.FirstName)
	setIfPresent(&c.LastName, req.LastName)
	setIfPresent(&c.Email, req.Email)
	setIfPresent(&c.Phone, req.Phone)
	setIfPresent(&c.Address, req.Address)
	setIfPresent(&c.HouseholdSize, req.HouseholdSize)
	setIfPresent(&c.Status, req.Status)
	setIfPresent(&c.Notes, req.Notes)
	if req.DietaryRestrictions != nil {
		c.DietaryRestrictions = *req.DietaryRestrictions
	}

	ok, err := h.Clients.Update(r.Context(), c)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to update client")
	}
	if !ok {
		return apperr.NotFound("Client not found")
	}
	envelopeResponse(w, http.StatusOK, c, "Client updated successfully")
	return nil
}

// Delete handles DELETE /api/clients/{id}. Clients are marked inactive, never removed.
func (h *ClientsHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	ok, err := h.Clients.Deactivate(r.Context(), p.OrganizationID, r.PathValue("id"))
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to deactivate client")
	}
	if !ok {
		return apperr.NotFound("Client not found")
	}
	envelopeResponse(w, http.StatusOK, nil, "Client deactivated successfully")
	return nil
}

// ListVisits handles GET /api/clients/{id}/visits.
func (h *ClientsHandler) ListVisits(w http.ResponseWriter, r *http.Request) error {
	c, err := h.load(r)
	if err != nil {
		return err
	}

	visits, err := h.Clients.ListVisits(r.Context(), c.OrganizationID, c.ID)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to list visits")
	}
	if visits == nil {
		visits = []model.ClientVisit{}
	}
	envelopeResponse(w, http.StatusOK, visits, "")
	return nil
}

// CreateVisit handles POST /api/clients/{id}/visits. The caller is recorded as the server.
func (h *ClientsHandler) CreateVisit(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[createVisitRequest](r)

	c, err := h.load(r)
	if err != nil {
		return err
	}

	visit := &model.ClientVisit{
		OrganizationID: c.OrganizationID,
		ClientID:       c.ID,
		Notes:          req.Notes,
		ServedBy:       p.ID,
	}
	if req.VisitDate != nil {
		visit.VisitDate = *req.VisitDate
	}
	if err := h.Clients.CreateVisit(r.Context(), visit); err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to record visit")
	}
	envelopeResponse(w, http.StatusCreated, visit, "Visit recorded successfully")
	return nil
}

func (h *ClientsHandler) load(r *http.Request) (*model.Client, error) {
	p, err := principal(r)
	if err != nil {
		return nil, err
	}

	c, err := h.Clients.Get(r.Context(), p.OrganizationID, r.PathValue("id"))
	if err != nil {
		return nil, apperr.Store(err, http.StatusInternalServerError, "Failed to load client")
	}
	if c == nil {
		return nil, apperr.NotFound("Client not found")
	}
	return c, nil
}

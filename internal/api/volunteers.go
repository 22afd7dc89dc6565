package api

import (
	"net/http"

	"github.com/erazemk/foodbank/internal/apperr"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

// VolunteersHandler handles volunteer records and their weekly availability.
type VolunteersHandler struct {
	Volunteers store.VolunteerRepository
}

type createVolunteerRequest struct {
	FirstName    string               `json:"first_name" validate:"required,max=100"`
	LastName     string               `json:"last_name" validate:"required,max=100"`
	Email        string               `json:"email" validate:"omitempty,email"`
	Phone        string               `json:"phone" validate:"max=50"`
	Skills       []string             `json:"skills" validate:"dive,required"`
	Availability []model.Availability `json:"availability" validate:"dive"`
	Status       string               `json:"status" validate:"omitempty,oneof=active inactive pending"`
	Notes        string               `json:"notes"`
}

type updateVolunteerRequest struct {
	FirstName *string   `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string   `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email     *string   `json:"email" validate:"omitempty,email"`
	Phone     *string   `json:"phone" validate:"omitempty,max=50"`
	Skills    *[]string `json:"skills" validate:"omitempty,dive,required"`
	Status    *string   `json:"status" validate:"omitempty,oneof=active inactive pending"`
	Notes     *string   `json:"notes"`
}

type availabilityRequest struct {
	Availability []model.Availability `json:"availability" validate:"dive"`
}

// List handles GET /api/volunteers. An optional status query narrows the list.
func (h *VolunteersHandler) List(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidVolunteerStatus(status) {
		return apperr.Validation("Invalid status filter")
	}

	volunteers, err := h.Volunteers.List(r.Context(), p.OrganizationID, status)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to list volunteers")
	}
	if volunteers == nil {
		volunteers = []model.Volunteer{}
	}
	envelopeResponse(w, http.StatusOK, volunteers, "")
	return nil
}

// Get handles GET /api/volunteers/{id}.
func (h *VolunteersHandler) Get(w http.ResponseWriter, r *http.Request) error {
	v, err := h.load(r)
	if err != nil {
		return err
	}
	envelopeResponse(w, http.StatusOK, v, "")
	return nil
}

// Create handles POST /api/volunteers.
func (h *VolunteersHandler) Create(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[createVolunteerRequest](r)

	v := &model.Volunteer{
		OrganizationID: p.OrganizationID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Skills:         req.Skills,
		Availability:   req.Availability,
		Status:         req.Status,
		Notes:          req.Notes,
	}
	if err := h.Volunteers.Create(r.Context(), v); err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to create volunteer")
	}
	envelopeResponse(w, http.StatusCreated, v, "Volunteer created successfully")
	return nil
}

// Update handles PUT /api/volunteers/{id}.
func (h *VolunteersHandler) Update(w http.ResponseWriter, r *http.Request) error {
	req := bodyFrom[updateVolunteerRequest](r)
	v, err := h.load(r)
	if err != nil {
		return err
	}

	setIfPresent(&v.FirstName, req.FirstName)
	setIfPresent(&v.LastName, req.LastName)
	setIfPresent(&v.Email, req.Email)
	setIfPresent(&v.Phone, req.Phone)
	setIfPresent(&v.Status, req.Status)
	setIfPresent(&v.Notes, req.Notes)
	if req.Skills != nil {
		v.Skills = *req.Skills
	}

	ok, err := h.Volunteers.Update(r.Context(), v)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to update volunteer")
	}
	if !ok {
		return apperr.NotFound("Volunteer not found")
	}
	envelopeResponse(w, http.StatusOK, v, "Volunteer updated successfully")
	return nil
}

// Delete handles DELETE /api/volunteers/{id}. Volunteers are marked inactive, never removed.
func (h *VolunteersHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	ok, err := h.Volunteers.Deactivate(r.Context(), p.OrganizationID, r.PathValue("id"))
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to deactivate volunteer")
	}
	if !ok {
		return apperr.NotFound("Volunteer not found")
	}
	envelopeResponse(w, http.StatusOK, nil, "Volunteer deactivated successfully")
	return nil
}

// GetAvailability handles GET /api/volunteers/{id}/availability.
func (h *VolunteersHandler) GetAvailability(w http.ResponseWriter, r *http.Request) error {
	v, err := h.load(r)
	if err != nil {
		return err
	}
	envelopeResponse(w, http.StatusOK, v.Availability, "")
	return nil
}

// SetAvailability handles PUT /api/volunteers/{id}/availability.
func (h *VolunteersHandler) SetAvailability(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[availabilityRequest](r)
	availability := model.AvailabilityList(req.Availability)

	ok, err := h.Volunteers.SetAvailability(r.Context(), p.OrganizationID, r.PathValue("id"), availability)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to update availability")
	}
	if !ok {
		return apperr.NotFound("Volunteer not found")
	}
	envelopeResponse(w, http.StatusOK, availability, "Availability updated successfully")
	return nil
}

func (h *VolunteersHandler) load(r *http.Request) (*model.Volunteer, error) {
	p, err := principal(r)
	if err != nil {
		return nil, err
	}

	v, err := h.Volunteers.Get(r.Context(), p.OrganizationID, r.PathValue("id"))
	if err != nil {
		return nil, apperr.Store(err, http.StatusInternalServerError, "Failed to load volunteer")
	}
	if v == nil {
		return nil, apperr.NotFound("Volunteer not found")
	}
	return v, nil
}

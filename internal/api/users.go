package api

import (
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/foodbank/internal/apperr"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

// UsersHandler handles staff account management within an organization.
type UsersHandler struct {
	Users store.UserRepository
}

type createUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=admin staff volunteer"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=50"`
}

type updateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin staff volunteer"`
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	users, err := h.Users.List(r.Context(), p.OrganizationID)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to list users")
	}
	if users == nil {
		users = []model.User{}
	}
	envelopeResponse(w, http.StatusOK, users, "")
	return nil
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[createUserRequest](r)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &model.User{
		OrganizationID: p.OrganizationID,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           req.Role,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
	}
	if err := h.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("A user with this email already exists")
		}
		return apperr.Store(err, http.StatusBadRequest, "Failed to create user")
	}

	slog.Info("user created", "user", p.Email, "new_user", user.Email, "role", user.Role)
	envelopeResponse(w, http.StatusCreated, user, "User created successfully")
	return nil
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	user, err := h.Users.Get(r.Context(), p.OrganizationID, r.PathValue("id"))
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to load user")
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}
	envelopeResponse(w, http.StatusOK, user, "")
	return nil
}

// Update handles PUT /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[updateUserRequest](r)
	id := r.PathValue("id")

	if id == p.ID && req.Role != nil && *req.Role != p.Role {
		return apperr.Validation("You cannot change your own role")
	}

	user, err := h.Users.Get(r.Context(), p.OrganizationID, id)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to update user")
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}

	setIfPresent(&user.Email, req.Email)
	setIfPresent(&user.Role, req.Role)
	setIfPresent(&user.FirstName, req.FirstName)
	setIfPresent(&user.LastName, req.LastName)
	setIfPresent(&user.Phone, req.Phone)

	ok, err := h.Users.Update(r.Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("A user with this email already exists")
		}
		return apperr.Store(err, http.StatusBadRequest, "Failed to update user")
	}
	if !ok {
		return apperr.NotFound("User not found")
	}

	slog.Info("user updated", "user", p.Email, "target", user.Email)
	envelopeResponse(w, http.StatusOK, user, "User updated successfully")
	return nil
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[resetPasswordRequest](r)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ok, err := h.Users.UpdatePassword(r.Context(), p.OrganizationID, r.PathValue("id"), string(hash))
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to reset password")
	}
	if !ok {
		return apperr.NotFound("User not found")
	}

	slog.Info("user password reset", "user", p.Email, "target", r.PathValue("id"))
	envelopeResponse(w, http.StatusOK, nil, "Password updated successfully")
	return nil
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	id := r.PathValue("id")

	if id == p.ID {
		return apperr.Validation("You cannot delete your own account")
	}

	ok, err := h.Users.Delete(r.Context(), p.OrganizationID, id)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to delete user")
	}
	if !ok {
		return apperr.NotFound("User not found")
	}

	slog.Info("user deleted", "user", p.Email, "target", id)
	envelopeResponse(w, http.StatusOK, nil, "User deleted successfully")
	return nil
}

package api

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/foodbank/internal/apperr"
	"github.com/erazemk/foodbank/internal/auth"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Users     store.UserRepository
	Tokens    store.TokenRepository
	JWTSecret string
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	req := bodyFrom[loginRequest](r)

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		return err
	}
	if user == nil || user.DeletedAt != nil {
		return apperr.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		return apperr.Unauthorized("invalid credentials")
	}

	token, err := auth.GenerateToken(h.JWTSecret, auth.Principal{
		ID:             user.ID,
		Email:          user.Email,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	})
	if err != nil {
		return err
	}

	slog.Info("user logged in", "user", user.Email, "role", user.Role)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: user})
	return nil
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	claims := getClaims(r.Context())
	if claims == nil {
		return apperr.Validation("logout requires a bearer token")
	}

	if err := h.Tokens.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}

	slog.Info("user logged out", "user", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
	return nil
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[changePasswordRequest](r)

	user, err := h.Users.Get(r.Context(), p.OrganizationID, p.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperr.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := h.Users.UpdatePassword(r.Context(), p.OrganizationID, p.ID, string(hash)); err != nil {
		return err
	}

	slog.Info("user changed own password", "user", user.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
	return nil
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	user, err := h.Users.Get(r.Context(), p.OrganizationID, p.ID)
	if err != nil {
		return err
	}
	if user == nil {
		// Test-header principals have no backing row.
		jsonResponse(w, http.StatusOK, p)
		return nil
	}
	jsonResponse(w, http.StatusOK, user)
	return nil
}

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/foodbank/internal/apperr"
	"github.com/erazemk/foodbank/internal/auth"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	claimsKey    contextKey = "claims"
	requestIDKey contextKey = "request_id"
)

// TestUserHeader carries a JSON-encoded auth.Principal. It is honoured only
// when AuthConfig.AllowTestHeader is set.
const TestUserHeader = "X-Test-User"

// AuthConfig configures AuthMiddleware.
type AuthConfig struct {
	Secret          string
	Users           store.UserRepository
	Tokens          store.TokenRepository
	AllowTestHeader bool
}

// AuthMiddleware resolves the caller into an auth.Principal and adds it to
// the request context. Bearer tokens must be valid, unrevoked and belong to
// a user that still exists.
func AuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cfg.AllowTestHeader {
				if raw := r.Header.Get(TestUserHeader); raw != "" {
					var p auth.Principal
					if err := json.Unmarshal([]byte(raw), &p); err != nil || p.ID == "" || p.OrganizationID == "" || !model.ValidRole(p.Role) {
						writeError(w, r, apperr.Unauthorized("invalid test user header"))
						return
					}
					next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, principalKey, p)))
					return
				}
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, r, apperr.Unauthorized("missing or invalid authorization header"))
				return
			}

			claims, err := auth.ValidateToken(cfg.Secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, r, apperr.Unauthorized("invalid token"))
				return
			}

			revoked, err := cfg.Tokens.IsRevoked(ctx, claims.ID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if revoked {
				writeError(w, r, apperr.Unauthorized("token has been revoked"))
				return
			}

			// Reload the user so role changes and deletions apply immediately.
			user, err := cfg.Users.GetByID(ctx, claims.UserID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if user == nil || user.DeletedAt != nil {
				writeError(w, r, apperr.Unauthorized("user not found"))
				return
			}

			p := claims.Principal()
			p.Email, p.Role, p.OrganizationID = user.Email, user.Role, user.OrganizationID
			ctx = context.WithValue(ctx, principalKey, p)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that checks if the caller has at least the given role.
func RequireRole(minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				writeError(w, r, apperr.Unauthorized("not authenticated"))
				return
			}
			if !model.RoleAtLeast(p.Role, minimum) {
				writeError(w, r, apperr.Forbidden("insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetPrincipal retrieves the authenticated caller from the context.
func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

// getClaims returns the token claims. It is nil for test-header principals.
func getClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// principal is GetPrincipal for handlers mounted behind AuthMiddleware.
func principal(r *http.Request) (auth.Principal, error) {
	p, ok := GetPrincipal(r.Context())
	if !ok {
		return p, apperr.Unauthorized("not authenticated")
	}
	return p, nil
}

// RequestID returns the request id assigned by LoggingMiddleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware assigns a request id and logs method, path, status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "request",
			"id", id,
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

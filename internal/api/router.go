package api

import (
	"net/http"

	"github.com/erazemk/foodbank/internal/apperr"
	"github.com/erazemk/foodbank/internal/events"
	"github.com/erazemk/foodbank/internal/metrics"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

// Options configures the API router.
type Options struct {
	JWTSecret string
	// AllowTestHeader enables the X-Test-User principal header. Never set in production.
	AllowTestHeader bool
	Events          events.Publisher
	Metrics         *metrics.Metrics
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(st *store.Store, opts Options) http.Handler {
	mux := http.NewServeMux()

	if opts.Events == nil {
		opts.Events = events.Nop{}
	}

	authHandler := &AuthHandler{Users: st.Users, Tokens: st.Tokens, JWTSecret: opts.JWTSecret}
	orgsHandler := &OrganizationsHandler{Store: st}
	usersHandler := &UsersHandler{Users: st.Users}
	volunteersHandler := &VolunteersHandler{Volunteers: st.Volunteers}
	clientsHandler := &ClientsHandler{Clients: st.Clients}
	inventoryHandler := &InventoryHandler{Inventory: st.Inventory, Events: opts.Events, Metrics: opts.Metrics}

	authMW := AuthMiddleware(AuthConfig{
		Secret:          opts.JWTSecret,
		Users:           st.Users,
		Tokens:          st.Tokens,
		AllowTestHeader: opts.AllowTestHeader,
	})
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStaff := RequireRole(model.RoleStaff)

	// authed wraps a handler with authentication and any extra middleware.
	authed := func(fn handlerFunc, mws ...func(http.Handler) http.Handler) http.Handler {
		h := handle(fn)
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return authMW(h)
	}

	mux.HandleFunc("GET /health", HealthHandler)

	// Public: login.
	mux.Handle("POST /api/auth/login", ValidateBody[loginRequest](handle(authHandler.Login)))

	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword, ValidateBody[changePasswordRequest]))
	mux.Handle("GET /api/auth/me", authed(authHandler.Me))

	// Organizations: the caller's own organization.
	mux.Handle("GET /api/organizations", authed(orgsHandler.Get))
	mux.Handle("PUT /api/organizations", authed(orgsHandler.Update, requireAdmin, ValidateBody[updateOrganizationRequest]))
	mux.Handle("GET /api/organizations/stats", authed(orgsHandler.Stats))

	// Users: read (staff+), write (admin).
	mux.Handle("GET /api/users", authed(usersHandler.List, requireStaff))
	mux.Handle("POST /api/users", authed(usersHandler.Create, requireAdmin, ValidateBody[createUserRequest]))
	mux.Handle("GET /api/users/{id}", authed(usersHandler.Get, requireStaff))
	mux.Handle("PUT /api/users/{id}", authed(usersHandler.Update, requireAdmin, ValidateBody[updateUserRequest]))
	mux.Handle("PUT /api/users/{id}/password", authed(usersHandler.ResetPassword, requireAdmin, ValidateBody[resetPasswordRequest]))
	mux.Handle("DELETE /api/users/{id}", authed(usersHandler.Delete, requireAdmin))

	// Volunteers: read (all roles), write (staff+).
	mux.Handle("GET /api/volunteers", authed(volunteersHandler.List))
	mux.Handle("POST /api/volunteers", authed(volunteersHandler.Create, requireStaff, ValidateBody[createVolunteerRequest]))
	mux.Handle("GET /api/volunteers/{id}", authed(volunteersHandler.Get))
	mux.Handle("PUT /api/volunteers/{id}", authed(volunteersHandler.Update, requireStaff, ValidateBody[updateVolunteerRequest]))
	mux.Handle("DELETE /api/volunteers/{id}", authed(volunteersHandler.Delete, requireStaff))
	mux.Handle("GET /api/volunteers/{id}/availability", authed(volunteersHandler.GetAvailability))
	mux.Handle("PUT /api/volunteers/{id}/availability", authed(volunteersHandler.SetAvailability, requireStaff, ValidateBody[availabilityRequest]))

	// Clients: read and visits (all roles), write (staff+).
	mux.Handle("GET /api/clients", authed(clientsHandler.List))
	mux.Handle("POST /api/clients", authed(clientsHandler.Create, requireStaff, ValidateBody[createClientRequest]))
	mux.Handle("GET /api/clients/{id}", authed(clientsHandler.Get))
	mux.Handle("PUT /api/clients/{id}", authed(clientsHandler.Update, requireStaff, ValidateBody[updateClientRequest]))
	mux.Handle("DELETE /api/clients/{id}", authed(clientsHandler.Delete, requireStaff))
	mux.Handle("GET /api/clients/{id}/visits", authed(clientsHandler.ListVisits))
	mux.Handle("POST /api/clients/{id}/visits", authed(clientsHandler.CreateVisit, ValidateBody[createVisitRequest]))

	// Inventory: read and transactions (all roles), write (staff+).
	mux.Handle("GET /api/inventory", authed(inventoryHandler.List))
	mux.Handle("POST /api/inventory", authed(inventoryHandler.Create, requireStaff, ValidateBody[createItemRequest]))
	mux.Handle("GET /api/inventory/categories", authed(inventoryHandler.ListCategories))
	mux.Handle("POST /api/inventory/categories", authed(inventoryHandler.CreateCategory, requireStaff, ValidateBody[createCategoryRequest]))
	mux.Handle("POST /api/inventory/transaction", authed(inventoryHandler.RecordTransaction, ValidateBody[transactionRequest]))
	mux.Handle("GET /api/inventory/alerts/low-stock", authed(inventoryHandler.LowStockAlerts))
	mux.Handle("GET /api/inventory/export", authed(inventoryHandler.Export, requireStaff))
	mux.Handle("GET /api/inventory/{id}", authed(inventoryHandler.Get))
	mux.Handle("PUT /api/inventory/{id}", authed(inventoryHandler.Update, requireStaff, ValidateBody[updateItemRequest]))
	mux.Handle("GET /api/inventory/{id}/transactions", authed(inventoryHandler.ItemTransactions))
	mux.Handle("PUT /api/inventory/{id}/image", authed(inventoryHandler.UploadImage, requireStaff))
	mux.Handle("GET /api/inventory/{id}/image", authed(inventoryHandler.GetImage))

	return opts.Metrics.Middleware(jsonFallback(mux))
}

// jsonFallback serves mux and renders its own 404 and 405 replies as JSON errors.
func jsonFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		rec := &unmatchedWriter{header: http.Header{}, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		if rec.status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", rec.header.Get("Allow"))
			writeError(w, r, apperr.MethodNotAllowed("Method not allowed"))
			return
		}
		writeError(w, r, apperr.NotFound("Route not found"))
	})
}

// unmatchedWriter captures the mux's reply to an unmatched request.
type unmatchedWriter struct {
	header http.Header
	status int
}

func (u *unmatchedWriter) Header() http.Header         { return u.header }
func (u *unmatchedWriter) WriteHeader(code int)        { u.status = code }
func (u *unmatchedWriter) Write(b []byte) (int, error) { return len(b), nil }

// HealthHandler handles GET /health.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

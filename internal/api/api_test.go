package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/foodbank/internal/auth"
	"github.com/erazemk/foodbank/internal/db"
	"github.com/erazemk/foodbank/internal/events"
	"github.com/erazemk/foodbank/internal/metrics"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "password123"
)

type testEnv struct {
	server *httptest.Server
	store  *store.Store
	events *events.Recorder
	org    *model.Organization
	admin  *model.User
	token  string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	st := store.New(db.NewTestDB(t))
	rec := &events.Recorder{}
	router := NewRouter(st, Options{
		JWTSecret:       testJWTSecret,
		AllowTestHeader: true,
		Events:          rec,
		Metrics:         metrics.New(),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	env := &testEnv{server: server, store: st, events: rec}
	env.org = createOrg(t, st, "Northside Pantry")
	env.admin = createUser(t, st, env.org.ID, "admin@northside.test", model.RoleAdmin)

	// Get token.
	resp := env.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    env.admin.Email,
		"password": testPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}
	var login struct {
		Token string `json:"token"`
	}
	decode(t, resp, &login)
	if login.Token == "" {
		t.Fatal("empty token from login")
	}
	env.token = login.Token

	return env
}

func createOrg(t *testing.T, st *store.Store, name string) *model.Organization {
	t.Helper()
	org := &model.Organization{Name: name}
	if err := st.Organizations.Create(context.Background(), org); err != nil {
		t.Fatalf("creating organization: %v", err)
	}
	return org
}

func createUser(t *testing.T, st *store.Store, orgID, email, role string) *model.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	user := &model.User{
		OrganizationID: orgID,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           role,
		FirstName:      "Test",
		LastName:       role,
	}
	if err := st.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return user
}

// tokenFor issues a token for a user created directly in the store.
func tokenFor(t *testing.T, u *model.User) string {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, auth.Principal{
		ID: u.ID, Email: u.Email, Role: u.Role, OrganizationID: u.OrganizationID,
	})
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends a JSON request. The response body is closed by the test cleanup.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	req, err := authRequest(method, e.server.URL+path, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, body)
	}
}

func expectError(t *testing.T, resp *http.Response, wantStatus int, wantKind string) errorBody {
	t.Helper()
	expectStatus(t, resp, wantStatus)
	var body errorBody
	decode(t, resp, &body)
	if body.Status != wantKind {
		t.Errorf("expected error status %q, got %q", wantKind, body.Status)
	}
	if body.Message == "" {
		t.Error("expected an error message")
	}
	return body
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/health", "", nil)
	expectStatus(t, resp, http.StatusOK)
	var body map[string]string
	decode(t, resp, &body)
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body)
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestServer(t)

	// Test invalid credentials.
	resp := env.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    env.admin.Email,
		"password": "wrong-password",
	})
	expectError(t, resp, http.StatusUnauthorized, "fail")

	// Unknown email gets the same answer.
	resp = env.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "nobody@northside.test",
		"password": testPassword,
	})
	expectError(t, resp, http.StatusUnauthorized, "fail")

	// Malformed email is a validation failure.
	resp = env.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "nope", "password": "x"})
	expectError(t, resp, http.StatusBadRequest, "fail")

	resp = env.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    env.admin.Email,
		"password": testPassword,
	})
	expectStatus(t, resp, http.StatusOK)
	var login struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	decode(t, resp, &login)
	if login.User == nil || login.User.ID != env.admin.ID {
		t.Errorf("expected admin user in login response, got %+v", login.User)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/api/inventory", "", nil)
	expectError(t, resp, http.StatusUnauthorized, "fail")

	resp = env.do(t, "GET", "/api/inventory", "not-a-jwt", nil)
	expectError(t, resp, http.StatusUnauthorized, "fail")

	forged, _ := auth.GenerateToken("other-secret", auth.Principal{
		ID: env.admin.ID, Role: model.RoleAdmin, OrganizationID: env.org.ID,
	})
	resp = env.do(t, "GET", "/api/inventory", forged, nil)
	expectError(t, resp, http.StatusUnauthorized, "fail")
}

func TestMe(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/api/auth/me", env.token, nil)
	expectStatus(t, resp, http.StatusOK)
	var me model.User
	decode(t, resp, &me)
	if me.Email != env.admin.Email || me.Role != model.RoleAdmin {
		t.Errorf("unexpected user: %+v", me)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/api/auth/logout", env.token, nil)
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, "GET", "/api/inventory", env.token, nil)
	body := expectError(t, resp, http.StatusUnauthorized, "fail")
	if body.Message != "token has been revoked" {
		t.Errorf("unexpected message: %q", body.Message)
	}
}

func TestChangePassword(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "PUT", "/api/auth/password", env.token, map[string]string{
		"current_password": "wrong-password",
		"new_password":     "new-password-1",
	})
	expectError(t, resp, http.StatusUnauthorized, "fail")

	resp = env.do(t, "PUT", "/api/auth/password", env.token, map[string]string{
		"current_password": testPassword,
		"new_password":     "short",
	})
	expectError(t, resp, http.StatusBadRequest, "fail")

	resp = env.do(t, "PUT", "/api/auth/password", env.token, map[string]string{
		"current_password": testPassword,
		"new_password":     "new-password-1",
	})
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    env.admin.Email,
		"password": "new-password-1",
	})
	expectStatus(t, resp, http.StatusOK)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	env := setupTestServer(t)

	staff := createUser(t, env.store, env.org.ID, "staff@northside.test", model.RoleStaff)
	staffToken := tokenFor(t, staff)

	resp := env.do(t, "GET", "/api/inventory", staffToken, nil)
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, "DELETE", "/api/users/"+staff.ID, env.token, nil)
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, "GET", "/api/inventory", staffToken, nil)
	expectError(t, resp, http.StatusUnauthorized, "fail")
}

func TestRoleReloadedFromStore(t *testing.T) {
	env := setupTestServer(t)

	staff := createUser(t, env.store, env.org.ID, "staff@northside.test", model.RoleStaff)
	staffToken := tokenFor(t, staff)

	// Demote after the token was issued.
	staff.Role = model.RoleVolunteer
	if _, err := env.store.Users.Update(context.Background(), staff); err != nil {
		t.Fatalf("updating user: %v", err)
	}

	resp := env.do(t, "GET", "/api/users", staffToken, nil)
	expectError(t, resp, http.StatusForbidden, "fail")
}

func TestRoleBasedAccess(t *testing.T) {
	env := setupTestServer(t)

	volunteer := createUser(t, env.store, env.org.ID, "vol@northside.test", model.RoleVolunteer)
	volToken := tokenFor(t, volunteer)
	staff := createUser(t, env.store, env.org.ID, "staff@northside.test", model.RoleStaff)
	staffToken := tokenFor(t, staff)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"volunteer cannot create items", "POST", "/api/inventory", volToken, map[string]any{"name": "x"}, http.StatusForbidden},
		{"volunteer cannot create categories", "POST", "/api/inventory/categories", volToken, map[string]any{"name": "x"}, http.StatusForbidden},
		{"volunteer cannot list users", "GET", "/api/users", volToken, nil, http.StatusForbidden},
		{"volunteer cannot create clients", "POST", "/api/clients", volToken, map[string]any{"first_name": "x"}, http.StatusForbidden},
		{"volunteer cannot export", "GET", "/api/inventory/export", volToken, nil, http.StatusForbidden},
		{"volunteer can list inventory", "GET", "/api/inventory", volToken, nil, http.StatusOK},
		{"volunteer can list clients", "GET", "/api/clients", volToken, nil, http.StatusOK},
		{"volunteer can list volunteers", "GET", "/api/volunteers", volToken, nil, http.StatusOK},
		{"staff can list users", "GET", "/api/users", staffToken, nil, http.StatusOK},
		{"staff cannot create users", "POST", "/api/users", staffToken, map[string]any{"email": "x@y.z"}, http.StatusForbidden},
		{"staff cannot update organization", "PUT", "/api/organizations", staffToken, map[string]any{"name": "x"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, tt.method, tt.path, tt.token, tt.body)
			expectStatus(t, resp, tt.want)
		})
	}
}

func TestTestUserHeader(t *testing.T) {
	env := setupTestServer(t)

	header, _ := json.Marshal(auth.Principal{
		ID:             env.admin.ID,
		Email:          env.admin.Email,
		Role:           model.RoleAdmin,
		OrganizationID: env.org.ID,
	})

	req, _ := authRequest("GET", env.server.URL+"/api/organizations", "", nil)
	req.Header.Set(TestUserHeader, string(header))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	// Roles outside the known set are rejected.
	req, _ = authRequest("GET", env.server.URL+"/api/organizations", "", nil)
	req.Header.Set(TestUserHeader, `{"id":"x","organization_id":"y","role":"root"}`)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	expectError(t, resp2, http.StatusUnauthorized, "fail")
}

func TestTestUserHeaderDisabled(t *testing.T) {
	st := store.New(db.NewTestDB(t))
	server := httptest.NewServer(NewRouter(st, Options{JWTSecret: testJWTSecret}))
	t.Cleanup(server.Close)

	req, _ := authRequest("GET", server.URL+"/api/inventory", "", nil)
	req.Header.Set(TestUserHeader, `{"id":"a","organization_id":"b","role":"admin"}`)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with test header disabled, got %d", resp.StatusCode)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/api/nope", env.token, nil)
	expectError(t, resp, http.StatusNotFound, "fail")
}

func TestWrongMethodOnKnownRoute(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "DELETE", "/api/inventory/some-item", env.token, nil)
	allow := resp.Header.Get("Allow")
	expectError(t, resp, http.StatusMethodNotAllowed, "fail")
	if !strings.Contains(allow, "GET") || !strings.Contains(allow, "PUT") {
		t.Errorf("expected Allow to list GET and PUT, got %q", allow)
	}
}

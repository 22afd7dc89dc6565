package main

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/foodbank/internal/config"
	"github.com/erazemk/foodbank/internal/db"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

func TestBootstrapCreatesAdminOnce(t *testing.T) {
	st := store.New(db.NewTestDB(t))
	ctx := context.Background()
	cfg := config.BootstrapConfig{Organization: "Riverside", AdminEmail: "ops@riverside.example"}

	res, err := bootstrap(ctx, st, cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if res == nil {
		t.Fatal("expected accounts to be created on an empty database")
	}
	if res.Admin.Role != model.RoleAdmin || res.Admin.OrganizationID != res.Organization.ID {
		t.Errorf("unexpected admin: %+v", res.Admin)
	}
	if len(res.Password) != 16 {
		t.Errorf("expected 16 character password, got %d", len(res.Password))
	}

	stored, err := st.Users.GetByEmail(ctx, "ops@riverside.example")
	if err != nil || stored == nil {
		t.Fatalf("admin not stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(res.Password)) != nil {
		t.Error("stored hash does not match the printed password")
	}

	again, err := bootstrap(ctx, st, cfg)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if again != nil {
		t.Error("bootstrap must be a no-op once users exist")
	}
}

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := generatePassword(16)
	if len(a) != 16 || a == b {
		t.Errorf("expected distinct 16 character passwords, got %q and %q", a, b)
	}
}

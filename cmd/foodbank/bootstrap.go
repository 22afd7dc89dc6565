package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/foodbank/internal/config"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

// bootstrapResult describes the accounts created on an empty database.
type bootstrapResult struct {
	Organization *model.Organization
	Admin        *model.User
	Password     string
}

// bootstrap creates the first organization and its admin when the store has
// no users. It returns nil when there was nothing to do.
func bootstrap(ctx context.Context, st *store.Store, cfg config.BootstrapConfig) (*bootstrapResult, error) {
	n, err := st.Users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}

	org := &model.Organization{Name: cfg.Organization}
	if err := st.Organizations.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		return nil, fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	admin := &model.User{
		OrganizationID: org.ID,
		Email:          cfg.AdminEmail,
		PasswordHash:   string(hash),
		Role:           model.RoleAdmin,
		FirstName:      "Admin",
	}
	if err := st.Users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("creating admin user: %w", err)
	}

	return &bootstrapResult{Organization: org, Admin: admin, Password: password}, nil
}

// printBootstrapResult prints the created admin credentials to stdout.
func printBootstrapResult(r *bootstrapResult) {
	fmt.Printf("Organization created: %s\n", r.Organization.Name)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", r.Admin.Email)
	fmt.Printf("  Password: %s\n", r.Password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

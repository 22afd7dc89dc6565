package store

import (
	"context"
	"testing"
	"time"
)

func TestRevokeAndCheckToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Token should not be revoked initially.
	revoked, err := f.store.Tokens.IsRevoked(ctx, "test-jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Error("expected token not to be revoked")
	}

	if err := f.store.Tokens.Revoke(ctx, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err = f.store.Tokens.IsRevoked(ctx, "test-jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected token to be revoked")
	}

	// Revoking twice is not an error.
	if err := f.store.Tokens.Revoke(ctx, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("second Revoke: %v", err)
	}
}

func TestExpiredRevocationsCleanedUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Tokens.Revoke(ctx, "old-jti", time.Now().Add(-time.Hour))
	f.store.Tokens.Revoke(ctx, "new-jti", time.Now().Add(time.Hour))

	revoked, _ := f.store.Tokens.IsRevoked(ctx, "old-jti")
	if revoked {
		t.Error("expected expired revocation to be cleaned up")
	}
}

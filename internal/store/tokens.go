package store

import (
	"context"
	"fmt"
	"time"
)

type tokenRepository struct{ base }

// Revoke adds a token's JTI to the revocation list.
func (r *tokenRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := r.exec(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?) ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	// Opportunistically clean up expired revocations.
	_, _ = r.exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, now())

	return nil
}

// IsRevoked checks if a token's JTI has been revoked.
func (r *tokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	if _, err := r.get(ctx, &count, `SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti); err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return count > 0, nil
}

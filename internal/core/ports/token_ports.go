package ports

import (
	"context"
	"time"

	"github.com/examdesk/examdesk/internal/core/domain"
)

// TokenClaims is the decoded identity carried by a valid access token.
// It reflects the account at issuance time, not its current state.
type TokenClaims struct {
	UserID    int
	Name      string
	Email     string
	Role      domain.Role
	ExpiresAt time.Time
}

type TokenService interface {
	// GenerateAccessToken issues a signed access token for the account and
	// returns its absolute expiry.
	GenerateAccessToken(account *domain.Account) (string, time.Time, error)
	// ParseAccessToken verifies signature, issuer, audience, and expiry
	// (zero clock-skew tolerance). Returns domain.ErrTokenInvalid on any
	// failure.
	ParseAccessToken(token string) (*TokenClaims, error)
	// GenerateRefreshToken produces a cryptographically random opaque
	// string with no embedded claims.
	GenerateRefreshToken() (string, error)
}

type RefreshTokenRepository interface {
	Store(ctx context.Context, token *domain.RefreshToken) error
	// Take removes the entry for tokenHash and returns it, atomically.
	// Returns (nil, nil) when no entry exists. At most one concurrent
	// caller can receive a given entry.
	Take(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// Delete removes the entry if present and reports whether it did.
	Delete(ctx context.Context, tokenHash string) (bool, error)
}

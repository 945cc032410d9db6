package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a registry entry for one opaque refresh token. Only the
// SHA-256 hash of the token is kept; the plaintext exists client-side only.
// An entry is removed on redemption (rotation), on logout, or when found
// expired at use.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	TokenHash string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the entry is past its expiry at the given time.
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

package ports

import (
	"context"
	"time"

	"github.com/examdesk/examdesk/internal/core/domain"
)

// AuthResult is the outcome of a successful login, registration, or
// refresh: one access token, one refresh token, and the account profile.
type AuthResult struct {
	User         *domain.Account
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	// Refresh redeems a refresh token. Redemption is single-use: the old
	// entry is deleted and a new token pair is issued.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Logout revokes a refresh token; an absent token is not an error.
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error
}

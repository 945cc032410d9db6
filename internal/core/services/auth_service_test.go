package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk/internal/adapters/repository/memory"
	"github.com/examdesk/examdesk/internal/core/domain"
	"github.com/examdesk/examdesk/internal/core/ports"
)

func newTestAuthService(t *testing.T) (*AuthService, *UserService) {
	t.Helper()
	users := newTestUserService()
	auth := NewAuthService(users, newTestTokenService(), memory.NewRefreshTokenRepository())
	return auth, users
}

func registerTestAccount(t *testing.T, users *UserService, email string) *domain.Account {
	t.Helper()
	account, err := users.Register(context.Background(), registerInput(email))
	require.NoError(t, err)
	return account
}

func TestLoginIssuesTokenPair(t *testing.T) {
	auth, users := newTestAuthService(t)
	ctx := context.Background()
	registerTestAccount(t, users, "jane@example.com")

	result, err := auth.Login(ctx, "jane@example.com", "student123")
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, result.AccessToken, result.RefreshToken)
	assert.Equal(t, "jane@example.com", result.User.Email)
	assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), result.ExpiresAt, 5*time.Second)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, users := newTestAuthService(t)
	ctx := context.Background()
	registerTestAccount(t, users, "jane@example.com")

	_, err := auth.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	result, err := auth.Register(ctx, registerInput("jane@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	// The refresh token from registration is immediately redeemable.
	_, err = auth.Refresh(ctx, result.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRotatesAndIsSingleUse(t *testing.T) {
	auth, users := newTestAuthService(t)
	ctx := context.Background()
	registerTestAccount(t, users, "jane@example.com")

	login, err := auth.Login(ctx, "jane@example.com", "student123")
	require.NoError(t, err)

	rotated, err := auth.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The redeemed token is gone; a replay fails.
	_, err = auth.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	// The rotated token still works.
	_, err = auth.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	auth, users := newTestAuthService(t)
	ctx := context.Background()
	registerTestAccount(t, users, "jane@example.com")

	base := time.Now()
	auth.now = func() time.Time { return base }

	login, err := auth.Login(ctx, "jane@example.com", "student123")
	require.NoError(t, err)

	auth.now = func() time.Time { return base.Add(RefreshTokenTTL + time.Hour) }
	_, err = auth.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)

	// Expired tokens are purged on redemption, not left behind.
	_, err = auth.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	auth, users := newTestAuthService(t)
	ctx := context.Background()
	registerTestAccount(t, users, "jane@example.com")

	login, err := auth.Login(ctx, "jane@example.com", "student123")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, login.RefreshToken))

	_, err = auth.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	// Revoking an unknown token is not an error.
	assert.NoError(t, auth.Logout(ctx, "never-issued"))
}

func TestConcurrentRefreshRedeemsOnce(t *testing.T) {
	auth, users := newTestAuthService(t)
	ctx := context.Background()
	registerTestAccount(t, users, "jane@example.com")

	login, err := auth.Login(ctx, "jane@example.com", "student123")
	require.NoError(t, err)

	const workers = 16
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := auth.Refresh(ctx, login.RefreshToken)
			results <- err
		}()
	}

	var succeeded int
	for i := 0; i < workers; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrTokenNotFound)
		}
	}
	assert.Equal(t, 1, succeeded)
}

var _ ports.AuthService = (*AuthService)(nil)

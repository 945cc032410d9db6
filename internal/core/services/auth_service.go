package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/examdesk/examdesk/internal/core/domain"
	"github.com/examdesk/examdesk/internal/core/ports"
)

// AuthService composes the credential store, token service, and refresh
// token registry into the login/register/refresh/logout flows.
type AuthService struct {
	users      ports.UserService
	tokens     ports.TokenService
	refreshTTL time.Duration
	repo       ports.RefreshTokenRepository
	now        func() time.Time
}

func NewAuthService(users ports.UserService, tokens ports.TokenService, repo ports.RefreshTokenRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		refreshTTL: RefreshTokenTTL,
		repo:       repo,
		now:        time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	account, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, account)
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	account, err := s.users.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, account)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	// Take removes the entry, so a token can be redeemed exactly once.
	entry, err := s.repo.Take(ctx, s.hashToken(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if entry == nil {
		return nil, domain.ErrTokenNotFound
	}
	if entry.ExpiredAt(s.now()) {
		// Already purged by Take.
		return nil, domain.ErrTokenExpired
	}

	account, err := s.users.GetByID(ctx, entry.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if account == nil {
		return nil, domain.ErrUserNotFound
	}

	return s.issueTokens(ctx, account)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	// Best-effort revoke: a token that is already gone is not an error.
	_, err := s.repo.Delete(ctx, s.hashToken(refreshToken))
	return err
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	return s.users.ChangePassword(ctx, userID, currentPassword, newPassword)
}

func (s *AuthService) issueTokens(ctx context.Context, account *domain.Account) (*ports.AuthResult, error) {
	accessToken, expiresAt, err := s.tokens.GenerateAccessToken(account)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.now()
	entry := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    account.ID,
		TokenHash: s.hashToken(refreshToken),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.repo.Store(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &ports.AuthResult{
		User:         account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

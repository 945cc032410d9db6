package services

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/examdesk/examdesk/internal/core/domain"
	"github.com/examdesk/examdesk/internal/core/ports"
)

const (
	// AccessTokenTTL is the lifetime of an access token. Access tokens are
	// stateless and cannot be revoked before expiry.
	AccessTokenTTL = 60 * time.Minute
	// RefreshTokenTTL is the lifetime of a refresh token registry entry.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
}

type accessClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 access tokens and generates
// opaque refresh tokens.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

func NewTokenService(config TokenConfig) *TokenService {
	return &TokenService{
		config: config,
		now:    time.Now,
	}
}

func (s *TokenService) GenerateAccessToken(account *domain.Account) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(AccessTokenTTL)

	claims := accessClaims{
		Name:  account.Name,
		Email: account.Email,
		Role:  string(account.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(account.ID),
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Audience:  jwt.ClaimStrings{s.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *TokenService) ParseAccessToken(tokenStr string) (*ports.TokenClaims, error) {
	// No leeway: expiry is enforced with zero clock-skew tolerance.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithAudience(s.config.Audience),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(tokenStr, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.config.Secret, nil
	})
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	return &ports.TokenClaims{
		UserID:    userID,
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/examdesk/examdesk/internal/core/domain"
	"github.com/examdesk/examdesk/internal/core/ports"
)

const keyPrefix = "rt:"

// RefreshTokenRepository keeps registry entries in Redis with a TTL equal
// to the entry's remaining lifetime, so expired tokens also disappear from
// the store on their own. GETDEL makes Take single-winner.
type RefreshTokenRepository struct {
	client *redis.Client
}

func NewRefreshTokenRepository(client *redis.Client) ports.RefreshTokenRepository {
	return &RefreshTokenRepository{client: client}
}

func (r *RefreshTokenRepository) Store(ctx context.Context, token *domain.RefreshToken) error {
	payload, err := json.Marshal(storedToken{
		ID:        token.ID.String(),
		UserID:    token.UserID,
		IssuedAt:  token.IssuedAt.Unix(),
		ExpiresAt: token.ExpiresAt.Unix(),
	})
	if err != nil {
		return err
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.client.Set(ctx, keyPrefix+token.TokenHash, payload, ttl).Err()
}

func (r *RefreshTokenRepository) Take(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	payload, err := r.client.GetDel(ctx, keyPrefix+tokenHash).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeToken(tokenHash, payload)
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, tokenHash string) (bool, error) {
	n, err := r.client.Del(ctx, keyPrefix+tokenHash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type storedToken struct {
	ID        string `json:"id"`
	UserID    int    `json:"user_id"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func decodeToken(tokenHash string, payload []byte) (*domain.RefreshToken, error) {
	var stored storedToken
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}

	token := &domain.RefreshToken{
		UserID:    stored.UserID,
		TokenHash: tokenHash,
		IssuedAt:  time.Unix(stored.IssuedAt, 0),
		ExpiresAt: time.Unix(stored.ExpiresAt, 0),
	}
	if id, err := uuid.Parse(stored.ID); err == nil {
		token.ID = id
	}
	return token, nil
}

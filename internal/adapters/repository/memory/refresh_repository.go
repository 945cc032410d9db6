package memory

import (
	"context"
	"sync"

	"github.com/examdesk/examdesk/internal/core/domain"
	"github.com/examdesk/examdesk/internal/core/ports"
)

// RefreshTokenRepository keys entries by token hash in a mutex-guarded map.
// Take is atomic, so concurrent redemptions of the same token yield the
// entry to exactly one caller.
type RefreshTokenRepository struct {
	mu      sync.Mutex
	entries map[string]*domain.RefreshToken
}

func NewRefreshTokenRepository() ports.RefreshTokenRepository {
	return &RefreshTokenRepository{
		entries: make(map[string]*domain.RefreshToken),
	}
}

func (r *RefreshTokenRepository) Store(ctx context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *token
	r.entries[stored.TokenHash] = &stored
	return nil
}

func (r *RefreshTokenRepository) Take(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[tokenHash]
	if !ok {
		return nil, nil
	}
	delete(r.entries, tokenHash)

	out := *entry
	return &out, nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[tokenHash]
	if ok {
		delete(r.entries, tokenHash)
	}
	return ok, nil
}

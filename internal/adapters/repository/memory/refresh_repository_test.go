package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk/internal/core/domain"
)

func newEntry(tokenHash string) *domain.RefreshToken {
	now := time.Now()
	return &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    1,
		TokenHash: tokenHash,
		IssuedAt:  now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}
}

func TestRefreshTokenStoreAndTake(t *testing.T) {
	repo := NewRefreshTokenRepository()
	ctx := context.Background()

	entry := newEntry("hash-1")
	require.NoError(t, repo.Store(ctx, entry))

	got, err := repo.Take(ctx, "hash-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.UserID, got.UserID)

	// Take removed the entry.
	got, err = repo.Take(ctx, "hash-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRefreshTokenTakeUnknown(t *testing.T) {
	repo := NewRefreshTokenRepository()

	got, err := repo.Take(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRefreshTokenDelete(t *testing.T) {
	repo := NewRefreshTokenRepository()
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, newEntry("hash-1")))

	deleted, err := repo.Delete(ctx, "hash-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "hash-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRefreshTokenTakeIsSingleWinner(t *testing.T) {
	repo := NewRefreshTokenRepository()
	ctx := context.Background()
	require.NoError(t, repo.Store(ctx, newEntry("contended")))

	const workers = 32
	var wg sync.WaitGroup
	winners := make(chan *domain.RefreshToken, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := repo.Take(ctx, "contended")
			assert.NoError(t, err)
			if got != nil {
				winners <- got
			}
		}()
	}
	wg.Wait()
	close(winners)

	var count int
	for range winners {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestRefreshTokenStoreCopiesEntry(t *testing.T) {
	repo := NewRefreshTokenRepository()
	ctx := context.Background()

	entry := newEntry("hash-1")
	require.NoError(t, repo.Store(ctx, entry))
	entry.UserID = 99

	got, err := repo.Take(ctx, "hash-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.UserID)
}

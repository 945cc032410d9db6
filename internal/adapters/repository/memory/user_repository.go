package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/examdesk/examdesk/internal/core/domain"
	"github.com/examdesk/examdesk/internal/core/ports"
)

// UserRepository is the default in-memory account store. All methods are
// safe for concurrent use; accounts are copied on the way in and out.
type UserRepository struct {
	mu       sync.Mutex
	accounts map[int]*domain.Account
}

func NewUserRepository() ports.UserRepository {
	return &UserRepository{
		accounts: make(map[int]*domain.Account),
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAccount(r.findByEmail(email)), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAccount(r.accounts[id]), nil
}

func (r *UserRepository) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByEmail(account.Email) != nil {
		return domain.ErrDuplicateAccount
	}

	account.ID = r.nextID()
	stored := *account
	r.accounts[stored.ID] = &stored
	return nil
}

func (r *UserRepository) Update(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.accounts[account.ID]
	if !ok {
		return domain.ErrUserNotFound
	}

	existing.Name = account.Name
	existing.Email = account.Email
	existing.Department = account.Department
	existing.StudentID = account.StudentID
	return nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.accounts[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	existing.PasswordHash = hash
	return nil
}

// findByEmail must be called with the lock held.
func (r *UserRepository) findByEmail(email string) *domain.Account {
	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			return a
		}
	}
	return nil
}

// nextID is max existing id + 1, or 1 when empty. Must be called with the
// lock held.
func (r *UserRepository) nextID() int {
	max := 0
	for id := range r.accounts {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func copyAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}

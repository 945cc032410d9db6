package ports

import (
	"context"

	"github.com/examdesk/examdesk/internal/core/domain"
)

type UserRepository interface {
	// GetByEmail looks up an account by email, case-insensitively.
	// Returns (nil, nil) when no account matches.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// GetByID returns (nil, nil) when no account matches.
	GetByID(ctx context.Context, id int) (*domain.Account, error)
	// Create stores a new account and assigns its ID. Returns
	// domain.ErrDuplicateAccount when the email is already taken; the
	// check and the insert are atomic.
	Create(ctx context.Context, account *domain.Account) error
	// Update overwrites the mutable profile fields (name, email,
	// department, student id) of an existing account.
	Update(ctx context.Context, account *domain.Account) error
	UpdatePasswordHash(ctx context.Context, id int, hash string) error
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	StudentID  string
}

type UpdateProfileInput struct {
	ID         int
	Name       string
	Email      string
	Department string
	StudentID  string
}

type UserService interface {
	// Authenticate returns domain.ErrInvalidCredentials for both unknown
	// email and wrong password; callers must not learn which one failed.
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	GetByID(ctx context.Context, id int) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, input UpdateProfileInput) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

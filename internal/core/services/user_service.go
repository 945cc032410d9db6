package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/examdesk/examdesk/internal/core/domain"
	"github.com/examdesk/examdesk/internal/core/ports"
)

// UserService is the credential store: account lookup, registration,
// password verification and change, profile updates.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
	}
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Same error for unknown email and wrong password.
	if account == nil || !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateAccount
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Name:         input.Name,
		Email:        strings.TrimSpace(input.Email),
		Role:         role,
		PasswordHash: hash,
		Department:   input.Department,
		StudentID:    input.StudentID,
		CreatedAt:    time.Now().UTC(),
	}

	// The repository re-checks the email atomically; two concurrent
	// registrations for the same address cannot both succeed.
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (*domain.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	account, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if account == nil {
		return domain.ErrUserNotFound
	}

	if !s.hasher.Verify(currentPassword, account.PasswordHash) {
		return domain.ErrWrongPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, userID, hash)
}

func (s *UserService) UpdateProfile(ctx context.Context, input ports.UpdateProfileInput) error {
	account, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if account == nil {
		return domain.ErrUserNotFound
	}

	// ID and role are not touched by profile updates.
	account.Name = input.Name
	account.Email = input.Email
	account.Department = input.Department
	account.StudentID = input.StudentID

	return s.repo.Update(ctx, account)
}

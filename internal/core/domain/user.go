package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles. Role checks are done against
// these constants, never against free-form strings.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleInstructor Role = "Instructor"
	RoleStudent    Role = "Student"
)

// ParseRole validates a role string coming from the outside world.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Account is a registered user. Email is unique with case-insensitive
// comparison. Accounts are never hard-deleted.
type Account struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Department   string    `json:"department,omitempty"`
	StudentID    string    `json:"studentId,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

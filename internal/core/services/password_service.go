package services

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/examdesk/examdesk/internal/core/ports"
)

// legacySalt is the fixed application-wide salt used by the sha256 scheme.
// Identical passwords therefore produce identical digests across accounts,
// and comparison is not constant-time. This is intentionally kept for
// compatibility with existing stored hashes; new deployments can select
// the bcrypt scheme instead.
const legacySalt = "ExamDeskStaticSalt"

// SHA256Hasher is the legacy password scheme: sha256(password + salt),
// base64 encoded.
type SHA256Hasher struct{}

func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

func (h *SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password + legacySalt))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func (h *SHA256Hasher) Verify(password, digest string) bool {
	computed, _ := h.Hash(password)
	return computed == digest
}

// BcryptHasher is the per-user-salted alternative scheme.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// NewHasher selects a hashing scheme by name ("sha256" or "bcrypt").
func NewHasher(scheme string) (ports.PasswordHasher, error) {
	switch scheme {
	case "sha256":
		return NewSHA256Hasher(), nil
	case "bcrypt":
		return NewBcryptHasher(), nil
	default:
		return nil, fmt.Errorf("unknown hash scheme %q", scheme)
	}
}

package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	PasswordPlain  = "plain"
	PasswordBcrypt = "bcrypt"
)

// PasswordHasher decides how passwords are stored and compared.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(stored, password string) bool
}

// NewPasswordHasher returns the hasher for the given policy name. An empty
// name selects the plain policy.
func NewPasswordHasher(policy string) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", PasswordPlain:
		return PlainHasher{}, nil
	case PasswordBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password policy %q", policy)
	}
}

// PlainHasher stores passwords as given. This is the historical behaviour of
// the site and keeps existing user files working.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlainHasher) Compare(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// BcryptHasher stores bcrypt hashes. Records that still hold a plaintext
// password are compared as plaintext.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(stored, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	if err == nil {
		return true
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false
	}
	return PlainHasher{}.Compare(stored, password)
}

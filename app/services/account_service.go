package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
)

// Identity is the result of a successful login
type Identity struct {
	Login string `json:"login"`
	Role  string `json:"role"`
}

// AccountService handles registration and login.
type AccountService struct {
	repo   repository.UserRepository
	hasher PasswordHasher

	// AfterWrite, when set, runs after every new account.
	AfterWrite func(ctx context.Context)
}

// NewAccountService creates an account service. A nil hasher keeps passwords
// in plain text.
func NewAccountService(repo repository.UserRepository, hasher PasswordHasher) *AccountService {
	if hasher == nil {
		hasher = PlainHasher{}
	}
	return &AccountService{repo: repo, hasher: hasher}
}

// Register creates a user account with the user role
func (s *AccountService) Register(ctx context.Context, login, password, email string) error {
	return s.create(ctx, login, password, email, models.ROLE_USER)
}

func (s *AccountService) create(ctx context.Context, login, password, email, role string) error {
	if err := requireFields(map[string]string{"login": login, "password": password}); err != nil {
		return err
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	user, err := models.CreateUser(login, stored, email, role)
	if err != nil {
		return fromValidator(err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrLoginTaken
		}
		return fmt.Errorf("register %s: %w", login, err)
	}

	if s.AfterWrite != nil {
		s.AfterWrite(ctx)
	}
	return nil
}

// Authenticate checks the credentials. Unknown logins and wrong passwords
// fail the same way.
func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*Identity, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Compare(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	role := user.Role
	if role == "" {
		role = models.ROLE_USER
	}
	return &Identity{Login: user.Login, Role: role}, nil
}

// EnsureAdmin creates the admin account when the store holds no users yet.
func (s *AccountService) EnsureAdmin(ctx context.Context, login, password string) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	err = s.create(ctx, login, password, "", models.ROLE_ADMIN)
	if errors.Is(err, ErrLoginTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Infof("Seeded admin account %q", login)
	return nil
}

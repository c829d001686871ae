// Package auth handles account signup, password login and the admin seed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/database"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

const bcryptCost = 10

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("account pending approval")
	ErrEmailTaken         = errors.New("user already exists")
)

// UserStore is the subset of the repository used for accounts
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SeedAdmin(ctx context.Context, email, passwordHash string) (bool, error)
}

// Service implements signup and login
type Service struct {
	store  UserStore
	logger *logging.Logger
}

// NewService creates an auth service
func NewService(store UserStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: store, logger: logger}
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unapproved user account
func (s *Service) Signup(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, email, hash)
	if errors.Is(err, database.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithUserID(user.ID).Info("User signed up, awaiting approval")
	return user, nil
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable; unapproved accounts are rejected after the password check.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsApproved {
		return nil, ErrPendingApproval
	}
	return user, nil
}

// SeedAdmin ensures the configured admin account exists. Empty credentials
// disable seeding.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	created, err := s.store.SeedAdmin(ctx, email, hash)
	if err != nil {
		return err
	}
	if created {
		s.logger.WithField("email", email).Info("Seeded admin account")
	}
	return nil
}

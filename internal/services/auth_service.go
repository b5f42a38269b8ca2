// Package services provides the business logic layer for the kanban tracker.
// This file implements authentication services: registration, credential
// verification and password hashing using bcrypt.
package services

import (
	"context"
	"errors"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
	"github.com/desy0305/e-KanBan2clicks/internal/repository"
	"github.com/desy0305/e-KanBan2clicks/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and authentication.
// Provides a layer of abstraction between HTTP handlers and the user store.
//
// Dependencies:
//   - UserStore: credential store (users table)
//   - ValidationService: registration form checks
//   - bcrypt: password hashing and verification
//
// Security Notes:
//   - Plaintext passwords are never stored or logged
//   - Unknown username and wrong password produce the same error
type AuthService struct {
	users      repository.UserStore
	validation *security.ValidationService
	cost       int
}

// NewAuthService creates an AuthService hashing with the given bcrypt cost.
// A cost outside bcrypt's accepted range falls back to bcrypt.DefaultCost.
//
// Example:
//
//	authService := services.NewAuthService(repository.NewUserRepository(), validation, 12)
//	user, err := authService.Authenticate(ctx, "alice", "pw1")
func NewAuthService(users repository.UserStore, validation *security.ValidationService, cost int) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, validation: validation, cost: cost}
}

// Register creates a new user in the given organization.
// The organization string is taken as-is; no organization has to exist beforehand.
//
// Returns:
//   - *models.User: the stored user with its assigned ID
//   - error: ValidationError, ErrDuplicateUsername or StoreError
//
// Error Cases:
//   - Username taken (in any organization): ErrDuplicateUsername, nothing written
//   - Two concurrent registrations of one name: the unique index rejects the
//     second insert and it also yields ErrDuplicateUsername
func (s *AuthService) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	if err := s.validation.ValidateRegistration(form); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByUsername(ctx, form.Username)
	switch {
	case err == nil && existing != nil:
		return nil, apperrors.ErrDuplicateUsername
	case err != nil && !errors.Is(err, repository.ErrUserNotFound):
		return nil, err
	}

	hash, err := s.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     form.Username,
		PasswordHash: hash,
		Organization: form.Organization,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies user credentials and returns the user record on success.
//
// Returns:
//   - *models.User: user record if the credentials match
//   - error: ErrInvalidCredentials for unknown user or wrong password, StoreError otherwise
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// HashPassword generates a bcrypt hash of the provided plaintext password.
// The output is 60 characters and embeds salt and cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperrors.NewValidationError("password", "password cannot be hashed")
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

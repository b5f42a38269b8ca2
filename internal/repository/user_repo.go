// Package repository implements the database access layer for the kanban tracker.
// This file handles user accounts: the credential store behind login and registration.
package repository

import (
	"context"
	"errors"

	"github.com/desy0305/e-KanBan2clicks/internal/database"
	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// ErrUserNotFound is returned by lookups that match no user.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles user-related database operations.
// Users are created at registration and never updated or deleted.
type UserRepository struct{}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByUsername retrieves a user by username, including the password hash.
// Used for authentication and for the duplicate check during registration.
//
// Returns:
//   - *models.User: User with full details including password hash
//   - error: ErrUserNotFound if the username doesn't exist, StoreError otherwise
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, organization FROM users WHERE username = $1`

	var user models.User
	err := database.DB.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Organization,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Store("users.find_by_username", err)
	}

	return &user, nil
}

// Create inserts a new user into the database.
// Password must be pre-hashed before calling this method.
//
// Database: username is UNIQUE. A violation (for example two concurrent
// registrations of the same name) is reported as ErrDuplicateUsername.
// Side Effects: Populates user.ID with the database-generated value
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, organization)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := database.DB.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Organization).
		Scan(&user.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.ErrDuplicateUsername
	}
	return apperrors.Store("users.create", err)
}

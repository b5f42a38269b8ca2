// Package models defines the domain entities and data transfer objects for the kanban tracker.
// It includes database models mapped to PostgreSQL tables, JSON/form DTOs for user input,
// and the request-scoped identity derived from a session.
package models

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents an account that belongs to exactly one organization.
// Usernames are unique across all organizations. Organization is a free-form
// string; "Org1" and "org1" are two different tenants.
//
// Database Table: users
// Security Note: PasswordHash is never serialized
type User struct {
	ID           int    `db:"id" json:"id"`                     // Primary key, auto-increment
	Username     string `db:"username" json:"username"`         // Unique, used for login
	PasswordHash string `db:"password_hash" json:"-"`           // bcrypt hashed password
	Organization string `db:"organization" json:"organization"` // Tenant key
}

// Card is a single inventory item tracked on the kanban board.
// Organization is stamped from the creator's session and is never sent to clients.
//
// Database Table: kanban_cards
// Status Values: open-ended, typically "Full", "In Use", "Empty"
type Card struct {
	ID           int    `db:"id" json:"id"`
	Item         string `db:"item" json:"item"`
	Quantity     int    `db:"quantity" json:"quantity"`
	Status       string `db:"status" json:"status"`
	Location     string `db:"location" json:"location"`
	Supplier     string `db:"supplier" json:"supplier"`
	Organization string `db:"organization" json:"-"`
}

// ============================================================================
// Data Transfer Objects (DTOs) - Input
// ============================================================================

// RegisterForm represents the registration form.
type RegisterForm struct {
	Username     string `form:"username" validate:"required"`
	Password     string `form:"password" validate:"required"`
	Organization string `form:"organization" validate:"required"`
}

// LoginForm represents user login credentials from the login form.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// CardForm is the JSON body of POST /api/cards.
// Quantity is a pointer so a missing field can be told apart from zero; it is
// a float so any JSON number is accepted and truncated on insert.
type CardForm struct {
	Item     string   `json:"item" validate:"required,max=255"`
	Quantity *float64 `json:"quantity" validate:"required,gte=0"`
	Status   string   `json:"status" validate:"required,max=64"`
	Location string   `json:"location" validate:"required,max=255"`
	Supplier string   `json:"supplier" validate:"required,max=255"`
}

// StatusUpdateForm is the JSON body of PUT /api/cards/{id}.
type StatusUpdateForm struct {
	Status string `json:"status" validate:"required,max=64"`
}

// ============================================================================
// View Models - JSON Responses
// ============================================================================

// UserInfo is returned by GET /api/user.
type UserInfo struct {
	Username     string `json:"username"`
	Organization string `json:"organization"`
}

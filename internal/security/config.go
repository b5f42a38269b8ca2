// Package security provides centralized security configuration and utilities:
// password hashing parameters, session cookie settings, input validation and
// the structured security logger.
package security

import (
	"time"

	"github.com/desy0305/e-KanBan2clicks/internal/config"
)

// SecurityConfig holds all security-related configuration values.
type SecurityConfig struct {
	// Password storage
	BcryptCost int // Cost factor for bcrypt hashing

	// Session management
	SessionTimeout    time.Duration // Session inactivity timeout
	SessionCookieName string        // Name of session cookie
	SessionSecure     bool          // Require HTTPS for session cookies
	SessionHTTPOnly   bool          // Prevent JavaScript access to session cookies
	SessionSameSite   string        // SameSite attribute of the session cookie

	// Input validation
	MaxUsernameLength     int // Maximum characters in a username
	MaxOrganizationLength int // Maximum characters in an organization name
	MaxPasswordBytes      int // bcrypt only hashes the first 72 bytes
}

// DefaultSecurityConfig returns security configuration with recommended defaults.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		BcryptCost: 12,

		SessionTimeout:    8 * time.Hour,
		SessionCookieName: "kanban_session",
		SessionSecure:     false,
		SessionHTTPOnly:   true,
		SessionSameSite:   "Lax",

		MaxUsernameLength:     80,
		MaxOrganizationLength: 120,
		MaxPasswordBytes:      72,
	}
}

// NewSecurityConfig derives the security configuration from application config.
func NewSecurityConfig(cfg *config.Config) *SecurityConfig {
	sc := DefaultSecurityConfig()
	sc.BcryptCost = cfg.BcryptCost
	sc.SessionTimeout = cfg.SessionTimeout
	sc.SessionCookieName = cfg.SessionCookieName
	sc.SessionSecure = cfg.SessionCookieSecure
	return sc
}

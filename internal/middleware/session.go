package middleware

import (
	"github.com/desy0305/e-KanBan2clicks/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// NewSessionStore creates the server-side session store. A nil storage keeps
// sessions in process memory.
func NewSessionStore(cfg *security.SecurityConfig, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Expiration:     cfg.SessionTimeout,
		Storage:        storage,
		KeyLookup:      "cookie:" + cfg.SessionCookieName,
		CookieSecure:   cfg.SessionSecure,
		CookieHTTPOnly: cfg.SessionHTTPOnly,
		CookieSameSite: cfg.SessionSameSite,
		CookiePath:     "/",
	})
}

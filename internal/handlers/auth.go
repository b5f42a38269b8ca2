// Package handlers implements HTTP request handlers for the kanban tracker.
// This file handles registration, login, logout and the login flash message.
package handlers

import (
	"errors"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/metrics"
	"github.com/desy0305/e-KanBan2clicks/internal/middleware"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
	"github.com/desy0305/e-KanBan2clicks/internal/security"
	"github.com/desy0305/e-KanBan2clicks/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// MsgRegistered is flashed on the login page after a successful registration.
const MsgRegistered = "Registration successful. Please log in."

const sessionKeyFlash = "flash"

// AuthHandler handles authentication-related HTTP requests.
// Manages registration, login, logout and the session lifecycle.
type AuthHandler struct {
	store          *session.Store
	authService    *services.AuthService
	securityLogger *security.Logger
}

// NewAuthHandler creates a new instance of AuthHandler.
//
// Parameters:
//   - store: Session store for managing user sessions
//   - authService: Registration and credential checks
//   - securityLogger: Logger for security events
func NewAuthHandler(store *session.Store, authService *services.AuthService, securityLogger *security.Logger) *AuthHandler {
	return &AuthHandler{
		store:          store,
		authService:    authService,
		securityLogger: securityLogger,
	}
}

// ShowLogin renders the login page, consuming any pending flash message.
//
// Template: web/templates/login.html
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Title": "Login",
		"Flash": h.popFlash(c),
	})
}

// Login authenticates the submitted credentials and starts a session.
//
// Form Data:
//   - username, password
//
// Side Effects:
//   - Replaces the session with one holding user_id, username, organization
//   - Redirects to / on success; re-renders the form with 401 on failure
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form models.LoginForm
	if err := c.BodyParser(&form); err != nil {
		form = models.LoginForm{}
	}

	user, err := h.authService.Authenticate(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			metrics.AuthEvent("login", metrics.ResultUnauthorized)
			h.securityLogger.SecurityEvent(
				security.EventLoginFailure,
				nil,
				form.Username,
				c.IP(),
				c.Get(fiber.HeaderUserAgent),
				map[string]interface{}{"reason": "invalid_credentials"},
			)
			return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
				"Title":    "Login",
				"Error":    apperrors.Message(err),
				"Username": form.Username,
			})
		}

		metrics.AuthEvent("login", metrics.ResultError)
		h.securityLogger.Error("login failed", err)
		return c.Status(fiber.StatusInternalServerError).Render("login", fiber.Map{
			"Title": "Login",
			"Error": apperrors.Message(err),
		})
	}

	if err := middleware.StartSession(h.store, c, user); err != nil {
		h.securityLogger.Error("session start failed", err)
		return err
	}

	metrics.AuthEvent("login", metrics.ResultOK)
	userID := user.ID
	h.securityLogger.SecurityEvent(
		security.EventLoginSuccess,
		&userID,
		user.Username,
		c.IP(),
		c.Get(fiber.HeaderUserAgent),
		map[string]interface{}{"organization": user.Organization},
	)

	return c.Redirect("/")
}

// ShowRegister renders the registration page.
//
// Template: web/templates/register.html
func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	return c.Render("register", fiber.Map{
		"Title": "Register",
	})
}

// Register creates an account under the submitted organization and sends the
// user to the login page with a flash message. The new user is not logged in.
//
// Form Data:
//   - username, password, organization
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form models.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		form = models.RegisterForm{}
	}

	user, err := h.authService.Register(c.UserContext(), form)
	if err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, apperrors.ErrDuplicateUsername):
			status = fiber.StatusConflict
			metrics.AuthEvent("register", metrics.ResultDuplicate)
			h.securityLogger.SecurityEvent(
				security.EventRegisterDuplicate,
				nil,
				form.Username,
				c.IP(),
				c.Get(fiber.HeaderUserAgent),
				nil,
			)
		case apperrors.IsValidation(err):
			status = fiber.StatusBadRequest
			metrics.AuthEvent("register", metrics.ResultInvalid)
		default:
			metrics.AuthEvent("register", metrics.ResultError)
			h.securityLogger.Error("registration failed", err)
		}

		return c.Status(status).Render("register", fiber.Map{
			"Title":        "Register",
			"Error":        apperrors.Message(err),
			"Username":     form.Username,
			"Organization": form.Organization,
		})
	}

	metrics.AuthEvent("register", metrics.ResultOK)
	userID := user.ID
	h.securityLogger.SecurityEvent(
		security.EventRegister,
		&userID,
		user.Username,
		c.IP(),
		c.Get(fiber.HeaderUserAgent),
		map[string]interface{}{"organization": user.Organization},
	)

	h.setFlash(c, MsgRegistered)
	return c.Redirect("/login")
}

// Logout destroys the session and redirects to the login page.
// Calling it without a session is harmless.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if id, ok := middleware.IdentityFromSession(h.store, c); ok {
		userID := id.UserID
		h.securityLogger.SecurityEvent(
			security.EventLogout,
			&userID,
			id.Username,
			c.IP(),
			c.Get(fiber.HeaderUserAgent),
			nil,
		)
		metrics.AuthEvent("logout", metrics.ResultOK)
	}

	if err := middleware.EndSession(h.store, c); err != nil {
		h.securityLogger.Warn("session destroy failed: " + err.Error())
	}

	return c.Redirect("/login")
}

func (h *AuthHandler) setFlash(c *fiber.Ctx, msg string) {
	sess, err := h.store.Get(c)
	if err != nil {
		return
	}
	sess.Set(sessionKeyFlash, msg)
	if err := sess.Save(); err != nil {
		h.securityLogger.Warn("flash save failed: " + err.Error())
	}
}

func (h *AuthHandler) popFlash(c *fiber.Ctx) string {
	sess, err := h.store.Get(c)
	if err != nil {
		return ""
	}
	msg, _ := sess.Get(sessionKeyFlash).(string)
	if msg == "" {
		return ""
	}
	sess.Delete(sessionKeyFlash)
	_ = sess.Save()
	return msg
}

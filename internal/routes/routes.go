// Package routes assembles the Fiber application: view engine, global
// middleware and the route table.
package routes

import (
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/handlers"
	"github.com/desy0305/e-KanBan2clicks/internal/middleware"
	"github.com/desy0305/e-KanBan2clicks/internal/security"
	"github.com/desy0305/e-KanBan2clicks/internal/services"
	"github.com/desy0305/e-KanBan2clicks/web"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the route table is wired to.
type Dependencies struct {
	Store          *session.Store
	AuthService    *services.AuthService
	CardService    *services.CardService
	Logger         *security.Logger
	SecurityConfig *security.SecurityConfig
	DatabasePinger handlers.Pinger

	MetricsEnabled bool
	StaticDir      string // empty serves the embedded assets
}

// NewViews creates the HTML engine. An empty dir uses the embedded templates.
func NewViews(dir string, reload bool) *html.Engine {
	var engine *html.Engine
	if dir == "" {
		engine = html.NewFileSystem(http.FS(web.Templates()), ".html")
	} else {
		engine = html.New(dir, ".html")
	}
	engine.Reload(reload)
	return engine
}

// NewApp creates a Fiber application rendering with views inside layouts/main.
func NewApp(views fiber.Views) *fiber.App {
	return fiber.New(fiber.Config{
		Views:                 views,
		ViewsLayout:           "layouts/main",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
}

// errorHandler answers JSON under /api and plain text elsewhere.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": apperrors.Message(err)})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(apperrors.Message(err))
}

// Setup installs the global middleware and every route.
func Setup(app *fiber.App, deps Dependencies) {
	sm := middleware.NewSecurityMiddleware(deps.Logger, deps.SecurityConfig)

	app.Use(sm.RequestID())
	app.Use(sm.RequestLogger())
	// Panics become errors here so the request above still gets logged.
	app.Use(recover.New())
	if deps.MetricsEnabled {
		app.Use(middleware.Metrics())
	}
	app.Use(sm.SecureHeaders())

	if deps.StaticDir != "" {
		app.Static("/static", deps.StaticDir)
	} else {
		app.Use("/static", filesystem.New(filesystem.Config{
			Root: http.FS(web.Static()),
		}))
	}

	authHandler := handlers.NewAuthHandler(deps.Store, deps.AuthService, deps.Logger)
	pageHandler := handlers.NewPageHandler()
	apiHandler := handlers.NewAPIHandler(deps.CardService, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.DatabasePinger)

	// Operational endpoints
	app.Get("/healthz", healthHandler.Healthz)
	if deps.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// Public pages
	app.Get("/login", authHandler.ShowLogin)
	app.Post("/login", authHandler.Login)
	app.Get("/register", authHandler.ShowRegister)
	app.Post("/register", authHandler.Register)
	app.Get("/logout", authHandler.Logout)
	app.Post("/logout", authHandler.Logout)

	// Session-protected pages
	pages := middleware.PageAuthRequired(deps.Store)
	app.Get("/", pages, pageHandler.Index)
	app.Get("/manage_cards", pages, pageHandler.ManageCards)

	// JSON API, scoped to the caller's organization
	api := app.Group("/api", middleware.APIAuthRequired(deps.Store, deps.Logger))
	api.Get("/user", apiHandler.CurrentUser)
	api.Get("/cards", apiHandler.ListCards)
	api.Post("/cards", apiHandler.AddCard)
	api.Put("/cards/:id", apiHandler.UpdateCard)
	api.Delete("/cards/:id", apiHandler.DeleteCard)
	api.Get("/items", apiHandler.ListItems)
}

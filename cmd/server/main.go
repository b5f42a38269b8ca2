// Package main is the entry point for the kanban tracker web server.
// It loads configuration, connects to PostgreSQL, applies migrations and
// serves the HTML shell and JSON API until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desy0305/e-KanBan2clicks/internal/config"
	"github.com/desy0305/e-KanBan2clicks/internal/database"
	"github.com/desy0305/e-KanBan2clicks/internal/middleware"
	"github.com/desy0305/e-KanBan2clicks/internal/repository"
	"github.com/desy0305/e-KanBan2clicks/internal/routes"
	"github.com/desy0305/e-KanBan2clicks/internal/security"
	"github.com/desy0305/e-KanBan2clicks/internal/services"
	"github.com/desy0305/e-KanBan2clicks/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	setupLogging(cfg.LogLevel)

	securityLogger := security.NewLogger()
	securityLogger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = database.Connect(ctx, database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	})
	cancel()
	if err != nil {
		securityLogger.Critical("Failed to connect to database", err)
		os.Exit(1)
	}
	defer database.Close()

	if cfg.MigrateOnStart {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			securityLogger.Critical("Failed to run migrations", err)
			database.Close()
			os.Exit(1)
		}
	}

	securityConfig := security.NewSecurityConfig(cfg)

	var sessionStorage fiber.Storage
	if cfg.SessionStore == config.SessionStoreRedis {
		redisStorage, err := storage.NewRedisStorage(cfg.RedisURL)
		if err != nil {
			securityLogger.Critical("Failed to connect to session storage", err)
			database.Close()
			os.Exit(1)
		}
		defer redisStorage.Close()
		sessionStorage = redisStorage
	}
	store := middleware.NewSessionStore(securityConfig, sessionStorage)

	validation := security.NewValidationService(securityConfig)
	authService := services.NewAuthService(repository.NewUserRepository(), validation, cfg.BcryptCost)
	cardService := services.NewCardService(repository.NewCardRepository(), validation)

	app := routes.NewApp(routes.NewViews(cfg.TemplatesDir, !cfg.IsProduction()))
	routes.Setup(app, routes.Dependencies{
		Store:          store,
		AuthService:    authService,
		CardService:    cardService,
		Logger:         securityLogger,
		SecurityConfig: securityConfig,
		DatabasePinger: database.IsConnected,
		MetricsEnabled: cfg.MetricsEnabled,
		StaticDir:      cfg.StaticDir,
	})

	addr := ":" + cfg.Port
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":          addr,
			"environment":   cfg.Environment,
			"session_store": cfg.SessionStore,
			"tls":           cfg.TLSEnabled(),
		}).Info("Starting server")

		var err error
		if cfg.TLSEnabled() {
			err = app.ListenTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = app.Listen(addr)
		}
		if err != nil {
			securityLogger.Critical("Failed to start server", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		securityLogger.Error("Server forced to shutdown", err)
	}
	logrus.Info("Server stopped")
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg:  "message",
			logrus.FieldKeyTime: "timestamp",
		},
	})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

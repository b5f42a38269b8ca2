// Package main is the operator CLI for the kanban tracker. It dispatches a
// handful of subcommands on os.Args:
//
//	kanbanctl migrate up|down|version
//	kanbanctl seed-user
//	kanbanctl hash-password <password>
//	kanbanctl verify-password <hash> <password>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/desy0305/e-KanBan2clicks/internal/config"
	"github.com/desy0305/e-KanBan2clicks/internal/database"
	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
	"github.com/desy0305/e-KanBan2clicks/internal/repository"
	"github.com/desy0305/e-KanBan2clicks/internal/security"
	"github.com/desy0305/e-KanBan2clicks/internal/services"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Seed account created by seed-user.
const (
	seedUsername     = "testuser"
	seedPassword     = "testpassword"
	seedOrganization = "TestOrg"
)

const usage = `usage: kanbanctl <command> [args]

commands:
  migrate up|down|version     apply, roll back one step, or show the schema version
  seed-user                   create testuser/testpassword in TestOrg if absent
  hash-password <password>    print a bcrypt hash
  verify-password <hash> <pw> check a password against a bcrypt hash
`

var (
	errUsage    = errors.New("invalid usage")
	errMismatch = errors.New("password does not match")
)

func main() {
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg:  "message",
			logrus.FieldKeyTime: "timestamp",
		},
	})
	logrus.SetOutput(os.Stderr)

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "migrate":
		if len(args) != 2 {
			return errUsage
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return migrateCmd(args[1], cfg.DatabaseURL, out)

	case "seed-user":
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := database.Connect(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: 2, MinConns: 1}); err != nil {
			return err
		}
		defer database.Close()

		validation := security.NewValidationService(security.NewSecurityConfig(cfg))
		auth := services.NewAuthService(repository.NewUserRepository(), validation, cfg.BcryptCost)
		return seedUser(ctx, auth, out)

	case "hash-password":
		if len(args) != 2 {
			return errUsage
		}
		return hashPassword(args[1], costFromEnv(), out)

	case "verify-password":
		if len(args) != 3 {
			return errUsage
		}
		return verifyPassword(args[1], args[2], out)

	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}

	return errUsage
}

func migrateCmd(direction, dbURL string, out io.Writer) error {
	switch direction {
	case "up":
		if err := database.RunMigrations(dbURL); err != nil {
			return err
		}
	case "down":
		if err := database.RollbackMigration(dbURL); err != nil {
			return err
		}
	case "version":
	default:
		return errUsage
	}

	version, dirty, err := database.GetMigrationVersion(dbURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "version=%d dirty=%t\n", version, dirty)
	return nil
}

// seedUser registers the seed account. An existing account is left untouched.
func seedUser(ctx context.Context, auth *services.AuthService, out io.Writer) error {
	_, err := auth.Register(ctx, models.RegisterForm{
		Username:     seedUsername,
		Password:     seedPassword,
		Organization: seedOrganization,
	})
	switch {
	case err == nil:
		fmt.Fprintln(out, "Test user added successfully.")
		return nil
	case errors.Is(err, apperrors.ErrDuplicateUsername):
		fmt.Fprintln(out, "Test user already exists.")
		return nil
	default:
		return err
	}
}

func hashPassword(password string, cost int, out io.Writer) error {
	auth := services.NewAuthService(nil, nil, cost)
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}

func verifyPassword(hash, password string, out io.Writer) error {
	if !services.VerifyPassword(hash, password) {
		fmt.Fprintln(out, "MISMATCH")
		return errMismatch
	}
	fmt.Fprintln(out, "OK")
	return nil
}

// costFromEnv reads BCRYPT_COST through the regular config loader and falls
// back to the service default when configuration is unusable.
func costFromEnv() int {
	cfg, err := config.Load()
	if err != nil {
		return 0
	}
	return cfg.BcryptCost
}

// Package database provides unit tests for database connection management.
// Tests run without a PostgreSQL server; the pool is replaced with pgxmock.
package database

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsConnected verifies health reporting for nil, healthy and failing pools.
func TestIsConnected(t *testing.T) {
	oldDB := DB
	defer func() { DB = oldDB }()

	DB = nil
	assert.False(t, IsConnected(context.Background()), "nil pool is not connected")

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	DB = mock

	mock.ExpectPing()
	assert.True(t, IsConnected(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.False(t, IsConnected(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestClose_Idempotent verifies Close clears the global pool and tolerates repeat calls.
func TestClose_Idempotent(t *testing.T) {
	oldDB := DB
	defer func() { DB = oldDB }()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	DB = mock

	mock.ExpectClose()
	Close()
	assert.Nil(t, DB)

	Close()
	assert.Nil(t, DB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_RejectsEmptyURL(t *testing.T) {
	err := Connect(context.Background(), Config{})
	assert.Error(t, err)
}

func TestConnect_RejectsMalformedURL(t *testing.T) {
	err := Connect(context.Background(), Config{URL: "postgres://%zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

// TestMigrations_Embedded verifies every migration ships with an up and a down script
// and that the tenant column migration is additive.
func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs, "each up migration needs a matching down migration")

	orgMigration, err := fs.ReadFile(migrationFiles, "migrations/000003_add_card_organization.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(orgMigration), "ADD COLUMN IF NOT EXISTS organization")
}

func TestRunMigrations_RejectsEmptyURL(t *testing.T) {
	assert.Error(t, RunMigrations(""))
	assert.Error(t, RollbackMigration(""))

	_, _, err := GetMigrationVersion("")
	assert.Error(t, err)
}

// TestCleanVersion verifies a dirty database is forced back to the migration
// before the failed one, so Up applies the failed migration again.
func TestCleanVersion(t *testing.T) {
	src, err := newSource()
	require.NoError(t, err)
	defer src.Close()

	tests := []struct {
		name  string
		dirty uint
		want  int
	}{
		{"first migration failed", 1, nilVersion},
		{"cards table migration failed", 2, 1},
		{"organization column migration failed", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanVersion(src, tt.dirty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = cleanVersion(src, 99)
	assert.Error(t, err, "an unknown dirty version is not guessed at")
}

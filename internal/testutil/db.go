// Package testutil opens real stores for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/repository"
	"github.com/gigboard/engine/pkg/database"
)

// OpenSQLite returns a migrated SQLite store in a per-test directory.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()
	return Open(t, database.DriverSQLite, filepath.Join(t.TempDir(), "gigboard.db"))
}

// Open connects to dsn with the production options and migrates the schema.
func Open(t testing.TB, driver, dsn string) *gorm.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Options{Driver: driver, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, repository.Migrate(db))
	return db
}

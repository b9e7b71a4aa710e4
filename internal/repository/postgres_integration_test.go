//go:build integration

package repository_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/testutil"
	"github.com/gigboard/engine/pkg/database"
)

func TestPostgresStore(t *testing.T) {
	dsn := testutil.StartPostgres(t)
	runStoreContract(t, func(t *testing.T) *gorm.DB {
		db := testutil.Open(t, database.DriverPostgres, dsn)
		// Subtests share one container; start each from empty tables.
		err := db.Exec(`TRUNCATE users, projects, timeline, project_files, project_notes, customers, writers RESTART IDENTITY CASCADE`).Error
		require.NoError(t, err)
		return db
	})
}

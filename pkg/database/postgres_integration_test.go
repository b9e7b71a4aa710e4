//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gigboard/engine/internal/testutil"
	"github.com/gigboard/engine/pkg/database"
)

type gadget struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex;not null"`
}

func TestPostgresUniqueViolation(t *testing.T) {
	dsn := testutil.StartPostgres(t)

	db, err := database.Open(context.Background(), database.Options{Driver: database.DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, db.AutoMigrate(&gadget{}))
	require.NoError(t, db.Create(&gadget{Code: "a"}).Error)

	err = db.Create(&gadget{Code: "a"}).Error
	require.Error(t, err)
	require.True(t, database.IsUniqueViolation(err))
}

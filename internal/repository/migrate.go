package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/models"
)

// Models returns all models that need migration, parents first.
func Models() []any {
	return []any{
		&models.User{},
		&models.Project{},
		&models.TimelineEntry{},
		&models.ProjectFile{},
		&models.ProjectNote{},
		&models.Customer{},
		&models.Writer{},
	}
}

// Migrate brings the schema up to date on either store.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't express.
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		singleSuperadminIndex,
		addListingIndexes,
	}
	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

// singleSuperadminIndex lets at most one row hold the superadmin role.
func singleSuperadminIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_single_superadmin
		ON users(role)
		WHERE role = 'superadmin'
	`).Error
}

func addListingIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_project_files_project_uploaded ON project_files(project_id, uploaded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_project_notes_project_created ON project_notes(project_id, created_at)`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}

// TableCount is one line of the store check report.
type TableCount struct {
	Table string
	Rows  int64
}

// CountRows reports the row count of every managed table.
func CountRows(ctx context.Context, db *gorm.DB) ([]TableCount, error) {
	out := make([]TableCount, 0, len(Models()))
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		var n int64
		if err := db.WithContext(ctx).Model(m).Count(&n).Error; err != nil {
			return nil, err
		}
		out = append(out, TableCount{Table: stmt.Schema.Table, Rows: n})
	}
	return out, nil
}

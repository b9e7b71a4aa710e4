package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/policy"
	"github.com/gigboard/engine/internal/repository"
	"github.com/gigboard/engine/internal/storage"
	"github.com/gigboard/engine/internal/testutil"
	"github.com/gigboard/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by services)
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type testEnv struct {
	db        *gorm.DB
	uploadDir string
	store     *storage.Disk
	users     *userService
	projects  ProjectService
	files     AttachmentService
	notes     NoteService
	refs      ReferenceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenSQLite(t)
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := storage.NewDisk(dir, "/uploads")
	require.NoError(t, err)
	return newTestEnvWithStore(t, db, dir, store)
}

func newTestEnvWithStore(t *testing.T, db *gorm.DB, dir string, store storage.Store) *testEnv {
	t.Helper()
	projectRepo := repository.NewProjectRepository(db)
	env := &testEnv{
		db:        db,
		uploadDir: dir,
		users:     newUserService(repository.NewUserRepository(db), bcrypt.MinCost),
		projects:  NewProjectService(projectRepo, store),
		files: NewAttachmentService(repository.NewFileRepository(db), projectRepo, store,
			UploadLimits{MaxFileSize: 64, MaxFiles: 3}),
		notes: NewNoteService(repository.NewNoteRepository(db), projectRepo),
		refs:  NewReferenceService(repository.NewReferenceRepository(db)),
	}
	if d, ok := store.(*storage.Disk); ok {
		env.store = d
	}
	return env
}

func (e *testEnv) admin(t *testing.T, name string) policy.Actor {
	t.Helper()
	u, err := e.users.Register(context.Background(), name, "secret1", models.RoleAdmin)
	require.NoError(t, err)
	return policy.Actor{ID: u.ID, Role: u.Role}
}

func (e *testEnv) superadmin(t *testing.T) policy.Actor {
	t.Helper()
	u, _, err := e.users.EnsureSuperadmin(context.Background(), "root", "rootpw")
	require.NoError(t, err)
	return policy.Actor{ID: u.ID, Role: u.Role}
}

func (e *testEnv) payloads(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.uploadDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, en := range entries {
		names = append(names, en.Name())
	}
	return names
}

// mockStore records payload operations without touching the disk.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Save(ctx context.Context, name string, r io.Reader, limit int64) (*storage.Stored, error) {
	args := m.Called(ctx, name, r, limit)
	if v := args.Get(0); v != nil {
		return v.(*storage.Stored), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Remove(name string) error {
	return m.Called(name).Error(0)
}

func (m *mockStore) URL(name string) string {
	return "/uploads/" + name
}

func strPtr(s string) *string { return &s }

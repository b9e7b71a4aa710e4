package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/policy"
	"github.com/gigboard/engine/internal/testutil"
	appErr "github.com/gigboard/engine/pkg/errors"
)

func TestCreateForcesPendingAndDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.admin(t, "alice")

	p, err := env.projects.Create(ctx, alice.ID, &ProjectInput{
		Title:        "  Report  ",
		CustomerName: strPtr("  ACME "),
		WriterName:   strPtr("   "),
		Deadline:     "2026-11-30",
		ClientPrice:  100,
		WriterPrice:  40,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, p.Status)
	require.Equal(t, "Report", p.Title)
	require.Equal(t, models.DefaultProjectType, p.Type)
	require.Equal(t, "ACME", *p.CustomerName)
	require.Nil(t, p.WriterName)
	require.NotNil(t, p.Deadline)
	require.Equal(t, "2026-11-30", time.Time(*p.Deadline).Format(time.DateOnly))
	require.InDelta(t, 60, p.Profit, 0.001)
	require.NotNil(t, p.CreatorName)
	require.Equal(t, "alice", *p.CreatorName)

	timeline, err := env.projects.Timeline(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	require.Equal(t, models.StatusPending, timeline[0].Status)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.admin(t, "alice")

	cases := map[string]struct {
		creator uint
		input   *ProjectInput
	}{
		"blank title":    {alice.ID, &ProjectInput{Title: "   "}},
		"no creator":     {0, &ProjectInput{Title: "Report"}},
		"negative price": {alice.ID, &ProjectInput{Title: "Report", ClientPrice: -1}},
		"bad deadline":   {alice.ID, &ProjectInput{Title: "Report", Deadline: "next week"}},
		"nil input":      {alice.ID, nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.projects.Create(ctx, tc.creator, tc.input)
			require.True(t, appErr.IsCode(err, appErr.CodeInvalid), "got %v", err)
		})
	}
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	root := env.superadmin(t)
	alice := env.admin(t, "alice")
	bob := env.admin(t, "bob")
	for _, a := range []policy.Actor{alice, alice, bob} {
		_, err := env.projects.Create(ctx, a.ID, &ProjectInput{Title: "job"})
		require.NoError(t, err)
	}

	got, err := env.projects.List(ctx, alice, ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = env.projects.List(ctx, alice, ListFilter{OwnerID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)

	_, err = env.projects.List(ctx, alice, ListFilter{All: true})
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	_, err = env.projects.List(ctx, alice, ListFilter{OwnerID: &bob.ID})
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	got, err = env.projects.List(ctx, root, ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	got, err = env.projects.List(ctx, root, ListFilter{All: true})
	require.NoError(t, err)
	require.Len(t, got, 3)
	got, err = env.projects.List(ctx, root, ListFilter{OwnerID: &bob.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "bob", *got[0].CreatorName)
}

func TestGetChecksOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	root := env.superadmin(t)
	alice := env.admin(t, "alice")
	bob := env.admin(t, "bob")
	p, err := env.projects.Create(ctx, alice.ID, &ProjectInput{Title: "job"})
	require.NoError(t, err)

	got, err := env.projects.Get(ctx, alice, p.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", *got.CreatorName)
	_, err = env.projects.Get(ctx, root, p.ID)
	require.NoError(t, err)
	_, err = env.projects.Get(ctx, bob, p.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	_, err = env.projects.Get(ctx, alice, 9999)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestUpdateStatusAppendsTimeline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.admin(t, "alice")
	p, err := env.projects.Create(ctx, alice.ID, &ProjectInput{Title: "job"})
	require.NoError(t, err)

	for _, s := range []models.Status{models.StatusInProgress, models.StatusDelivered, models.StatusSettled} {
		require.NoError(t, env.projects.UpdateStatus(ctx, alice, p.ID, s, nil))
		timeline, err := env.projects.Timeline(ctx, p.ID)
		require.NoError(t, err)
		got, err := env.projects.Get(ctx, alice, p.ID)
		require.NoError(t, err)
		require.Equal(t, s, timeline[len(timeline)-1].Status)
		require.Equal(t, got.Status, timeline[len(timeline)-1].Status)
	}

	err = env.projects.UpdateStatus(ctx, alice, p.ID, models.Status("Archived"), nil)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	err = env.projects.UpdateStatus(ctx, alice, 9999, models.StatusSettled, nil)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestUpdateFieldsAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	root := env.superadmin(t)
	alice := env.admin(t, "alice")
	bob := env.admin(t, "bob")
	p, err := env.projects.Create(ctx, alice.ID, &ProjectInput{Title: "job"})
	require.NoError(t, err)
	require.NoError(t, env.projects.UpdateStatus(ctx, alice, p.ID, models.StatusDelivered, nil))

	in := &ProjectInput{Title: "new title", Type: "Essay", ClientPrice: 50, WriterPrice: 10}
	err = env.projects.UpdateFields(ctx, bob, p.ID, in)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden), "got %v", err)
	err = env.projects.UpdateFields(ctx, bob, 9999, in)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound), "got %v", err)
	err = env.projects.UpdateFields(ctx, alice, p.ID, &ProjectInput{Title: ""})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	require.NoError(t, env.projects.UpdateFields(ctx, alice, p.ID, in))
	in.Title = "by root"
	require.NoError(t, env.projects.UpdateFields(ctx, root, p.ID, in))

	got, err := env.projects.Get(ctx, alice, p.ID)
	require.NoError(t, err)
	require.Equal(t, "by root", got.Title)
	require.Equal(t, "Essay", got.Type)
	require.Equal(t, models.StatusDelivered, got.Status)
	require.InDelta(t, 40, got.Profit, 0.001)
}

func TestDeleteCascadesAndRemovesPayloads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.admin(t, "alice")
	bob := env.admin(t, "bob")
	p, err := env.projects.Create(ctx, alice.ID, &ProjectInput{Title: "job"})
	require.NoError(t, err)
	require.NoError(t, env.projects.UpdateStatus(ctx, alice, p.ID, models.StatusInProgress, nil))
	_, err = env.notes.Add(ctx, p.ID, "hi", alice.ID)
	require.NoError(t, err)
	_, err = env.files.Upload(ctx, &p.ID, []Upload{textUpload("a.txt", "one"), textUpload("b.txt", "two")})
	require.NoError(t, err)
	require.Len(t, env.payloads(t), 2)

	err = env.projects.Delete(ctx, bob, p.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	require.Len(t, env.payloads(t), 2)

	require.NoError(t, env.projects.Delete(ctx, alice, p.ID))
	require.Empty(t, env.payloads(t))

	timeline, err := env.projects.Timeline(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, timeline)
	files, err := env.files.ListForProject(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, files)
	notes, err := env.notes.List(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, notes)

	err = env.projects.Delete(ctx, alice, p.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestDeleteSurvivesPayloadRemovalFailure(t *testing.T) {
	db := testutil.OpenSQLite(t)
	store := new(mockStore)
	env := newTestEnvWithStore(t, db, filepath.Join(t.TempDir(), "unused"), store)
	ctx := context.Background()
	alice := env.admin(t, "alice")
	p, err := env.projects.Create(ctx, alice.ID, &ProjectInput{Title: "job"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.ProjectFile{
		ProjectID: p.ID, Filename: "gone.txt", OriginalName: "gone.txt",
		FilePath: "/uploads/gone.txt", FileType: "text/plain", FileSize: 1,
	}).Error)

	store.On("Remove", "gone.txt").Return(errors.New("disk unavailable")).Once()

	require.NoError(t, env.projects.Delete(ctx, alice, p.ID))
	store.AssertExpectations(t)
}

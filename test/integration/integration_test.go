package integration_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kcalabs/kca-projects/internal/backup"
	"github.com/kcalabs/kca-projects/internal/codec"
	"github.com/kcalabs/kca-projects/internal/domain/activity"
	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/kcalabs/kca-projects/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db           *sqlite.DB
	kv           *sqlite.KVStore
	store        *sqlite.ProjectStore
	activityRepo *sqlite.ActivityRepository

	projectSvc  *project.Service
	activitySvc *activity.Service
}

// newTestEnv opens a file-backed database so that a second env over the same
// path sees what the first one persisted.
func newTestEnv(t *testing.T, path string) *testEnv {
	t.Helper()
	db, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	kv := sqlite.NewKVStore(db)
	store := sqlite.NewProjectStore(kv)
	activityRepo := sqlite.NewActivityRepository(db)

	clock := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	return &testEnv{
		db:           db,
		kv:           kv,
		store:        store,
		activityRepo: activityRepo,
		projectSvc:   project.NewService(store, activityRepo, nil, project.WithClock(func() time.Time { return clock })),
		activitySvc:  activity.NewService(activityRepo, nil),
	}
}

func form(title string) project.FormInput {
	return project.FormInput{
		Title:        title,
		Description:  "Description of " + title,
		Overview:     "Overview of " + title,
		TeamName:     "Team " + title,
		TechStackIDs: []string{"python", "flutter"},
		MemberNames:  []string{"Ana", "  ", "Ben"},
		MemberRoles:  []string{"Lead", "", "Dev"},
		StartDate:    time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		Priority:     "critical",
	}
}

func TestIntegration_FirstRunSeedsAndPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kca.db")

	first := newTestEnv(t, path)
	require.NoError(t, first.projectSvc.Load(ctx))
	seeded := first.projectSvc.List()
	require.Len(t, seeded, 2)

	stored, err := first.kv.Get(ctx, sqlite.ProjectsKey)
	require.NoError(t, err)
	require.Contains(t, stored, `"createdAt":"2024-09-01T08:00:00.000Z"`)

	second := newTestEnv(t, path)
	require.NoError(t, second.projectSvc.Load(ctx))
	require.Equal(t, seeded, second.projectSvc.List())
}

func TestIntegration_MutationsSurviveRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kca.db")

	first := newTestEnv(t, path)
	require.NoError(t, first.projectSvc.Load(ctx))

	created, err := first.projectSvc.Add(ctx, form("Rain Gauge"))
	require.NoError(t, err)
	require.Len(t, created.Members, 2)

	_, err = first.projectSvc.UpdateProgress(ctx, created.ID, 100)
	require.NoError(t, err)
	seeded := first.projectSvc.List()[0]
	require.NoError(t, first.projectSvc.Delete(ctx, seeded.ID))

	second := newTestEnv(t, path)
	require.NoError(t, second.projectSvc.Load(ctx))
	require.Equal(t, first.projectSvc.List(), second.projectSvc.List())

	got, err := second.projectSvc.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, project.StatusCompleted, got.Status.ID)
	require.Equal(t, project.PriorityCritical, got.Priority)

	_, err = second.projectSvc.Get(seeded.ID)
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	stats := second.projectSvc.Stats()
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.ByStatus[project.StatusCompleted])
}

func TestIntegration_CorruptStorageLeavesCollection(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, filepath.Join(t.TempDir(), "kca.db"))
	require.NoError(t, env.projectSvc.Load(ctx))
	before := env.projectSvc.List()

	require.NoError(t, env.kv.Set(ctx, sqlite.ProjectsKey, "{not json"))

	err := env.projectSvc.Load(ctx)
	require.ErrorIs(t, err, project.ErrLoad)
	require.ErrorIs(t, err, codec.ErrMalformed)
	require.Equal(t, before, env.projectSvc.List())
	require.NotEmpty(t, env.projectSvc.LastError())
}

func TestIntegration_BackupFileRestore(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, filepath.Join(t.TempDir(), "kca.db"))
	require.NoError(t, env.projectSvc.Load(ctx))
	_, err := env.projectSvc.Add(ctx, form("Bus Tracker"))
	require.NoError(t, err)
	before := env.projectSvc.List()

	path, err := backup.ExportFile(t.TempDir(), "", before, time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "kca-projects-backup-2024-09-03.json", filepath.Base(path))

	for _, p := range before {
		require.NoError(t, env.projectSvc.Delete(ctx, p.ID))
	}
	require.Empty(t, env.projectSvc.List())

	records, err := backup.ImportFile(ctx, path)
	require.NoError(t, err)
	result, err := env.projectSvc.Import(ctx, records, project.ImportReplace)
	require.NoError(t, err)
	require.Equal(t, len(before), result.Imported)
	require.Equal(t, before, env.projectSvc.List())
}

func TestIntegration_ActivityTrail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, filepath.Join(t.TempDir(), "kca.db"))
	require.NoError(t, env.projectSvc.Load(ctx))

	created, err := env.projectSvc.Add(ctx, form("Clinic Queue"))
	require.NoError(t, err)
	_, err = env.projectSvc.UpdateProgress(ctx, created.ID, 20)
	require.NoError(t, err)

	entries, err := env.activitySvc.GetRecentActivity(ctx, activity.ListActivityOptions{ProjectID: &created.ID})
	require.NoError(t, err)
	types := make([]activity.ActivityType, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.ActivityType)
	}
	require.Equal(t, []activity.ActivityType{
		activity.TypeStatusChanged,
		activity.TypeProgressUpdated,
		activity.TypeProjectCreated,
	}, types)

	seeded := activity.TypeCollectionSeeded
	entries, err = env.activitySvc.GetRecentActivity(ctx, activity.ListActivityOptions{ActivityType: &seeded})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].ProjectID)
}

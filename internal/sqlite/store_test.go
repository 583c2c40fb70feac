package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kcalabs/kca-projects/internal/codec"
	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/kcalabs/kca-projects/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestKVStore_GetSetDelete(t *testing.T) {
	kv := NewKVStore(NewTestDB(t))
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, kv.Set(ctx, "a", "1"))
	require.NoError(t, kv.Set(ctx, "a", "2"))

	value, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "2", value)

	require.NoError(t, kv.Delete(ctx, "a"))
	require.NoError(t, kv.Delete(ctx, "a"))

	_, err = kv.Get(ctx, "a")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func sampleProjects() []project.Project {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	seq := 0
	newID := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return project.DefaultProjects(now, newID)
}

func TestProjectStore_LoadEmpty(t *testing.T) {
	store := NewProjectStore(NewKVStore(NewTestDB(t)))

	projects, found, err := store.Load(context.Background())
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, projects)
}

func TestProjectStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewProjectStore(NewKVStore(NewTestDB(t)))
	ctx := context.Background()
	want := sampleProjects()

	require.NoError(t, store.Save(ctx, want))

	got, found, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want, got)
}

func TestProjectStore_SaveEmptyCollection(t *testing.T) {
	store := NewProjectStore(NewKVStore(NewTestDB(t)))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []project.Project{}))

	got, found, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, got)
}

func TestProjectStore_LoadCorrupt(t *testing.T) {
	kv := NewKVStore(NewTestDB(t))
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, ProjectsKey, "{not json"))

	_, found, err := NewProjectStore(kv).Load(ctx)
	require.True(t, found)
	require.ErrorIs(t, err, codec.ErrMalformed)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/kcalabs/kca-projects/internal/sqlite"
	"github.com/kcalabs/kca-projects/internal/transport"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", dbPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands_Registered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range newRootCmd().Commands() {
		names[cmd.Name()] = true
		require.NotEmpty(t, cmd.Short, cmd.Name())
	}
	for _, name := range []string{"list", "show", "stats", "catalog", "progress", "status", "delete", "export", "import", "keys"} {
		require.True(t, names[name], "missing command %s", name)
	}
}

func TestList_SeedsOnFirstRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kca.db")

	out, err := run(t, dbPath, "list", "--sort", "title", "--order", "asc")
	require.NoError(t, err)
	require.Contains(t, out, "AI Learning Companion")
	require.Contains(t, out, "Smart Campus Energy Monitor")
	require.Less(t, strings.Index(out, "AI Learning"), strings.Index(out, "Smart Campus"))

	out, err = run(t, dbPath, "list", "--search", "energy")
	require.NoError(t, err)
	require.NotContains(t, out, "AI Learning Companion")
	require.Contains(t, out, "Smart Campus")

	_, err = run(t, dbPath, "list", "--order", "sideways")
	require.Error(t, err)
}

func TestStatsAndCatalog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kca.db")

	out, err := run(t, dbPath, "stats")
	require.NoError(t, err)
	require.Contains(t, out, "Total")
	require.Contains(t, out, "2")

	out, err = run(t, dbPath, "catalog")
	require.NoError(t, err)
	require.Contains(t, out, "on-hold")
	require.Contains(t, out, "critical")
}

func TestProgressAndStatus(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kca.db")
	out, err := run(t, dbPath, "list", "--json")
	require.NoError(t, err)
	id := firstID(t, out)

	out, err = run(t, dbPath, "progress", id, "100")
	require.NoError(t, err)
	require.Contains(t, out, "100%")
	require.Contains(t, out, "Completed")

	out, err = run(t, dbPath, "status", id, "on-hold")
	require.NoError(t, err)
	require.Contains(t, out, "On Hold")

	_, err = run(t, dbPath, "progress", id, "150")
	require.Error(t, err)
	_, err = run(t, dbPath, "status", id, "shipped")
	require.Error(t, err)
	_, err = run(t, dbPath, "delete", "missing")
	require.Error(t, err)

	_, err = run(t, dbPath, "delete", id)
	require.NoError(t, err)
	_, err = run(t, dbPath, "show", id)
	require.Error(t, err)
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "kca.db")
	backupDir := filepath.Join(dir, "backups")
	nowFunc = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = time.Now })

	out, err := run(t, dbPath, "--backup-dir", backupDir, "export")
	require.NoError(t, err)
	require.Contains(t, out, "exported 2 projects")
	path := filepath.Join(backupDir, "kca-projects-backup-2024-06-01.json")
	require.FileExists(t, path)

	out, err = run(t, filepath.Join(dir, "other.db"), "import", path, "--mode", "merge")
	require.NoError(t, err)
	require.Contains(t, out, "merge import: 2 imported, 0 skipped")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o644))
	_, err = run(t, dbPath, "import", bad)
	require.Error(t, err)

	_, err = run(t, dbPath, "import", path, "--mode", "upsert")
	require.Error(t, err)
}

func TestImport_RestoresUnreadableCollection(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "kca.db")
	backupDir := filepath.Join(dir, "backups")

	_, err := run(t, dbPath, "--backup-dir", backupDir, "export", "--name", "good.json")
	require.NoError(t, err)
	good := filepath.Join(backupDir, "good.json")

	db, err := sqlite.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, sqlite.NewKVStore(db).Set(context.Background(), sqlite.ProjectsKey, "{corrupt"))
	require.NoError(t, db.Close())

	_, err = run(t, dbPath, "list")
	require.ErrorIs(t, err, project.ErrLoad)
	require.ErrorContains(t, err, "--mode replace")

	out, err := run(t, dbPath, "catalog")
	require.NoError(t, err)
	require.Contains(t, out, "on-hold")

	_, err = run(t, dbPath, "keys", "add", "--actor", "mentor")
	require.NoError(t, err)

	_, err = run(t, dbPath, "import", good, "--mode", "merge")
	require.ErrorIs(t, err, project.ErrLoad)

	out, err = run(t, dbPath, "import", good)
	require.NoError(t, err)
	require.Contains(t, out, "restored unreadable collection")
	require.Contains(t, out, "replace import: 2 imported, 0 skipped")

	out, err = run(t, dbPath, "list")
	require.NoError(t, err)
	require.Contains(t, out, "AI Learning Companion")
}

func TestSkipLoadCommandsDoNotSeed(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kca.db")

	_, err := run(t, dbPath, "catalog")
	require.NoError(t, err)
	_, err = run(t, dbPath, "keys", "add", "--actor", "mentor")
	require.NoError(t, err)

	db, err := sqlite.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, found, err := sqlite.NewProjectStore(sqlite.NewKVStore(db)).Load(context.Background())
	require.NoError(t, err)
	require.False(t, found)
}

func TestShow_WritesISODates(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kca.db")
	out, err := run(t, dbPath, "list", "--json")
	require.NoError(t, err)
	id := firstID(t, out)

	out, err = run(t, dbPath, "show", id)
	require.NoError(t, err)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	require.Equal(t, id, shown["id"])
	created, ok := shown["createdAt"].(string)
	require.True(t, ok)
	require.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, created)
}

func TestKeysAdd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kca.db")

	out, err := run(t, dbPath, "keys", "add", "--actor", "mentor", "--description", "laptop")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(token, "kca_"))

	db, err := sqlite.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	actor, err := sqlite.NewAPIKeyRepository(db).Resolve(context.Background(), transport.HashToken(token))
	require.NoError(t, err)
	require.Equal(t, "mentor", actor)

	_, err = run(t, dbPath, "keys", "add")
	require.Error(t, err)
}

func firstID(t *testing.T, backupJSON string) string {
	t.Helper()
	const marker = `"id": "`
	i := strings.Index(backupJSON, marker)
	require.GreaterOrEqual(t, i, 0)
	rest := backupJSON[i+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}

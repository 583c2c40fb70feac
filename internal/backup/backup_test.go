package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kcalabs/kca-projects/internal/codec"
	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func fixture() []project.Project {
	n := 0
	return project.DefaultProjects(time.Date(2024, 7, 4, 9, 0, 0, 0, time.UTC), func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func TestDefaultFilename(t *testing.T) {
	require.Equal(t, "kca-projects-backup-2024-07-04.json", DefaultFilename(time.Date(2024, 7, 4, 23, 59, 0, 0, time.UTC)))

	// 01:30 in Nairobi is still the previous day in UTC.
	nairobi := time.FixedZone("EAT", 3*60*60)
	require.Equal(t, "kca-projects-backup-2024-07-04.json", DefaultFilename(time.Date(2024, 7, 5, 1, 30, 0, 0, nairobi)))
}

func TestExportIsIndented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, fixture()))
	require.True(t, strings.HasPrefix(buf.String(), "[\n  {\n    \"id\": "))
	require.True(t, strings.HasSuffix(buf.String(), "]\n"))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	want := fixture()

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, want))

	got, err := Import(ctx, &buf, "application/json")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestImportRejectsNonJSONType(t *testing.T) {
	_, err := Import(context.Background(), strings.NewReader(`[]`), "text/plain")
	require.ErrorIs(t, err, ErrNotJSON)
}

func TestImportAcceptsJSONVariants(t *testing.T) {
	for _, ct := range []string{"application/json", "application/json; charset=utf-8", "text/JSON", "application/vnd.api+json"} {
		got, err := Import(context.Background(), strings.NewReader(`[]`), ct)
		require.NoError(t, err, ct)
		require.Empty(t, got)
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	_, err := Import(context.Background(), strings.NewReader(`{"not":"an array"}`), "application/json")
	require.ErrorIs(t, err, codec.ErrNotArray)
}

func TestImportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Import(ctx, strings.NewReader(`[]`), "application/json")
	require.ErrorIs(t, err, context.Canceled)
}

func TestImportTooLarge(t *testing.T) {
	r := io.LimitReader(zeroReader{}, MaxSize+1)
	_, err := Import(context.Background(), r, "application/json")
	require.ErrorIs(t, err, ErrTooLarge)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = ' '
	}
	return len(p), nil
}

func TestExportFileAndImportFile(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "backups")
	now := time.Date(2024, 7, 4, 9, 0, 0, 0, time.UTC)
	want := fixture()

	path, err := ExportFile(dir, "", want, now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "kca-projects-backup-2024-07-04.json"), path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")

	got, err := ImportFile(ctx, path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestImportFileRejectsTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.txt")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	_, err := ImportFile(context.Background(), path)
	require.ErrorIs(t, err, ErrNotJSON)
}

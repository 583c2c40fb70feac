// Package backup writes the project collection to portable JSON backup
// files and reads them back.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kcalabs/kca-projects/internal/codec"
	"github.com/kcalabs/kca-projects/internal/domain/project"
)

// ContentType is the MIME type written with backups.
const ContentType = "application/json"

// MaxSize bounds how much of a backup is read.
const MaxSize = 32 << 20

var (
	// ErrNotJSON indicates the backup's declared type is not JSON.
	ErrNotJSON = errors.New("backup file must be JSON")
	// ErrTooLarge indicates the backup exceeds MaxSize.
	ErrTooLarge = errors.New("backup file too large")
)

// DefaultFilename names a backup taken at now, using its UTC date.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("kca-projects-backup-%s.json", now.UTC().Format(time.DateOnly))
}

// Export writes projects as an indented JSON array.
func Export(w io.Writer, projects []project.Project) error {
	data, err := codec.EncodeIndent(projects)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ExportFile writes a backup into dir and returns its path. An empty name
// uses DefaultFilename. The file is replaced atomically.
func ExportFile(dir, name string, projects []project.Project, now time.Time) (string, error) {
	if name == "" {
		name = DefaultFilename(now)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".kca-backup-*")
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Export(tmp, projects); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close backup file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("save backup file: %w", err)
	}
	return path, nil
}

// IsJSONType reports whether a declared MIME type indicates JSON.
func IsJSONType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// Import reads and decodes a backup. The declared content type must contain
// "json". Either every record is returned or none is.
func Import(ctx context.Context, r io.Reader, contentType string) ([]project.Project, error) {
	if !IsJSONType(contentType) {
		return nil, fmt.Errorf("%w: declared type %q", ErrNotJSON, contentType)
	}

	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}
	return codec.Decode(data)
}

// ImportFile reads a backup from disk, taking its type from the file extension.
func ImportFile(ctx context.Context, path string) ([]project.Project, error) {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if !IsJSONType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrNotJSON, filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	return Import(ctx, f, contentType)
}

const chunkSize = 64 << 10

// readAll reads r in chunks, stopping early when ctx is done.
func readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	var out []byte
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if len(out) > MaxSize {
			return nil, ErrTooLarge
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read backup: %w", err)
		}
	}
}

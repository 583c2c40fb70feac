package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kcalabs/kca-projects/internal/codec"
	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/kcalabs/kca-projects/internal/metrics"
	"github.com/kcalabs/kca-projects/internal/repository"
)

// ProjectsKey is the key the project collection is stored under.
const ProjectsKey = "kca-projects"

// KVStore implements repository.KeyValueStore on the kv_store table
type KVStore struct {
	db *DB
}

// NewKVStore creates a new KVStore
func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value stored under key, or repository.ErrNotFound
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, nil
}

// Set overwrites the value stored under key
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// ProjectStore implements repository.ProjectStore by encoding the whole
// collection into one key/value entry
type ProjectStore struct {
	kv  repository.KeyValueStore
	key string
}

// NewProjectStore creates a ProjectStore over kv using ProjectsKey
func NewProjectStore(kv repository.KeyValueStore) *ProjectStore {
	return &ProjectStore{kv: kv, key: ProjectsKey}
}

// Load returns found=false when nothing has been stored under the key
func (s *ProjectStore) Load(ctx context.Context) ([]project.Project, bool, error) {
	defer metrics.RecordStoreDuration("load", time.Now())
	value, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	projects, err := codec.Decode([]byte(value))
	if err != nil {
		return nil, true, fmt.Errorf("failed to decode %s: %w", s.key, err)
	}
	return projects, true, nil
}

// Save overwrites the stored collection
func (s *ProjectStore) Save(ctx context.Context, projects []project.Project) error {
	defer metrics.RecordStoreDuration("save", time.Now())
	data, err := codec.Encode(projects)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, string(data))
}

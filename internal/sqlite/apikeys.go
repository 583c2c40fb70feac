package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kcalabs/kca-projects/internal/repository"
)

// APIKeyRepository implements repository.APIKeyRepository for SQLite
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Add stores a hashed key for actor
func (r *APIKeyRepository) Add(ctx context.Context, keyHash, actor, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, actor, created_at, description) VALUES (?, ?, ?, ?)`,
		keyHash, actor, time.Now(), description,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: api key already registered", repository.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// Resolve returns the actor for a hashed key and records its use
func (r *APIKeyRepository) Resolve(ctx context.Context, keyHash string) (string, error) {
	var actor string
	err := r.db.QueryRowContext(ctx, `SELECT actor FROM api_keys WHERE key_hash = ?`, keyHash).Scan(&actor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now(), keyHash); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return actor, nil
}

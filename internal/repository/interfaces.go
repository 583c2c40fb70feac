package repository

import (
	"context"

	"github.com/kcalabs/kca-projects/internal/domain/activity"
	"github.com/kcalabs/kca-projects/internal/domain/project"
)

// ProjectStore persists the project collection under a single key
type ProjectStore interface {
	Load(ctx context.Context) ([]project.Project, bool, error)
	Save(ctx context.Context, projects []project.Project) error
}

// KeyValueStore reads and writes whole values by key
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// APIKeyRepository resolves hashed API keys to actor names
type APIKeyRepository interface {
	Add(ctx context.Context, keyHash, actor, description string) error
	Resolve(ctx context.Context, keyHash string) (string, error)
}

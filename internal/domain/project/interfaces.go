package project

import (
	"context"

	"github.com/kcalabs/kca-projects/internal/domain/activity"
)

// Store persists the whole collection as a single value.
type Store interface {
	// Load returns found=false when nothing has been persisted yet.
	Load(ctx context.Context) (projects []Project, found bool, err error)
	Save(ctx context.Context, projects []Project) error
}

// ActivityRepository logs collection changes.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}

package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated     ActivityType = "project_created"
	TypeProjectUpdated     ActivityType = "project_updated"
	TypeProjectDeleted     ActivityType = "project_deleted"
	TypeProgressUpdated    ActivityType = "progress_updated"
	TypeStatusChanged      ActivityType = "status_changed"
	TypeCollectionImported ActivityType = "collection_imported"
	TypeCollectionSeeded   ActivityType = "collection_seeded"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    *string      `json:"project_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}

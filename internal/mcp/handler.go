package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/kcalabs/kca-projects/internal/backup"
	"github.com/kcalabs/kca-projects/internal/domain/activity"
	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/kcalabs/kca-projects/internal/metrics"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Add(ctx context.Context, in project.FormInput) (*project.Project, error)
	Update(ctx context.Context, id string, in project.FormInput) (*project.Project, error)
	Delete(ctx context.Context, id string) error
	UpdateProgress(ctx context.Context, id string, progress int) (*project.Project, error)
	UpdateStatus(ctx context.Context, id, statusID string) (*project.Project, error)
	Get(id string) (*project.Project, error)
	List() []project.Project
	Stats() project.Stats
	View(f project.Filter, s project.Sort) []project.Project
	Import(ctx context.Context, projects []project.Project, mode project.ImportMode) (project.ImportResult, error)
	Loading() bool
	LastError() string
	ClearError()
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler implements every project operation exposed over MCP and JSON-RPC.
type Handler struct {
	projects  ProjectService
	activity  ActivityService
	backupDir string
	now       func() time.Time
}

// NewHandler creates a new MCP handler. backupDir is where export and import
// read and write backup files.
func NewHandler(projects ProjectService, activitySvc ActivityService, backupDir string) *Handler {
	return &Handler{
		projects:  projects,
		activity:  activitySvc,
		backupDir: backupDir,
		now:       time.Now,
	}
}

// Handle dispatches a method by name. It serves the JSON-RPC transport;
// MCP tools call the typed methods directly.
func (h *Handler) Handle(ctx context.Context, actor, method string, params json.RawMessage) (any, error) {
	ctx = withActor(ctx, actor)

	switch method {
	case "list_projects":
		return call(ctx, h, method, params, h.ListProjects)
	case "get_project":
		return call(ctx, h, method, params, h.GetProject)
	case "create_project":
		return call(ctx, h, method, params, h.CreateProject)
	case "update_project":
		return call(ctx, h, method, params, h.UpdateProject)
	case "delete_project":
		return call(ctx, h, method, params, h.DeleteProject)
	case "update_progress":
		return call(ctx, h, method, params, h.UpdateProgress)
	case "update_status":
		return call(ctx, h, method, params, h.UpdateStatus)
	case "get_stats":
		return call(ctx, h, method, params, h.GetStats)
	case "get_status":
		return call(ctx, h, method, params, h.GetStatus)
	case "clear_error":
		return call(ctx, h, method, params, h.ClearError)
	case "list_catalog":
		return call(ctx, h, method, params, h.ListCatalog)
	case "export_projects":
		return call(ctx, h, method, params, h.ExportProjects)
	case "import_projects":
		return call(ctx, h, method, params, h.ImportProjects)
	case "get_recent_activity":
		return call(ctx, h, method, params, h.GetRecentActivity)
	default:
		return nil, &APIError{Code: CodeMethodNotFound, Message: "unknown method: " + method}
	}
}

func call[In, Out any](ctx context.Context, h *Handler, method string, params json.RawMessage, fn func(context.Context, In) (Out, error)) (any, error) {
	var in In
	if err := decodeParams(params, &in); err != nil {
		return nil, invalidParams("invalid params for %s: %v", method, err)
	}
	out, err := fn(ctx, in)
	h.observe(method, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return json.Unmarshal(params, out)
}

func (h *Handler) observe(method string, err error) {
	metrics.RecordOperation(method, err)
	if err == nil {
		metrics.SetCollectionSize(h.projects.Stats().Total)
	}
}

// ListProjects returns the filtered, sorted view of the collection.
func (h *Handler) ListProjects(_ context.Context, p ListProjectsParams) (ListProjectsResponse, error) {
	order := project.SortAsc
	switch p.SortOrder {
	case "", string(project.SortAsc):
	case string(project.SortDesc):
		order = project.SortDesc
	default:
		return ListProjectsResponse{}, invalidParams("sort_order must be asc or desc")
	}

	view := h.projects.View(project.Filter{
		Search:   p.Search,
		Status:   p.Status,
		Priority: p.Priority,
		Tech:     p.Tech,
	}, project.Sort{By: project.SortKey(p.SortBy), Order: order})

	return ListProjectsResponse{
		Projects: toProjectResponses(view),
		Total:    h.projects.Stats().Total,
	}, nil
}

func (h *Handler) GetProject(_ context.Context, p GetProjectParams) (ProjectResponse, error) {
	if p.ID == "" {
		return ProjectResponse{}, invalidParams("id is required")
	}
	proj, err := h.projects.Get(p.ID)
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}
	return toProjectResponse(*proj), nil
}

// CreateProject adds a project; the caller's actor becomes its creator.
func (h *Handler) CreateProject(ctx context.Context, p ProjectParams) (ProjectResponse, error) {
	in, err := p.toForm(actorFromContext(ctx))
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}
	created, err := h.projects.Add(ctx, in)
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}
	return toProjectResponse(*created), nil
}

func (h *Handler) UpdateProject(ctx context.Context, p UpdateProjectParams) (ProjectResponse, error) {
	if p.ID == "" {
		return ProjectResponse{}, invalidParams("id is required")
	}
	in, err := p.ProjectParams.toForm("")
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}
	updated, err := h.projects.Update(ctx, p.ID, in)
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}
	return toProjectResponse(*updated), nil
}

func (h *Handler) DeleteProject(ctx context.Context, p DeleteProjectParams) (DeleteProjectResponse, error) {
	if p.ID == "" {
		return DeleteProjectResponse{}, invalidParams("id is required")
	}
	if err := h.projects.Delete(ctx, p.ID); err != nil {
		return DeleteProjectResponse{}, mapError(err)
	}
	return DeleteProjectResponse{ID: p.ID, Deleted: true}, nil
}

func (h *Handler) UpdateProgress(ctx context.Context, p UpdateProgressParams) (ProjectResponse, error) {
	if p.ID == "" {
		return ProjectResponse{}, invalidParams("id is required")
	}
	updated, err := h.projects.UpdateProgress(ctx, p.ID, p.Progress)
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}
	return toProjectResponse(*updated), nil
}

func (h *Handler) UpdateStatus(ctx context.Context, p UpdateStatusParams) (ProjectResponse, error) {
	if p.ID == "" {
		return ProjectResponse{}, invalidParams("id is required")
	}
	updated, err := h.projects.UpdateStatus(ctx, p.ID, p.StatusID)
	if err != nil {
		return ProjectResponse{}, mapError(err)
	}
	return toProjectResponse(*updated), nil
}

func (h *Handler) GetStats(context.Context, EmptyParams) (project.Stats, error) {
	return h.projects.Stats(), nil
}

// GetStatus reports the collection size and the latest storage failure, if
// any. A failed load leaves the collection empty; the error stays here until
// it is cleared.
func (h *Handler) GetStatus(context.Context, EmptyParams) (StatusResponse, error) {
	return StatusResponse{
		Total:     h.projects.Stats().Total,
		Loading:   h.projects.Loading(),
		LastError: h.projects.LastError(),
	}, nil
}

func (h *Handler) ClearError(context.Context, EmptyParams) (ClearErrorResponse, error) {
	previous := h.projects.LastError()
	h.projects.ClearError()
	return ClearErrorResponse{Cleared: previous}, nil
}

func (h *Handler) ListCatalog(context.Context, EmptyParams) (CatalogResponse, error) {
	priorities := make([]string, 0, 4)
	for _, p := range project.Priorities() {
		priorities = append(priorities, string(p))
	}
	return CatalogResponse{
		Statuses:   project.Statuses(),
		TechStacks: project.TechStacks(),
		Priorities: priorities,
	}, nil
}

// ExportProjects returns the collection as backup JSON, or writes it into
// the backup directory when WriteFile is set.
func (h *Handler) ExportProjects(_ context.Context, p ExportProjectsParams) (ExportProjectsResponse, error) {
	now := h.now()
	name := p.Filename
	if name == "" {
		name = backup.DefaultFilename(now)
	}
	if filepath.Base(name) != name {
		return ExportProjectsResponse{}, invalidParams("filename must not contain a directory")
	}

	projects := h.projects.List()
	resp := ExportProjectsResponse{Filename: name, Count: len(projects)}

	if p.WriteFile {
		if h.backupDir == "" {
			return ExportProjectsResponse{}, invalidParams("no backup directory configured")
		}
		path, err := backup.ExportFile(h.backupDir, name, projects, now)
		if err != nil {
			return ExportProjectsResponse{}, err
		}
		resp.Path = path
		return resp, nil
	}

	var buf bytes.Buffer
	if err := backup.Export(&buf, projects); err != nil {
		return ExportProjectsResponse{}, err
	}
	resp.Content = buf.String()
	return resp, nil
}

// ImportProjects restores projects from inline content or a backup file.
// Nothing changes unless every record is valid.
func (h *Handler) ImportProjects(ctx context.Context, p ImportProjectsParams) (ImportProjectsResponse, error) {
	mode, err := project.ParseImportMode(p.Mode)
	if err != nil {
		return ImportProjectsResponse{}, mapError(err)
	}

	var records []project.Project
	switch {
	case p.File != "":
		if h.backupDir == "" {
			return ImportProjectsResponse{}, invalidParams("no backup directory configured")
		}
		if filepath.Base(p.File) != p.File {
			return ImportProjectsResponse{}, invalidParams("file must be a name inside the backup directory")
		}
		records, err = backup.ImportFile(ctx, filepath.Join(h.backupDir, p.File))
	case p.Content != "":
		contentType := p.ContentType
		if contentType == "" {
			contentType = backup.ContentType
		}
		records, err = backup.Import(ctx, strings.NewReader(p.Content), contentType)
	default:
		return ImportProjectsResponse{}, invalidParams("content or file is required")
	}
	if err != nil {
		return ImportProjectsResponse{}, mapError(err)
	}

	result, err := h.projects.Import(ctx, records, mode)
	if err != nil {
		return ImportProjectsResponse{}, mapError(err)
	}
	metrics.RecordImport(result.Imported, result.Skipped)

	return ImportProjectsResponse{
		Mode:     string(result.Mode),
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Total:    result.Total,
	}, nil
}

func (h *Handler) GetRecentActivity(ctx context.Context, p GetRecentActivityParams) (RecentActivityResponse, error) {
	opts := activity.ListActivityOptions{
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	if p.ProjectID != "" {
		opts.ProjectID = &p.ProjectID
	}
	if p.Type != "" {
		opts.ActivityType = &p.Type
	}

	entries, err := h.activity.GetRecentActivity(ctx, opts)
	if err != nil {
		return RecentActivityResponse{}, mapError(err)
	}
	resp := RecentActivityResponse{Entries: make([]ActivityEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, ActivityEntryResponse{
			Timestamp: entry.CreatedAt.UTC().Format(time.RFC3339),
			Type:      entry.ActivityType,
			ProjectID: stringValue(entry.ProjectID),
			Summary:   entry.Summary,
			Details:   entry.Details,
		})
	}
	return resp, nil
}

package mcp

import (
	"context"
	"encoding/json"

	"github.com/kcalabs/kca-projects/internal/domain/project"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `kca-projects manages the KCA project showcase: one collection of student and club projects.

Core concepts:
- Project: title, team, members, tech stack, progress (0-100), status, priority, dates, impact.
- Status: one of the catalog statuses (planning, development, testing, deployment, completed, on-hold).
- Tech stack and status ids come from list_catalog; unknown tech ids are dropped silently.

Default workflow:
1) Orient: list_catalog once, then get_stats or list_projects with filters.
2) Read: get_project for the full record.
3) Write: create_project / update_project / update_progress / update_status / delete_project.
   - update_progress(100) completes a project; any progress on a planning project starts development.
   - Missing ids return PROJECT_NOT_FOUND and change nothing.
4) Backup: export_projects before bulk changes; import_projects with mode=merge to add without overwriting.

Docs:
- kca://docs/index
- kca://docs/fields
- kca://docs/backup
- kca://catalog (JSON)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	MIMEType    string
	Content     func() string
}

func staticContent(s string) func() string {
	return func() string { return s }
}

func catalogContent() string {
	catalog := map[string]any{
		"statuses":   project.Statuses(),
		"techStacks": project.TechStacks(),
		"priorities": project.Priorities(),
	}
	data, _ := json.MarshalIndent(catalog, "", "  ")
	return string(data)
}

var docResources = []docResource{
	{
		URI:         "kca://docs/index",
		Name:        "docs_index",
		Title:       "kca-projects docs index",
		Description: "What each doc covers and which tools to reach for.",
		MIMEType:    "text/markdown",
		Content: staticContent(`# kca-projects: Docs Index

## Read when

- kca://docs/fields: before creating or updating a project.
- kca://docs/backup: before exporting or importing.
- kca://catalog: to look up valid status ids, tech stack ids and priorities.

## Tools

- Browse: list_projects, get_project, get_stats, list_catalog, get_recent_activity
- Write: create_project, update_project, delete_project, update_progress, update_status
- Backup: export_projects, import_projects
- Health: get_status, clear_error

## Known limitations

- The collection is written as a whole on every change. Two servers sharing one database file overwrite each other's changes.
- Milestones are preserved by update_project but cannot be edited through it.
- If stored data cannot be read, the server starts with an empty collection and get_status reports the error. Restore with import_projects in replace mode.
`),
	},
	{
		URI:         "kca://docs/fields",
		Name:        "docs_fields",
		Title:       "Project fields and validation",
		Description: "Required fields, defaults and validation rules for create_project and update_project.",
		MIMEType:    "text/markdown",
		Content: staticContent(`# Project fields

## Required

- title, description, overview, team_name: must not be blank.
- start_date: ISO-8601 timestamp or YYYY-MM-DD.

## Validated

- progress: 0 to 100 inclusive. Values outside the range are rejected, not clamped.
- end_date: optional; must not be before start_date.
- priority: low, medium, high or critical. Blank means medium.
- budget: optional; must not be negative.

## Normalised

- members: entries with a blank name are dropped. leader_index picks the leader among the remaining members, else the first member leads.
- tech_stack: ids not in the catalog and repeats are dropped.
- status_id: unknown ids fall back to planning.
- metrics: entries without a label or value are dropped.
- tags: trimmed and de-duplicated.

Validation failures return INVALID_INPUT with every failing field listed in details.
`),
	},
	{
		URI:         "kca://docs/backup",
		Name:        "docs_backup",
		Title:       "Backup format and import policy",
		Description: "The backup JSON shape and how replace and merge imports behave.",
		MIMEType:    "text/markdown",
		Content: staticContent(`# Backups

## Format

A backup is a UTF-8 JSON array of projects, indented with two spaces. Dates are ISO-8601 strings in UTC:
startDate, endDate, createdAt, lastUpdated and, per milestone, dueDate and completedAt.

Default file name: kca-projects-backup-YYYY-MM-DD.json

## Import

- The declared content type must contain "json".
- The top-level value must be an array.
- Every record is validated; if any record fails, nothing is imported and INVALID_BACKUP lists every failure.
- mode=replace swaps the whole collection.
- mode=merge keeps the current collection and appends imported projects whose id is not already present.
`),
	},
	{
		URI:         "kca://catalog",
		Name:        "catalog",
		Title:       "Status, tech stack and priority catalog",
		Description: "Valid ids for status_id, tech_stack and priority.",
		MIMEType:    "application/json",
		Content:     catalogContent,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		content := doc.Content()

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    doc.MIMEType,
			Size:        int64(len(content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: doc.MIMEType,
					Text:     content,
				}},
			}, nil
		})
	}
}

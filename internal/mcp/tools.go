package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools adds every project tool to the server.
func registerTools(server *sdkmcp.Server, h *Handler) {
	// Browsing
	addTool(server, h, "list_projects",
		"List projects, optionally filtered by search text, status, priority or tech stack and sorted by title, progress, createdAt or lastUpdated",
		h.ListProjects)
	addTool(server, h, "get_project",
		"Get one project by id",
		h.GetProject)
	addTool(server, h, "get_stats",
		"Get collection statistics: totals by progress, average progress, counts per status and priority",
		h.GetStats)
	addTool(server, h, "list_catalog",
		"List the valid status ids, tech stack ids and priorities",
		h.ListCatalog)

	// Mutations
	addTool(server, h, "create_project",
		"Create a project. Title, description, overview, team_name and start_date are required",
		h.CreateProject)
	addTool(server, h, "update_project",
		"Replace every editable field of a project. Id, creation time, creator and milestones are kept",
		h.UpdateProject)
	addTool(server, h, "delete_project",
		"Delete a project by id",
		h.DeleteProject)
	addTool(server, h, "update_progress",
		"Set a project's progress. 100 marks it completed; progress on a planning project moves it to development",
		h.UpdateProgress)
	addTool(server, h, "update_status",
		"Move a project to another status",
		h.UpdateStatus)

	// Backup
	addTool(server, h, "export_projects",
		"Export the whole collection as backup JSON, or write it to the server's backup directory",
		h.ExportProjects)
	addTool(server, h, "import_projects",
		"Import a backup, replacing the collection or merging new ids into it. Invalid backups change nothing",
		h.ImportProjects)

	// Activity and health
	addTool(server, h, "get_recent_activity",
		"List recent changes to the collection, newest first",
		h.GetRecentActivity)
	addTool(server, h, "get_status",
		"Report the collection size and the latest storage error. Check this when the collection looks empty",
		h.GetStatus)
	addTool(server, h, "clear_error",
		"Dismiss the latest storage error after it has been dealt with",
		h.ClearError)
}

func addTool[In, Out any](server *sdkmcp.Server, h *Handler, name, description string, fn func(context.Context, In) (Out, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
		out, err := fn(ctx, in)
		h.observe(name, err)
		if err != nil {
			var zero Out
			return nil, zero, err
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: formatPayload(out)}},
		}, out, nil
	})
}

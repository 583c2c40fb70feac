package mcp

import (
	"strings"

	"github.com/kcalabs/kca-projects/internal/codec"
	"github.com/kcalabs/kca-projects/internal/domain/activity"
	"github.com/kcalabs/kca-projects/internal/domain/project"
)

type MemberParams struct {
	Name   string   `json:"name" jsonschema:"Member name; members with a blank name are dropped"`
	Role   string   `json:"role,omitempty" jsonschema:"Role within the team"`
	Skills []string `json:"skills,omitempty" jsonschema:"Member skills"`
}

// ProjectParams carries the editable fields of a project.
type ProjectParams struct {
	Title             string                 `json:"title" jsonschema:"Project title"`
	Description       string                 `json:"description" jsonschema:"One-line description"`
	Overview          string                 `json:"overview" jsonschema:"Longer overview"`
	TeamName          string                 `json:"team_name" jsonschema:"Team name"`
	TechStack         []string               `json:"tech_stack,omitempty" jsonschema:"Tech stack ids from list_catalog; unknown ids are dropped"`
	Members           []MemberParams         `json:"members,omitempty" jsonschema:"Team members"`
	LeaderIndex       int                    `json:"leader_index,omitempty" jsonschema:"Index into members of the team leader (default first member)"`
	Progress          int                    `json:"progress,omitempty" jsonschema:"Progress percentage 0-100"`
	StatusID          string                 `json:"status_id,omitempty" jsonschema:"Status id from list_catalog (default planning)"`
	ImpactDescription string                 `json:"impact_description,omitempty" jsonschema:"Expected impact"`
	Metrics           []project.ImpactMetric `json:"metrics,omitempty" jsonschema:"Expected impact metrics"`
	Priority          string                 `json:"priority,omitempty" jsonschema:"low, medium, high or critical (default medium)"`
	Tags              []string               `json:"tags,omitempty" jsonschema:"Free-form tags"`
	StartDate         string                 `json:"start_date" jsonschema:"Start date, ISO-8601 or YYYY-MM-DD"`
	EndDate           string                 `json:"end_date,omitempty" jsonschema:"Optional end date, ISO-8601 or YYYY-MM-DD"`
	Image             string                 `json:"image,omitempty" jsonschema:"Image URL"`
	Budget            *float64               `json:"budget,omitempty" jsonschema:"Budget amount"`
	Resources         []string               `json:"resources,omitempty" jsonschema:"Required resources"`
	Risks             []string               `json:"risks,omitempty" jsonschema:"Known risks"`
}

// toForm converts params into a form, rejecting unparseable dates.
func (p ProjectParams) toForm(createdBy string) (project.FormInput, error) {
	in := project.FormInput{
		Title:             p.Title,
		Description:       p.Description,
		Overview:          p.Overview,
		TeamName:          p.TeamName,
		TechStackIDs:      p.TechStack,
		LeaderIndex:       p.LeaderIndex,
		Progress:          p.Progress,
		StatusID:          p.StatusID,
		ImpactDescription: p.ImpactDescription,
		Metrics:           p.Metrics,
		Priority:          p.Priority,
		Tags:              p.Tags,
		Image:             p.Image,
		Budget:            p.Budget,
		Resources:         p.Resources,
		Risks:             p.Risks,
		CreatedBy:         createdBy,
	}
	for _, m := range p.Members {
		in.MemberNames = append(in.MemberNames, m.Name)
		in.MemberRoles = append(in.MemberRoles, m.Role)
		in.MemberSkills = append(in.MemberSkills, m.Skills)
	}

	verr := &project.ValidationError{}
	if strings.TrimSpace(p.StartDate) != "" {
		start, err := codec.ParseTime(p.StartDate)
		if err != nil {
			verr.Fields = append(verr.Fields, project.FieldError{Field: "start_date", Code: project.CodeInvalid, Message: err.Error()})
		}
		in.StartDate = start
	}
	if strings.TrimSpace(p.EndDate) != "" {
		end, err := codec.ParseTime(p.EndDate)
		if err != nil {
			verr.Fields = append(verr.Fields, project.FieldError{Field: "end_date", Code: project.CodeInvalid, Message: err.Error()})
		}
		in.EndDate = &end
	}
	if len(verr.Fields) > 0 {
		return project.FormInput{}, verr
	}
	return in, nil
}

type ListProjectsParams struct {
	Search    string `json:"search,omitempty" jsonschema:"Case-insensitive text matched against title, description, team and member names"`
	Status    string `json:"status,omitempty" jsonschema:"Status id or all"`
	Priority  string `json:"priority,omitempty" jsonschema:"Priority or all"`
	Tech      string `json:"tech,omitempty" jsonschema:"Tech stack id or all"`
	SortBy    string `json:"sort_by,omitempty" jsonschema:"title, progress, createdAt or lastUpdated"`
	SortOrder string `json:"sort_order,omitempty" jsonschema:"asc or desc (default asc)"`
}

type GetProjectParams struct {
	ID string `json:"id" jsonschema:"Project id"`
}

type UpdateProjectParams struct {
	ID string `json:"id" jsonschema:"Project id"`
	ProjectParams
}

type DeleteProjectParams struct {
	ID string `json:"id" jsonschema:"Project id"`
}

type UpdateProgressParams struct {
	ID       string `json:"id" jsonschema:"Project id"`
	Progress int    `json:"progress" jsonschema:"Progress percentage 0-100; 100 completes the project"`
}

type UpdateStatusParams struct {
	ID       string `json:"id" jsonschema:"Project id"`
	StatusID string `json:"status_id" jsonschema:"Status id from list_catalog"`
}

type EmptyParams struct{}

type ExportProjectsParams struct {
	WriteFile bool   `json:"write_file,omitempty" jsonschema:"Write the backup into the server's backup directory instead of returning it"`
	Filename  string `json:"filename,omitempty" jsonschema:"Backup file name (default kca-projects-backup-<date>.json)"`
}

type ImportProjectsParams struct {
	Content     string `json:"content,omitempty" jsonschema:"Backup JSON array"`
	ContentType string `json:"content_type,omitempty" jsonschema:"Declared MIME type of content (default application/json)"`
	File        string `json:"file,omitempty" jsonschema:"Backup file name inside the server's backup directory"`
	Mode        string `json:"mode,omitempty" jsonschema:"replace (default) or merge; merge skips ids already present"`
}

type GetRecentActivityParams struct {
	ProjectID string                `json:"project_id,omitempty" jsonschema:"Only entries for this project"`
	Type      activity.ActivityType `json:"type,omitempty" jsonschema:"Only entries of this type"`
	Limit     int                   `json:"limit,omitempty" jsonschema:"Maximum entries (default 50)"`
	Offset    int                   `json:"offset,omitempty" jsonschema:"Entries to skip"`
}

type MemberResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

type MilestoneResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Completed   bool   `json:"completed"`
	CompletedAt string `json:"completedAt,omitempty"`
}

type ProjectResponse struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Overview       string                 `json:"overview"`
	TechStack      []project.TechStack    `json:"techStack"`
	TeamName       string                 `json:"teamName"`
	Members        []MemberResponse       `json:"members"`
	LeaderID       string                 `json:"leaderId"`
	Progress       int                    `json:"progress"`
	Status         project.ProjectStatus  `json:"status"`
	ExpectedImpact project.ExpectedImpact `json:"expectedImpact"`
	Priority       string                 `json:"priority"`
	Tags           []string               `json:"tags"`
	StartDate      string                 `json:"startDate"`
	EndDate        string                 `json:"endDate,omitempty"`
	CreatedAt      string                 `json:"createdAt"`
	LastUpdated    string                 `json:"lastUpdated"`
	CreatedBy      string                 `json:"createdBy"`
	Image          string                 `json:"image,omitempty"`
	Budget         *float64               `json:"budget,omitempty"`
	Resources      []string               `json:"resources"`
	Risks          []string               `json:"risks"`
	Milestones     []MilestoneResponse    `json:"milestones"`
}

func toProjectResponse(p project.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Overview:       p.Overview,
		TechStack:      orEmpty(p.TechStack),
		TeamName:       p.TeamName,
		Members:        make([]MemberResponse, 0, len(p.Members)),
		LeaderID:       p.LeaderID,
		Progress:       p.Progress,
		Status:         p.Status,
		ExpectedImpact: p.ExpectedImpact,
		Priority:       string(p.Priority),
		Tags:           orEmpty(p.Tags),
		StartDate:      codec.FormatTime(p.StartDate),
		CreatedAt:      codec.FormatTime(p.CreatedAt),
		LastUpdated:    codec.FormatTime(p.LastUpdated),
		CreatedBy:      p.CreatedBy,
		Image:          p.Image,
		Budget:         p.Budget,
		Resources:      orEmpty(p.Resources),
		Risks:          orEmpty(p.Risks),
		Milestones:     make([]MilestoneResponse, 0, len(p.Milestones)),
	}
	resp.ExpectedImpact.Metrics = orEmpty(resp.ExpectedImpact.Metrics)
	if p.EndDate != nil {
		resp.EndDate = codec.FormatTime(*p.EndDate)
	}
	for _, m := range p.Members {
		resp.Members = append(resp.Members, MemberResponse{ID: m.ID, Name: m.Name, Role: m.Role, Skills: orEmpty(m.Skills)})
	}
	for _, m := range p.Milestones {
		mr := MilestoneResponse{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			DueDate:     codec.FormatTime(m.DueDate),
			Completed:   m.Completed,
		}
		if m.CompletedAt != nil {
			mr.CompletedAt = codec.FormatTime(*m.CompletedAt)
		}
		resp.Milestones = append(resp.Milestones, mr)
	}
	return resp
}

func toProjectResponses(projects []project.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	return out
}

type ListProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int               `json:"total" jsonschema:"Number of projects in the whole collection"`
}

type DeleteProjectResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type StatusResponse struct {
	Total     int    `json:"total"`
	Loading   bool   `json:"loading"`
	LastError string `json:"last_error,omitempty" jsonschema:"Latest load, save or import failure; empty when there is none"`
}

type ClearErrorResponse struct {
	Cleared string `json:"cleared,omitempty" jsonschema:"The message that was dismissed"`
}

type CatalogResponse struct {
	Statuses   []project.ProjectStatus `json:"statuses"`
	TechStacks []project.TechStack     `json:"techStacks"`
	Priorities []string                `json:"priorities"`
}

type ExportProjectsResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Count    int    `json:"count"`
	Content  string `json:"content,omitempty"`
}

type ImportProjectsResponse struct {
	Mode     string `json:"mode"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
}

type ActivityEntryResponse struct {
	Timestamp string                `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	ProjectID string                `json:"project_id,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}

type RecentActivityResponse struct {
	Entries []ActivityEntryResponse `json:"entries"`
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func stringValue(val *string) string {
	if val == nil {
		return ""
	}
	return *val
}

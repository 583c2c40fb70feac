// Package codec converts the project collection to and from its persisted
// JSON form. Dates travel as ISO-8601 strings in UTC with millisecond
// precision; decoding revives them and validates every record.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kcalabs/kca-projects/internal/domain/project"
)

// ISOLayout matches the ISO-8601 timestamps written by browsers.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in UTC using ISOLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseTime accepts RFC 3339 timestamps (with or without fractional
// seconds) and bare YYYY-MM-DD dates.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", s)
	}
	return t.UTC(), nil
}

type wireProject struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Overview       string                 `json:"overview"`
	TechStack      []project.TechStack    `json:"techStack"`
	TeamName       string                 `json:"teamName"`
	Members        []project.TeamMember   `json:"members"`
	LeaderID       string                 `json:"leaderId"`
	Progress       int                    `json:"progress"`
	Status         project.ProjectStatus  `json:"status"`
	ExpectedImpact project.ExpectedImpact `json:"expectedImpact"`
	Priority       string                 `json:"priority"`
	Tags           []string               `json:"tags"`
	StartDate      string                 `json:"startDate"`
	EndDate        *string                `json:"endDate,omitempty"`
	CreatedAt      string                 `json:"createdAt"`
	LastUpdated    string                 `json:"lastUpdated"`
	CreatedBy      string                 `json:"createdBy"`
	Image          string                 `json:"image,omitempty"`
	Budget         *float64               `json:"budget,omitempty"`
	Resources      []string               `json:"resources"`
	Risks          []string               `json:"risks"`
	Milestones     []wireMilestone        `json:"milestones"`
}

type wireMilestone struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"dueDate"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

// Encode serialises projects as a compact JSON array.
func Encode(projects []project.Project) ([]byte, error) {
	data, err := json.Marshal(toWire(projects))
	if err != nil {
		return nil, fmt.Errorf("encode projects: %w", err)
	}
	return data, nil
}

// EncodeIndent serialises projects as a JSON array indented with two spaces.
func EncodeIndent(projects []project.Project) ([]byte, error) {
	data, err := json.MarshalIndent(toWire(projects), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode projects: %w", err)
	}
	return data, nil
}

// EncodeProjectIndent serialises one project as an indented JSON object in
// the same shape as a backup record.
func EncodeProjectIndent(p project.Project) ([]byte, error) {
	data, err := json.MarshalIndent(toWire([]project.Project{p})[0], "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	return data, nil
}

// Decode parses a JSON array of projects. It either returns every record,
// fully typed, or an error: ErrMalformed, ErrNotArray, or a *DecodeError
// listing all record failures.
func Decode(data []byte) ([]project.Project, error) {
	if !json.Valid(data) {
		return nil, ErrMalformed
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	derr := &DecodeError{}
	out := make([]project.Project, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for i, msg := range raw {
		var w wireProject
		if err := json.Unmarshal(msg, &w); err != nil {
			derr.add(i, "", fieldOf(err), err.Error())
			continue
		}
		if first, dup := seen[w.ID]; dup && w.ID != "" {
			derr.add(i, w.ID, "id", fmt.Sprintf("duplicate of record %d", first))
			continue
		}
		seen[w.ID] = i
		if p, ok := fromWire(i, w, derr); ok {
			out = append(out, p)
		}
	}

	if len(derr.Failures) > 0 {
		return nil, derr
	}
	return out, nil
}

func fieldOf(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}
	return "record"
}

func toWire(projects []project.Project) []wireProject {
	out := make([]wireProject, 0, len(projects))
	for _, p := range projects {
		w := wireProject{
			ID:             p.ID,
			Title:          p.Title,
			Description:    p.Description,
			Overview:       p.Overview,
			TechStack:      nonNil(p.TechStack),
			TeamName:       p.TeamName,
			Members:        nonNil(p.Members),
			LeaderID:       p.LeaderID,
			Progress:       p.Progress,
			Status:         p.Status,
			ExpectedImpact: p.ExpectedImpact,
			Priority:       string(p.Priority),
			Tags:           nonNil(p.Tags),
			StartDate:      FormatTime(p.StartDate),
			CreatedAt:      FormatTime(p.CreatedAt),
			LastUpdated:    FormatTime(p.LastUpdated),
			CreatedBy:      p.CreatedBy,
			Image:          p.Image,
			Budget:         p.Budget,
			Resources:      nonNil(p.Resources),
			Risks:          nonNil(p.Risks),
			Milestones:     make([]wireMilestone, 0, len(p.Milestones)),
		}
		w.ExpectedImpact.Metrics = nonNil(w.ExpectedImpact.Metrics)
		if p.EndDate != nil {
			end := FormatTime(*p.EndDate)
			w.EndDate = &end
		}
		for _, m := range p.Milestones {
			wm := wireMilestone{
				ID:          m.ID,
				Title:       m.Title,
				Description: m.Description,
				DueDate:     FormatTime(m.DueDate),
				Completed:   m.Completed,
			}
			if m.CompletedAt != nil {
				at := FormatTime(*m.CompletedAt)
				wm.CompletedAt = &at
			}
			w.Milestones = append(w.Milestones, wm)
		}
		out = append(out, w)
	}
	return out
}

func fromWire(index int, w wireProject, derr *DecodeError) (project.Project, bool) {
	before := len(derr.Failures)
	fail := func(field, message string) {
		derr.add(index, w.ID, field, message)
	}
	parse := func(field, value string) time.Time {
		t, err := ParseTime(value)
		if err != nil {
			fail(field, err.Error())
		}
		return t
	}

	if strings.TrimSpace(w.ID) == "" {
		fail("id", "must not be blank")
	}
	if strings.TrimSpace(w.Title) == "" {
		fail("title", "must not be blank")
	}
	status, ok := project.StatusByID(w.Status.ID)
	if !ok {
		fail("status.id", fmt.Sprintf("unknown status %q", w.Status.ID))
	}
	priority, err := project.ParsePriority(w.Priority)
	if err != nil {
		fail("priority", err.Error())
	}
	if w.Progress < 0 || w.Progress > 100 {
		fail("progress", fmt.Sprintf("%d is outside 0..100", w.Progress))
	}

	p := project.Project{
		ID:             w.ID,
		Title:          w.Title,
		Description:    w.Description,
		Overview:       w.Overview,
		TechStack:      project.ResolveTech(techIDs(w.TechStack)),
		TeamName:       w.TeamName,
		Members:        nonNil(w.Members),
		LeaderID:       w.LeaderID,
		Progress:       w.Progress,
		Status:         status,
		ExpectedImpact: w.ExpectedImpact,
		Priority:       priority,
		Tags:           nonNil(w.Tags),
		StartDate:      parse("startDate", w.StartDate),
		CreatedAt:      parse("createdAt", w.CreatedAt),
		LastUpdated:    parse("lastUpdated", w.LastUpdated),
		CreatedBy:      w.CreatedBy,
		Image:          w.Image,
		Budget:         w.Budget,
		Resources:      nonNil(w.Resources),
		Risks:          nonNil(w.Risks),
		Milestones:     make([]project.Milestone, 0, len(w.Milestones)),
	}
	p.ExpectedImpact.Metrics = nonNil(p.ExpectedImpact.Metrics)
	for i := range p.Members {
		p.Members[i].Skills = nonNil(p.Members[i].Skills)
	}
	if w.EndDate != nil {
		end := parse("endDate", *w.EndDate)
		p.EndDate = &end
	}
	if !p.CreatedAt.IsZero() && p.LastUpdated.Before(p.CreatedAt) {
		fail("lastUpdated", "must not be before createdAt")
	}

	for i, wm := range w.Milestones {
		prefix := fmt.Sprintf("milestones[%d].", i)
		m := project.Milestone{
			ID:          wm.ID,
			Title:       wm.Title,
			Description: wm.Description,
			DueDate:     parse(prefix+"dueDate", wm.DueDate),
			Completed:   wm.Completed,
		}
		if wm.CompletedAt != nil {
			at := parse(prefix+"completedAt", *wm.CompletedAt)
			m.CompletedAt = &at
		}
		p.Milestones = append(p.Milestones, m)
	}

	return p, len(derr.Failures) == before
}

func techIDs(entries []project.TechStack) []string {
	ids := make([]string, 0, len(entries))
	for _, t := range entries {
		ids = append(ids, t.ID)
	}
	return ids
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

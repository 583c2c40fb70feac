package project

import (
	"strings"
	"time"
)

// FormInput carries the editable fields of a project as entered by a user.
// Member fields are parallel slices indexed together; rows with a blank name
// are dropped.
type FormInput struct {
	Title             string
	Description       string
	Overview          string
	TeamName          string
	TechStackIDs      []string
	MemberNames       []string
	MemberRoles       []string
	MemberSkills      [][]string
	LeaderIndex       int
	Progress          int
	StatusID          string
	ImpactDescription string
	Metrics           []ImpactMetric
	Priority          string
	Tags              []string
	StartDate         time.Time
	EndDate           *time.Time
	Image             string
	Budget            *float64
	Resources         []string
	Risks             []string
	CreatedBy         string
}

// ValidateForm checks a form against the collection's input policy: required
// text fields, a start date, progress within [0,100], an end date not before
// the start date and a known priority.
func ValidateForm(in FormInput) error {
	verr := &ValidationError{}
	required := []struct {
		field string
		value string
	}{
		{"title", in.Title},
		{"description", in.Description},
		{"overview", in.Overview},
		{"teamName", in.TeamName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			verr.add(r.field, CodeRequired, "must not be blank")
		}
	}
	if in.StartDate.IsZero() {
		verr.add("startDate", CodeRequired, "must be set")
	}
	if err := ValidateProgress(in.Progress); err != nil {
		verr.add("progress", CodeOutOfRange, "must be between 0 and 100")
	}
	if in.EndDate != nil && !in.StartDate.IsZero() && in.EndDate.Before(in.StartDate) {
		verr.add("endDate", CodeOutOfRange, "must not be before startDate")
	}
	if _, err := ParsePriority(in.Priority); err != nil {
		verr.add("priority", CodeInvalid, "must be one of low, medium, high, critical")
	}
	if in.Budget != nil && *in.Budget < 0 {
		verr.add("budget", CodeOutOfRange, "must not be negative")
	}
	return verr.orNil()
}

// ValidateProgress rejects values outside [0,100].
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return &ValidationError{Fields: []FieldError{{
			Field:   "progress",
			Code:    CodeOutOfRange,
			Message: "must be between 0 and 100",
		}}}
	}
	return nil
}

// buildMembers pairs names with roles and skills, dropping blank names, and
// returns the members plus the id of the chosen leader. LeaderIndex refers to
// the form row, so blank rows before it do not shift the choice. A blank or
// out-of-range leader row falls back to the first member.
func buildMembers(in FormInput, newID func() string) ([]TeamMember, string) {
	members := make([]TeamMember, 0, len(in.MemberNames))
	leaderID := ""
	for i, name := range in.MemberNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m := TeamMember{ID: newID(), Name: name, Skills: []string{}}
		if i < len(in.MemberRoles) {
			m.Role = strings.TrimSpace(in.MemberRoles[i])
		}
		if i < len(in.MemberSkills) {
			m.Skills = cleanStrings(in.MemberSkills[i], true)
		}
		if i == in.LeaderIndex {
			leaderID = m.ID
		}
		members = append(members, m)
	}
	if leaderID == "" && len(members) > 0 {
		leaderID = members[0].ID
	}
	return members, leaderID
}

func buildMetrics(metrics []ImpactMetric) []ImpactMetric {
	out := make([]ImpactMetric, 0, len(metrics))
	for _, m := range metrics {
		m.Label = strings.TrimSpace(m.Label)
		m.Value = strings.TrimSpace(m.Value)
		m.Unit = strings.TrimSpace(m.Unit)
		if m.Label == "" || m.Value == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// cleanStrings trims values and drops blanks, optionally dropping repeats.
func cleanStrings(values []string, dedupe bool) []string {
	out := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if dedupe {
			if seen[v] {
				continue
			}
			seen[v] = true
		}
		out = append(out, v)
	}
	return out
}

func resolveStatus(id string) ProjectStatus {
	if s, ok := StatusByID(id); ok {
		return s
	}
	return DefaultStatus()
}

// applyForm overwrites every mutable field of p from the form.
func applyForm(p *Project, in FormInput, newID func() string) {
	priority, err := ParsePriority(in.Priority)
	if err != nil {
		priority = PriorityMedium
	}
	members, leaderID := buildMembers(in, newID)

	p.Title = strings.TrimSpace(in.Title)
	p.Description = strings.TrimSpace(in.Description)
	p.Overview = strings.TrimSpace(in.Overview)
	p.TechStack = ResolveTech(in.TechStackIDs)
	p.TeamName = strings.TrimSpace(in.TeamName)
	p.Members = members
	p.LeaderID = leaderID
	p.Progress = in.Progress
	p.Status = resolveStatus(in.StatusID)
	p.ExpectedImpact = ExpectedImpact{
		Description: strings.TrimSpace(in.ImpactDescription),
		Metrics:     buildMetrics(in.Metrics),
	}
	p.Priority = priority
	p.Tags = cleanStrings(in.Tags, true)
	p.StartDate = in.StartDate
	p.EndDate = nil
	if in.EndDate != nil {
		end := *in.EndDate
		p.EndDate = &end
	}
	p.Image = strings.TrimSpace(in.Image)
	p.Budget = nil
	if in.Budget != nil {
		budget := *in.Budget
		p.Budget = &budget
	}
	p.Resources = cleanStrings(in.Resources, false)
	p.Risks = cleanStrings(in.Risks, false)
	if p.Milestones == nil {
		p.Milestones = []Milestone{}
	}
}

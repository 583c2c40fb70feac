package project

import (
	"slices"
	"time"
)

// Priority ranks how urgent a project is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Project is a showcase project record. It is only ever built by the Service.
type Project struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Overview       string         `json:"overview"`
	TechStack      []TechStack    `json:"techStack"`
	TeamName       string         `json:"teamName"`
	Members        []TeamMember   `json:"members"`
	LeaderID       string         `json:"leaderId"`
	Progress       int            `json:"progress"`
	Status         ProjectStatus  `json:"status"`
	ExpectedImpact ExpectedImpact `json:"expectedImpact"`
	Priority       Priority       `json:"priority"`
	Tags           []string       `json:"tags"`
	StartDate      time.Time      `json:"startDate"`
	EndDate        *time.Time     `json:"endDate,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	LastUpdated    time.Time      `json:"lastUpdated"`
	CreatedBy      string         `json:"createdBy"`
	Image          string         `json:"image,omitempty"`
	Budget         *float64       `json:"budget,omitempty"`
	Resources      []string       `json:"resources"`
	Risks          []string       `json:"risks"`
	Milestones     []Milestone    `json:"milestones"`
}

// TeamMember is a member of the project team.
type TeamMember struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

// ExpectedImpact describes the outcome a project aims for.
type ExpectedImpact struct {
	Description string         `json:"description"`
	Metrics     []ImpactMetric `json:"metrics"`
}

// ImpactMetric is a single measurable outcome, e.g. "Users reached: 500 people".
type ImpactMetric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Milestone is a dated checkpoint within a project.
type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"dueDate"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// HasTech reports whether the project uses the tech stack entry with the given id.
func (p *Project) HasTech(id string) bool {
	for _, t := range p.TechStack {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can't mutate the collection through a returned value.
// Nil and empty slices are preserved as such.
func (p Project) Clone() Project {
	out := p
	out.TechStack = slices.Clone(p.TechStack)
	out.Members = slices.Clone(p.Members)
	for i := range out.Members {
		out.Members[i].Skills = slices.Clone(out.Members[i].Skills)
	}
	out.ExpectedImpact.Metrics = slices.Clone(p.ExpectedImpact.Metrics)
	out.Tags = slices.Clone(p.Tags)
	out.Resources = slices.Clone(p.Resources)
	out.Risks = slices.Clone(p.Risks)
	out.Milestones = slices.Clone(p.Milestones)
	for i := range out.Milestones {
		if at := out.Milestones[i].CompletedAt; at != nil {
			copied := *at
			out.Milestones[i].CompletedAt = &copied
		}
	}
	if p.EndDate != nil {
		end := *p.EndDate
		out.EndDate = &end
	}
	if p.Budget != nil {
		budget := *p.Budget
		out.Budget = &budget
	}
	return out
}

// Stats aggregates progress across the collection.
type Stats struct {
	Total       int              `json:"total"`
	Completed   int              `json:"completed"`
	InProgress  int              `json:"inProgress"`
	NotStarted  int              `json:"notStarted"`
	AvgProgress int              `json:"avgProgress"`
	ByStatus    map[string]int   `json:"byStatus"`
	ByPriority  map[Priority]int `json:"byPriority"`
}

package project

import (
	"fmt"
	"strings"
)

// TechStack is an entry of the fixed technology catalog.
type TechStack struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Color    string `json:"color"`
}

// ProjectStatus is an entry of the fixed status catalog.
type ProjectStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Status identifiers.
const (
	StatusPlanning    = "planning"
	StatusDevelopment = "development"
	StatusTesting     = "testing"
	StatusDeployment  = "deployment"
	StatusCompleted   = "completed"
	StatusOnHold      = "on-hold"
)

var statuses = []ProjectStatus{
	{ID: StatusPlanning, Name: "Planning", Color: "#6366f1", Description: "Scoping requirements and shaping the team"},
	{ID: StatusDevelopment, Name: "Development", Color: "#3b82f6", Description: "Actively building features"},
	{ID: StatusTesting, Name: "Testing", Color: "#f59e0b", Description: "Verifying quality and fixing defects"},
	{ID: StatusDeployment, Name: "Deployment", Color: "#8b5cf6", Description: "Rolling out to users"},
	{ID: StatusCompleted, Name: "Completed", Color: "#10b981", Description: "Delivered and handed over"},
	{ID: StatusOnHold, Name: "On Hold", Color: "#6b7280", Description: "Paused pending resources or decisions"},
}

var techStacks = []TechStack{
	{ID: "react", Name: "React", Category: "frontend", Color: "#61dafb"},
	{ID: "nextjs", Name: "Next.js", Category: "frontend", Color: "#000000"},
	{ID: "typescript", Name: "TypeScript", Category: "language", Color: "#3178c6"},
	{ID: "tailwind", Name: "Tailwind CSS", Category: "frontend", Color: "#06b6d4"},
	{ID: "nodejs", Name: "Node.js", Category: "backend", Color: "#339933"},
	{ID: "go", Name: "Go", Category: "backend", Color: "#00add8"},
	{ID: "python", Name: "Python", Category: "language", Color: "#3776ab"},
	{ID: "fastapi", Name: "FastAPI", Category: "backend", Color: "#009688"},
	{ID: "tensorflow", Name: "TensorFlow", Category: "ai", Color: "#ff6f00"},
	{ID: "pytorch", Name: "PyTorch", Category: "ai", Color: "#ee4c2c"},
	{ID: "openai", Name: "OpenAI API", Category: "ai", Color: "#412991"},
	{ID: "postgresql", Name: "PostgreSQL", Category: "database", Color: "#4169e1"},
	{ID: "mongodb", Name: "MongoDB", Category: "database", Color: "#47a248"},
	{ID: "firebase", Name: "Firebase", Category: "database", Color: "#ffca28"},
	{ID: "docker", Name: "Docker", Category: "devops", Color: "#2496ed"},
	{ID: "aws", Name: "AWS", Category: "cloud", Color: "#ff9900"},
	{ID: "flutter", Name: "Flutter", Category: "mobile", Color: "#02569b"},
	{ID: "arduino", Name: "Arduino", Category: "hardware", Color: "#00979d"},
}

// Statuses returns the status catalog in its canonical order.
func Statuses() []ProjectStatus {
	return append([]ProjectStatus(nil), statuses...)
}

// TechStacks returns the technology catalog.
func TechStacks() []TechStack {
	return append([]TechStack(nil), techStacks...)
}

// StatusByID looks up a catalog status.
func StatusByID(id string) (ProjectStatus, bool) {
	for _, s := range statuses {
		if s.ID == id {
			return s, true
		}
	}
	return ProjectStatus{}, false
}

// DefaultStatus is the status used when none (or an unknown one) is given.
func DefaultStatus() ProjectStatus {
	return statuses[0]
}

// TechByID looks up a catalog tech stack entry.
func TechByID(id string) (TechStack, bool) {
	for _, t := range techStacks {
		if t.ID == id {
			return t, true
		}
	}
	return TechStack{}, false
}

// ResolveTech maps ids to catalog entries in input order. Unknown ids and
// duplicates are dropped.
func ResolveTech(ids []string) []TechStack {
	out := make([]TechStack, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		t, ok := TechByID(id)
		if !ok {
			continue
		}
		seen[id] = true
		out = append(out, t)
	}
	return out
}

// Priorities returns every priority from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// ParsePriority parses a priority name. Blank input yields medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPriority, s)
	}
}

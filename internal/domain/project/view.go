package project

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterAll disables a filter.
const FilterAll = "all"

// Filter selects projects for a view. Empty or "all" fields match everything.
type Filter struct {
	Search   string `json:"search,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Tech     string `json:"tech,omitempty"`
}

// SortKey names the field a view is ordered by.
type SortKey string

const (
	SortByTitle       SortKey = "title"
	SortByProgress    SortKey = "progress"
	SortByCreatedAt   SortKey = "createdAt"
	SortByLastUpdated SortKey = "lastUpdated"
)

// SortOrder is the view direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort orders a view. Unknown keys keep the collection order.
type Sort struct {
	By    SortKey   `json:"by,omitempty"`
	Order SortOrder `json:"order,omitempty"`
}

func isAll(v string) bool {
	return v == "" || v == FilterAll
}

// matcher holds per-view state; casers and collators are not safe for concurrent use.
type matcher struct {
	filter Filter
	needle string
	fold   cases.Caser
}

func newMatcher(f Filter) *matcher {
	m := &matcher{filter: f, fold: cases.Fold()}
	m.needle = m.fold.String(strings.TrimSpace(f.Search))
	return m
}

func (m *matcher) contains(s string) bool {
	return strings.Contains(m.fold.String(s), m.needle)
}

func (m *matcher) matchSearch(p *Project) bool {
	if m.needle == "" {
		return true
	}
	if m.contains(p.Title) || m.contains(p.Description) || m.contains(p.TeamName) {
		return true
	}
	for _, member := range p.Members {
		if m.contains(member.Name) {
			return true
		}
	}
	return false
}

func (m *matcher) match(p *Project) bool {
	f := m.filter
	if !isAll(f.Status) && p.Status.ID != f.Status {
		return false
	}
	if !isAll(f.Priority) && string(p.Priority) != f.Priority {
		return false
	}
	if !isAll(f.Tech) && !p.HasTech(f.Tech) {
		return false
	}
	return m.matchSearch(p)
}

// Matches reports whether p passes every active filter.
func (f Filter) Matches(p *Project) bool {
	return newMatcher(f).match(p)
}

// ApplyView filters and orders projects. The input is not modified.
func ApplyView(projects []Project, f Filter, s Sort) []Project {
	m := newMatcher(f)
	out := make([]Project, 0, len(projects))
	for i := range projects {
		if m.match(&projects[i]) {
			out = append(out, projects[i])
		}
	}

	compare := comparator(s.By)
	if compare == nil {
		return out
	}
	desc := s.Order == SortDesc
	slices.SortStableFunc(out, func(a, b Project) int {
		c := compare(&a, &b)
		if desc {
			return -c
		}
		return c
	})
	return out
}

func comparator(key SortKey) func(a, b *Project) int {
	switch key {
	case SortByTitle:
		col := collate.New(language.English)
		return func(a, b *Project) int { return col.CompareString(a.Title, b.Title) }
	case SortByProgress:
		return func(a, b *Project) int { return a.Progress - b.Progress }
	case SortByCreatedAt:
		return func(a, b *Project) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByLastUpdated:
		return func(a, b *Project) int { return a.LastUpdated.Compare(b.LastUpdated) }
	default:
		return nil
	}
}

// viewCache memoises the most recent view for an unchanged collection version.
type viewCache struct {
	valid   bool
	version uint64
	filter  Filter
	sort    Sort
	result  []Project
}

func (c *viewCache) lookup(version uint64, f Filter, s Sort) ([]Project, bool) {
	if !c.valid || c.version != version || c.filter != f || c.sort != s {
		return nil, false
	}
	return cloneProjects(c.result), true
}

func (c *viewCache) store(version uint64, f Filter, s Sort, result []Project) {
	c.valid = true
	c.version = version
	c.filter = f
	c.sort = s
	c.result = cloneProjects(result)
}

func cloneProjects(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i := range projects {
		out[i] = projects[i].Clone()
	}
	return out
}

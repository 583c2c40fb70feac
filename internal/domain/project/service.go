package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kcalabs/kca-projects/internal/domain/activity"
)

// DefaultCreator is recorded as createdBy when the caller doesn't name one.
const DefaultCreator = "anonymous"

// Service is the single owner of the in-memory project collection. Every
// mutation goes through it and is followed by a wholesale write to the store.
type Service struct {
	store      Store
	activities ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string

	loading atomic.Bool

	mu       sync.Mutex
	projects []Project
	version  uint64
	lastErr  string
	views    viewCache
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a project collection service. activities and logger may be nil.
func NewService(store Store, activities ActivityRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		store:      store,
		activities: activities,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
		projects:   []Project{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportMode selects how imported projects combine with the current collection.
type ImportMode string

const (
	// ImportReplace swaps the whole collection for the imported one.
	ImportReplace ImportMode = "replace"
	// ImportMerge appends imported projects whose id isn't already present.
	ImportMerge ImportMode = "merge"
)

// ParseImportMode parses "replace" or "merge"; blank means replace.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case "", ImportReplace:
		return ImportReplace, nil
	case ImportMerge:
		return ImportMerge, nil
	default:
		return "", fmt.Errorf("%w: unknown import mode %q", ErrInvalidInput, s)
	}
}

// ImportResult summarises an import.
type ImportResult struct {
	Mode     ImportMode `json:"mode"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Total    int        `json:"total"`
}

// Load reads the persisted collection. When nothing has been persisted the
// default projects are seeded and written immediately. On a read failure the
// in-memory collection is left as it was.
func (s *Service) Load(ctx context.Context) error {
	s.loading.Store(true)
	defer s.loading.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	projects, found, err := s.store.Load(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLoad, err)
		s.recordError(err)
		return err
	}

	if !found {
		s.projects = DefaultProjects(s.now(), s.newID)
		s.bump()
		s.logger.Info("seeded default projects", "count", len(s.projects))
		s.logActivity(ctx, activity.TypeCollectionSeeded, "", fmt.Sprintf("seeded %d default projects", len(s.projects)))
		return s.persist(ctx)
	}

	if projects == nil {
		projects = []Project{}
	}
	s.projects = projects
	s.bump()
	s.logger.Debug("loaded projects", "count", len(projects))
	return nil
}

// Loading reports whether a Load is in progress.
func (s *Service) Loading() bool {
	return s.loading.Load()
}

// Add validates the form and appends a new project. A save failure is
// returned wrapped in ErrSave alongside the created project, which stays in
// the collection.
func (s *Service) Add(ctx context.Context, in FormInput) (*Project, error) {
	if err := ValidateForm(in); err != nil {
		s.setError(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = DefaultCreator
	}
	p := Project{
		ID:          s.newID(),
		CreatedAt:   now,
		LastUpdated: now,
		CreatedBy:   createdBy,
	}
	applyForm(&p, in, s.newID)

	s.projects = append(s.projects, p)
	s.bump()
	s.logActivity(ctx, activity.TypeProjectCreated, p.ID, fmt.Sprintf("created project %q", p.Title))

	out := p.Clone()
	return &out, s.persist(ctx)
}

// Update replaces every mutable field of an existing project. The id,
// creation time, creator and milestones are kept.
func (s *Service) Update(ctx context.Context, id string, in FormInput) (*Project, error) {
	if err := ValidateForm(in); err != nil {
		s.setError(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexOf(id)
	if err != nil {
		return nil, err
	}

	p := s.projects[idx].Clone()
	applyForm(&p, in, s.newID)
	p.LastUpdated = s.stamp(p.CreatedAt)

	s.projects[idx] = p
	s.bump()
	s.logActivity(ctx, activity.TypeProjectUpdated, p.ID, fmt.Sprintf("updated project %q", p.Title))

	out := p.Clone()
	return &out, s.persist(ctx)
}

// Delete removes a project. A missing id leaves the collection untouched
// and returns ErrProjectNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexOf(id)
	if err != nil {
		return err
	}

	title := s.projects[idx].Title
	s.projects = append(s.projects[:idx:idx], s.projects[idx+1:]...)
	s.bump()
	s.logActivity(ctx, activity.TypeProjectDeleted, id, fmt.Sprintf("deleted project %q", title))

	return s.persist(ctx)
}

// UpdateProgress sets progress and applies the automatic status moves:
// 100 completes the project, and any progress on a planning project moves it
// into development.
func (s *Service) UpdateProgress(ctx context.Context, id string, progress int) (*Project, error) {
	if err := ValidateProgress(progress); err != nil {
		s.setError(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexOf(id)
	if err != nil {
		return nil, err
	}

	p := &s.projects[idx]
	previous := p.Status.ID
	p.Progress = progress
	switch {
	case progress == 100:
		p.Status = resolveStatus(StatusCompleted)
	case progress > 0 && p.Status.ID == StatusPlanning:
		p.Status = resolveStatus(StatusDevelopment)
	}
	p.LastUpdated = s.stamp(p.CreatedAt)
	s.bump()

	s.logActivity(ctx, activity.TypeProgressUpdated, p.ID, fmt.Sprintf("progress set to %d%%", progress))
	if p.Status.ID != previous {
		s.logActivity(ctx, activity.TypeStatusChanged, p.ID, fmt.Sprintf("status %s -> %s", previous, p.Status.ID))
	}

	out := p.Clone()
	return &out, s.persist(ctx)
}

// UpdateStatus moves a project to a catalog status.
func (s *Service) UpdateStatus(ctx context.Context, id, statusID string) (*Project, error) {
	status, ok := StatusByID(statusID)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownStatus, statusID)
		s.setError(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexOf(id)
	if err != nil {
		return nil, err
	}

	p := &s.projects[idx]
	previous := p.Status.ID
	p.Status = status
	p.LastUpdated = s.stamp(p.CreatedAt)
	s.bump()
	s.logActivity(ctx, activity.TypeStatusChanged, p.ID, fmt.Sprintf("status %s -> %s", previous, status.ID))

	out := p.Clone()
	return &out, s.persist(ctx)
}

// Get returns a copy of the project with the given id.
func (s *Service) Get(id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID == id {
			out := s.projects[i].Clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

// List returns a copy of the collection in insertion order.
func (s *Service) List() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Stats derives aggregate counts from the current collection.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.projects)
}

// View returns the filtered, ordered projects. The result is reused while
// the collection, filter and sort are unchanged.
func (s *Service) View(f Filter, srt Sort) []Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.views.lookup(s.version, f, srt); ok {
		return cached
	}
	result := ApplyView(s.snapshot(), f, srt)
	s.views.store(s.version, f, srt, result)
	return result
}

// Import combines decoded projects with the collection and persists the result.
func (s *Service) Import(ctx context.Context, projects []Project, mode ImportMode) (ImportResult, error) {
	if mode == "" {
		mode = ImportReplace
	}
	if mode != ImportReplace && mode != ImportMerge {
		err := fmt.Errorf("%w: unknown import mode %q", ErrInvalidInput, mode)
		s.setError(err)
		return ImportResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := ImportResult{Mode: mode, Total: len(projects)}
	seen := make(map[string]bool, len(s.projects)+len(projects))
	next := make([]Project, 0, len(projects))
	if mode == ImportMerge {
		for _, p := range s.projects {
			seen[p.ID] = true
		}
		next = append(next, s.projects...)
	}
	for _, p := range projects {
		if seen[p.ID] {
			result.Skipped++
			continue
		}
		seen[p.ID] = true
		next = append(next, p.Clone())
		result.Imported++
	}

	s.projects = next
	s.bump()
	s.logger.Info("imported projects", "mode", mode, "imported", result.Imported, "skipped", result.Skipped)
	s.logActivity(ctx, activity.TypeCollectionImported, "", fmt.Sprintf("%s import: %d imported, %d skipped", mode, result.Imported, result.Skipped))

	return result, s.persist(ctx)
}

// Version increases on every change to the collection.
func (s *Service) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// LastError returns the message of the most recent failure, or "".
func (s *Service) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError dismisses the last error message.
func (s *Service) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

func (s *Service) indexOf(id string) (int, error) {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i, nil
		}
	}
	err := fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	s.recordError(err)
	return -1, err
}

func (s *Service) snapshot() []Project {
	return cloneProjects(s.projects)
}

// stamp returns the current time, never earlier than createdAt.
func (s *Service) stamp(createdAt time.Time) time.Time {
	now := s.now()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

func (s *Service) bump() {
	s.version++
}

// persist writes the whole collection. Callers hold s.mu.
func (s *Service) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.projects); err != nil {
		err = fmt.Errorf("%w: %w", ErrSave, err)
		s.recordError(err)
		return err
	}
	return nil
}

func (s *Service) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordError(err)
}

// recordError keeps the message for LastError. Callers hold s.mu.
func (s *Service) recordError(err error) {
	s.lastErr = err.Error()
	level := slog.LevelWarn
	if errors.Is(err, ErrSave) || errors.Is(err, ErrLoad) {
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, "project operation failed", "error", err)
}

func (s *Service) logActivity(ctx context.Context, typ activity.ActivityType, projectID, summary string) {
	if s.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{
		ActivityType: typ,
		Summary:      summary,
		CreatedAt:    s.now(),
	}
	if projectID != "" {
		entry.ProjectID = &projectID
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "type", typ, "error", err)
	}
}

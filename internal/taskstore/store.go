// Package taskstore owns the date-keyed task collection and the habit
// propagation engine that feeds future dates from completed habits.
package taskstore

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/dateutil"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/seed"
	"github.com/starford/dagaz/internal/storage"
)

// EventCallback observes committed mutations. kind is one of
// "task.added", "task.updated", "task.toggled", "task.deleted",
// "task.propagated".
type EventCallback func(kind, date string, task models.Task)

// Store coordinates the in-memory date-keyed collection, the
// persistence provider, and the seed fallback.
//
// Mutations are serialized by a mutex; habit propagation runs as an
// ordered follow-up after the triggering toggle has committed and
// persisted, never nested inside it.
type Store struct {
	mu       sync.Mutex
	provider storage.Provider
	seed     seed.Source
	now      func() time.Time
	newID    func() string
	notify   EventCallback

	days    map[string][]models.Task
	current string

	queueMu sync.Mutex
	queue   []propagation
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides task identifier assignment.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithEvents registers a mutation observer.
func WithEvents(cb EventCallback) Option {
	return func(s *Store) { s.notify = cb }
}

// New creates a Store. The current-date cursor starts at today.
func New(provider storage.Provider, src seed.Source, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		seed:     src,
		now:      time.Now,
		newID:    uuid.NewString,
		days:     make(map[string][]models.Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = dateutil.Key(s.now())
	return s
}

// loadLocked returns the task list for a date, reading through to the
// provider and falling back to seed data. Persistence failures degrade
// to the seed or an empty list and are logged, never propagated.
func (s *Store) loadLocked(date string) []models.Task {
	if tasks, ok := s.days[date]; ok {
		return tasks
	}
	tasks, err := s.provider.Load(date)
	if err != nil {
		slog.Warn("taskstore: load failed, falling back to seed",
			slog.String("date", date),
			slog.String("error", err.Error()))
		tasks = nil
	}
	if tasks == nil {
		tasks = s.seed.TasksFor(date)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	s.days[date] = tasks
	return tasks
}

// persistLocked writes a date's list through the provider. Write
// failures are logged and swallowed; the in-memory state stays
// authoritative for the session.
func (s *Store) persistLocked(date string) {
	if err := s.provider.Save(date, s.days[date]); err != nil {
		slog.Warn("taskstore: save failed",
			slog.String("date", date),
			slog.String("error", err.Error()))
	}
}

func (s *Store) emit(kind, date string, task models.Task) {
	if s.notify != nil {
		s.notify(kind, date, task)
	}
}

// Tasks returns the task list for a date, empty if none. Never fails.
func (s *Store) Tasks(date string) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.loadLocked(date)
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}

// Add validates input, assigns a fresh id with done=false, appends to
// the date's collection and persists it.
func (s *Store) Add(date string, in models.TaskInput) (models.Task, error) {
	if err := in.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}
	in = in.Normalize()

	s.mu.Lock()
	task := models.Task{
		ID:        s.newID(),
		Title:     in.Title,
		Time:      in.Time,
		Category:  in.Category,
		Notes:     in.Notes,
		Done:      false,
		IsHabit:   in.IsHabit,
		Frequency: in.Frequency,
	}
	s.days[date] = append(s.loadLocked(date), task)
	s.persistLocked(date)
	s.mu.Unlock()

	s.emit("task.added", date, task)
	return task, nil
}

// Toggle flips a task's done flag. A false→true transition on a habit
// queues propagation, evaluated after the toggle has committed.
// Unknown ids are a silent no-op (found=false).
func (s *Store) Toggle(date, id string) (models.Task, bool) {
	s.mu.Lock()
	tasks := s.loadLocked(date)
	var toggled models.Task
	found := false
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Done = !tasks[i].Done
			toggled = tasks[i]
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return models.Task{}, false
	}
	s.persistLocked(date)
	s.mu.Unlock()

	s.emit("task.toggled", date, toggled)

	if toggled.Done && toggled.IsHabit {
		s.queueMu.Lock()
		s.queue = append(s.queue, propagation{date: date, task: toggled})
		s.queueMu.Unlock()
		s.drainQueue()
	}
	return toggled, true
}

// drainQueue processes queued propagations in order.
func (s *Store) drainQueue() {
	for {
		s.queueMu.Lock()
		if len(s.queue) == 0 {
			s.queueMu.Unlock()
			return
		}
		p := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()
		s.propagate(p)
	}
}

// Update replaces the fields of the task matching id, preserving its
// identifier and done flag. Unknown ids are a silent no-op.
func (s *Store) Update(date, id string, in models.TaskInput) (models.Task, bool, error) {
	if err := in.Validate(); err != nil {
		return models.Task{}, false, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}
	in = in.Normalize()

	s.mu.Lock()
	tasks := s.loadLocked(date)
	var updated models.Task
	found := false
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Title = in.Title
			tasks[i].Time = in.Time
			tasks[i].Category = in.Category
			tasks[i].Notes = in.Notes
			tasks[i].IsHabit = in.IsHabit
			tasks[i].Frequency = in.Frequency
			updated = tasks[i]
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return models.Task{}, false, nil
	}
	s.persistLocked(date)
	s.mu.Unlock()

	s.emit("task.updated", date, updated)
	return updated, true, nil
}

// Delete removes the task matching id. Unknown ids are a silent no-op.
func (s *Store) Delete(date, id string) bool {
	s.mu.Lock()
	tasks := s.loadLocked(date)
	var deleted models.Task
	found := false
	for i := range tasks {
		if tasks[i].ID == id {
			deleted = tasks[i]
			s.days[date] = append(tasks[:i:i], tasks[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return false
	}
	s.persistLocked(date)
	s.mu.Unlock()

	s.emit("task.deleted", date, deleted)
	return true
}

// HabitPatch is a partial update applied to habit instances. Nil
// fields are left unchanged.
type HabitPatch struct {
	Title    *string          `json:"title,omitempty"`
	Time     *string          `json:"time,omitempty"`
	Category *models.Category `json:"category,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

func (p HabitPatch) apply(t models.Task) models.Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t
}

// UpdateFutureHabits applies patch to every instance of the habit
// identified by (date, id) — same title, habit flag set — on date and
// all later stored dates. Instance ids and done flags are preserved.
// Returns the number of instances touched.
func (s *Store) UpdateFutureHabits(date, id string, patch HabitPatch) (int, error) {
	s.mu.Lock()
	src, ok := s.findLocked(date, id)
	if !ok || !src.IsHabit {
		s.mu.Unlock()
		return 0, nil
	}

	touched := 0
	var changed []models.Task
	var changedDates []string
	for _, d := range s.knownDatesLocked() {
		if d < date {
			continue
		}
		tasks := s.loadLocked(d)
		dirty := false
		for i := range tasks {
			if tasks[i].IsHabit && tasks[i].Title == src.Title {
				tasks[i] = patch.apply(tasks[i])
				changed = append(changed, tasks[i])
				changedDates = append(changedDates, d)
				dirty = true
				touched++
			}
		}
		if dirty {
			s.persistLocked(d)
		}
	}
	s.mu.Unlock()

	for i, t := range changed {
		s.emit("task.updated", changedDates[i], t)
	}
	return touched, nil
}

// DeleteFutureHabits removes every instance of the habit identified by
// (date, id) on date and all later stored dates. Returns the number of
// instances removed.
func (s *Store) DeleteFutureHabits(date, id string) (int, error) {
	s.mu.Lock()
	src, ok := s.findLocked(date, id)
	if !ok || !src.IsHabit {
		s.mu.Unlock()
		return 0, nil
	}

	removed := 0
	var gone []models.Task
	var goneDates []string
	for _, d := range s.knownDatesLocked() {
		if d < date {
			continue
		}
		tasks := s.loadLocked(d)
		kept := tasks[:0:0]
		for _, t := range tasks {
			if t.IsHabit && t.Title == src.Title {
				gone = append(gone, t)
				goneDates = append(goneDates, d)
				removed++
				continue
			}
			kept = append(kept, t)
		}
		if len(kept) != len(tasks) {
			s.days[d] = kept
			s.persistLocked(d)
		}
	}
	s.mu.Unlock()

	for i, t := range gone {
		s.emit("task.deleted", goneDates[i], t)
	}
	return removed, nil
}

// findLocked locates a task by id within a date's list.
func (s *Store) findLocked(date, id string) (models.Task, bool) {
	for _, t := range s.loadLocked(date) {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// knownDatesLocked merges persisted dates with in-session ones.
func (s *Store) knownDatesLocked() []string {
	set := make(map[string]struct{}, len(s.days))
	for d := range s.days {
		set[d] = struct{}{}
	}
	stored, err := s.provider.Dates()
	if err != nil {
		slog.Warn("taskstore: listing stored dates failed", slog.String("error", err.Error()))
	}
	for _, d := range stored {
		set[d] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	return out
}

// All returns a snapshot of the full date-keyed collection, merging
// every persisted date with the session's in-memory state. Input for
// the statistics engine.
func (s *Store) All() map[string][]models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]models.Task)
	for _, d := range s.knownDatesLocked() {
		tasks := s.loadLocked(d)
		cp := make([]models.Task, len(tasks))
		copy(cp, tasks)
		out[d] = cp
	}
	return out
}

// Current returns the current-date cursor.
func (s *Store) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Navigate moves the current-date cursor by offset days and preloads
// the new date and its neighbours, mirroring how the day view pages.
func (s *Store) Navigate(offset int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = dateutil.AddDays(s.current, offset)
	s.loadLocked(s.current)
	s.loadLocked(dateutil.AddDays(s.current, 1))
	s.loadLocked(dateutil.AddDays(s.current, -1))
	return s.current
}

// Invalidate drops a date's in-memory state so the next read goes back
// to the provider. Used by the watcher when a day is edited externally.
func (s *Store) Invalidate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.days, date)
}

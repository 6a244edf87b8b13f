package taskstore

import (
	"github.com/starford/dagaz/internal/dateutil"
	"github.com/starford/dagaz/internal/models"
)

// NextOccurrence returns the date key of the next instance of a habit
// completed on date. Weekday habits completed on or after Friday roll
// over to the next Monday; weekly habits recur seven days out.
func NextOccurrence(date string, f models.Frequency) string {
	switch f {
	case models.FrequencyWeekdays:
		dow := dateutil.DayOfWeek(date)
		if dow < 4 {
			return dateutil.AddDays(date, 1)
		}
		return dateutil.AddDays(date, 7-dow) // Fri/Sat/Sun → next Monday
	case models.FrequencyWeekly:
		return dateutil.AddDays(date, 7)
	default:
		return dateutil.AddDays(date, 1)
	}
}

// AppliesOn reports whether a habit with the given frequency is due on
// date. Completing a habit on a day it is not due must not materialize
// a next instance.
func AppliesOn(f models.Frequency, date string) bool {
	dow := dateutil.DayOfWeek(date)
	switch f {
	case models.FrequencyWeekdays:
		return dow <= 4
	case models.FrequencyWeekly:
		return dow == 0
	default:
		return true
	}
}

// propagation is a queued follow-up created when a habit transitions
// to done. It is evaluated only after the toggle itself has committed.
type propagation struct {
	date string
	task models.Task
}

// propagate materializes the next occurrence of a completed habit.
// Idempotent: an existing pending instance with the same title on the
// target date suppresses creation.
func (s *Store) propagate(p propagation) {
	if !AppliesOn(p.task.Frequency, p.date) {
		return
	}
	next := NextOccurrence(p.date, p.task.Frequency)

	s.mu.Lock()
	existing := s.loadLocked(next)
	for _, t := range existing {
		if t.Title == p.task.Title && t.IsHabit && !t.Done {
			s.mu.Unlock()
			return
		}
	}
	created := p.task
	created.ID = s.newID()
	created.Done = false
	s.days[next] = append(existing, created)
	s.persistLocked(next)
	s.mu.Unlock()

	s.emit("task.propagated", next, created)
}

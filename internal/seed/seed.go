// Package seed supplies fallback demo tasks for dates that have no
// stored value yet, giving a first run something to show.
package seed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/dagaz/internal/dateutil"
	"github.com/starford/dagaz/internal/models"
)

// Source supplies a default task list for a date. An empty slice means
// no seed data for that date.
type Source interface {
	TasksFor(date string) []models.Task
}

// Static is a Source backed by a fixed date-keyed map.
type Static struct {
	byDate map[string][]models.Task
}

// TasksFor returns a copy of the seed tasks for a date.
func (s *Static) TasksFor(date string) []models.Task {
	tasks, ok := s.byDate[date]
	if !ok {
		return nil
	}
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}

// None is a Source with no data.
type None struct{}

// TasksFor always returns nil.
func (None) TasksFor(string) []models.Task { return nil }

// day is one entry in a seed file: a day offset relative to "now" and
// its task list. Offsets keep the demo anchored around the current
// date no matter when the app first runs.
type day struct {
	Offset int    `yaml:"offset"`
	Tasks  []task `yaml:"tasks"`
}

type task struct {
	Title     string `yaml:"title"`
	Time      string `yaml:"time"`
	Category  string `yaml:"category"`
	Notes     string `yaml:"notes"`
	Done      bool   `yaml:"done"`
	IsHabit   bool   `yaml:"isHabit"`
	Frequency string `yaml:"habitFrequency"`
}

// Load reads a YAML seed file and materializes it relative to now.
func Load(path string, now time.Time) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	var days []day
	if err := yaml.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", path, err)
	}
	return materialize(days, now), nil
}

// Default returns the built-in demo dataset materialized relative to
// now: a finished day yesterday, a mixed day today, and a planned day
// tomorrow with a couple of habits in flight.
func Default(now time.Time) *Static {
	return materialize([]day{
		{Offset: -1, Tasks: []task{
			{Title: "Code marathon", Time: "10:00-18:00", Category: "work", Done: true, Notes: "Finish the refactor"},
		}},
		{Offset: 0, Tasks: []task{
			{Title: "Design interface", Time: "09:00-11:00", Category: "work", Done: true, Notes: "Material 3 guidelines"},
			{Title: "Daily meeting", Time: "11:00-12:00", Category: "work", Done: true, Notes: "Review team metrics"},
			{Title: "Lunch", Time: "13:00-14:00", Category: "personal", Done: true},
			{Title: "Implement components", Time: "15:00-17:00", Category: "work", Notes: "Card, Button, Modal"},
			{Title: "Gym", Time: "18:00-19:00", Category: "sport", IsHabit: true, Frequency: "daily"},
			{Title: "Meditation", Time: "07:00-08:00", Category: "personal", Notes: "Headspace session", IsHabit: true, Frequency: "weekdays"},
		}},
		{Offset: 1, Tasks: []task{
			{Title: "Fix deck roof", Time: "09:30-11:00", Category: "personal"},
			{Title: "Final project writeup", Time: "11:00-13:30", Category: "study"},
			{Title: "Walk", Time: "17:00-17:30", Category: "sport", IsHabit: true, Frequency: "daily"},
		}},
	}, now)
}

func materialize(days []day, now time.Time) *Static {
	byDate := make(map[string][]models.Task, len(days))
	n := 0
	for _, d := range days {
		date := dateutil.Key(now.AddDate(0, 0, d.Offset))
		tasks := make([]models.Task, 0, len(d.Tasks))
		for _, t := range d.Tasks {
			n++
			tasks = append(tasks, models.Task{
				ID:        fmt.Sprintf("seed-%d", n),
				Title:     t.Title,
				Time:      t.Time,
				Category:  models.Category(t.Category),
				Notes:     t.Notes,
				Done:      t.Done,
				IsHabit:   t.IsHabit,
				Frequency: models.Frequency(t.Frequency),
			})
		}
		byDate[date] = tasks
	}
	return &Static{byDate: byDate}
}

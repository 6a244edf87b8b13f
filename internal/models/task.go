// Package models defines the domain types for Dagaz.
package models

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Category is the closed set of task categories.
type Category string

// Task categories.
const (
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategorySport    Category = "sport"
	CategoryPersonal Category = "personal"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryStudy, CategorySport, CategoryPersonal}
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryStudy, CategorySport, CategoryPersonal:
		return true
	}
	return false
}

// Label returns the display name for the category.
func (c Category) Label() string {
	switch c {
	case CategoryWork:
		return "Work"
	case CategoryStudy:
		return "Study"
	case CategorySport:
		return "Sport"
	case CategoryPersonal:
		return "Personal"
	}
	return string(c)
}

// Color returns the chart color for the category.
func (c Category) Color() string {
	switch c {
	case CategoryWork:
		return "#a8c7fa"
	case CategoryStudy:
		return "#c2e7ff"
	case CategorySport:
		return "#c8e6c9"
	case CategoryPersonal:
		return "#ffe0b2"
	}
	return "#86868b"
}

// Frequency is the recurrence cadence of a habit task.
type Frequency string

// Habit frequencies.
const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencyWeekly   Frequency = "weekly"
)

// Valid reports whether f is one of the enumerated frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekdays, FrequencyWeekly:
		return true
	}
	return false
}

// Task is a single entry in a day's task list.
//
// JSON field names match the persisted record format: a date's list is
// stored as a plain JSON array of these objects.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Time      string    `json:"time,omitempty"` // "HH:MM-HH:MM"
	Category  Category  `json:"category,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Done      bool      `json:"done"`
	IsHabit   bool      `json:"isHabit"`
	Frequency Frequency `json:"habitFrequency,omitempty"`
}

// TaskInput carries the caller-supplied fields of a task. ID and Done
// are assigned by the store.
type TaskInput struct {
	Title     string    `json:"title"`
	Time      string    `json:"time,omitempty"`
	Category  Category  `json:"category,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	IsHabit   bool      `json:"isHabit"`
	Frequency Frequency `json:"habitFrequency,omitempty"`
}

var timeRangeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]-([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validate enforces the task schema before persistence: title 2-100
// trimmed characters, a well-formed time range with start strictly
// before end, an enumerated category when present, and a frequency set
// if and only if the task is a habit.
func (in TaskInput) Validate() error {
	title := strings.TrimSpace(in.Title)
	if err := validation.Validate(title,
		validation.Required.Error("title is required"),
		validation.Length(2, 100).Error("title must be 2-100 characters"),
	); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	if in.Time != "" {
		if !timeRangeRe.MatchString(in.Time) {
			return fmt.Errorf("time: must be HH:MM-HH:MM")
		}
		// Lexical comparison is correct for zero-padded HH:MM values.
		start, end := in.Time[:5], in.Time[6:]
		if start >= end {
			return fmt.Errorf("time: end must be after start")
		}
	}
	if in.Category != "" && !in.Category.Valid() {
		return fmt.Errorf("category: unknown category %q", in.Category)
	}
	if in.IsHabit {
		if !in.Frequency.Valid() {
			return fmt.Errorf("habitFrequency: required for habits, must be daily, weekdays or weekly")
		}
	} else if in.Frequency != "" {
		return fmt.Errorf("habitFrequency: only valid on habit tasks")
	}
	return nil
}

// Normalize returns the input with the title trimmed.
func (in TaskInput) Normalize() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	return in
}

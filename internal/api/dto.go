package api

import (
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/stats"
	"github.com/starford/dagaz/internal/taskstore"
)

// TaskRequest is the request body for creating or replacing a task.
type TaskRequest = models.TaskInput

// FutureHabitRequest is the request body for patching future habit
// instances. Absent fields are left unchanged.
type FutureHabitRequest = taskstore.HabitPatch

// TaskListResponse wraps a single day's task list.
type TaskListResponse struct {
	Date     string        `json:"date" example:"2026-01-14" validate:"required"`
	Tasks    []models.Task `json:"tasks" validate:"required"`
	Checksum string        `json:"checksum" example:"abc123..." validate:"required"`
}

// DayResponse describes the day-view cursor.
type DayResponse struct {
	Date     string        `json:"date" example:"2026-01-14" validate:"required"`
	Pretty   string        `json:"pretty" example:"Wednesday, 14 January" validate:"required"`
	IsToday  bool          `json:"isToday" validate:"required"`
	Tasks    []models.Task `json:"tasks" validate:"required"`
	Checksum string        `json:"checksum" validate:"required"`
}

// NavigateRequest moves the day-view cursor by a relative offset.
type NavigateRequest struct {
	Offset int `json:"offset" example:"1" validate:"required"`
}

// AffectedResponse reports how many task instances a bulk habit
// operation touched.
type AffectedResponse struct {
	Affected int `json:"affected" example:"3" validate:"required"`
}

// WeeklyStatsResponse wraps the weekly completion chart.
type WeeklyStatsResponse struct {
	Days []stats.DayCompletion `json:"days" validate:"required"`
}

// CategoryStatsResponse wraps the category distribution chart.
type CategoryStatsResponse struct {
	Categories []stats.CategoryCount `json:"categories" validate:"required"`
}

// HabitProgressResponse wraps the per-weekday habit progress chart.
type HabitProgressResponse struct {
	Days []stats.DayHabitProgress `json:"days" validate:"required"`
}

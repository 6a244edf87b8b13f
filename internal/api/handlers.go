package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/checksum"
	"github.com/starford/dagaz/internal/dateutil"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/stats"
	"github.com/starford/dagaz/internal/taskstore"
)

// Handler holds API route handlers.
type Handler struct {
	store *taskstore.Store
	now   func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(store *taskstore.Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

// reqDate extracts and validates the {date} URL parameter.
func reqDate(r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	return date, dateutil.Valid(date)
}

// dayChecksum is the version tag of a day's task list, exposed as an
// ETag and matched against If-Match on updates.
func dayChecksum(tasks []models.Task) string {
	raw, err := json.Marshal(tasks)
	if err != nil {
		return ""
	}
	return checksum.Sum(raw)
}

// ListTasks handles GET /api/tasks/{date}.
//
//	@Summary		List the tasks of a single date
//	@Tags			tasks
//	@Produce		json
//	@Param			date	path		string	true	"Date key (YYYY-MM-DD)"
//	@Success		200		{object}	TaskListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{date} [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	date, ok := reqDate(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return
	}
	tasks := h.store.Tasks(date)
	sum := dayChecksum(tasks)
	w.Header().Set("ETag", `"`+sum+`"`)
	writeJSON(w, http.StatusOK, TaskListResponse{Date: date, Tasks: tasks, Checksum: sum})
}

// AddTask handles POST /api/tasks/{date}.
//
//	@Summary		Create a task on a date
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			date	path		string		true	"Date key (YYYY-MM-DD)"
//	@Param			body	body		TaskRequest	true	"Task to create"
//	@Success		201		{object}	models.Task
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{date} [post]
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	date, ok := reqDate(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	task, err := h.store.Add(date, req)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalid) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("add task failed", slog.String("date", date), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// ToggleTask handles POST /api/tasks/{date}/{id}/toggle.
//
//	@Summary		Flip a task's done flag
//	@Tags			tasks
//	@Produce		json
//	@Param			date	path		string	true	"Date key (YYYY-MM-DD)"
//	@Param			id		path		string	true	"Task id"
//	@Success		200		{object}	models.Task
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{date}/{id}/toggle [post]
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	date, ok := reqDate(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return
	}
	task, found := h.store.Toggle(date, chi.URLParam(r, "id"))
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/{date}/{id}.
//
//	@Summary		Replace a task's fields with optimistic concurrency
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			date		path		string		true	"Date key (YYYY-MM-DD)"
//	@Param			id			path		string		true	"Task id"
//	@Param			If-Match	header		string		false	"Day-list checksum for optimistic concurrency"
//	@Param			body		body		TaskRequest	true	"Replacement fields"
//	@Success		200			{object}	models.Task
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{date}/{id} [put]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	date, ok := reqDate(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	if ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`); ifMatch != "" {
		if ifMatch != dayChecksum(h.store.Tasks(date)) {
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
			return
		}
	}

	task, found, err := h.store.Update(date, chi.URLParam(r, "id"), req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{date}/{id}.
//
//	@Summary		Delete a task
//	@Tags			tasks
//	@Param			date	path	string	true	"Date key (YYYY-MM-DD)"
//	@Param			id		path	string	true	"Task id"
//	@Success		204		"Task deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{date}/{id} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	date, ok := reqDate(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return
	}
	if !h.store.Delete(date, chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFutureHabits handles PUT /api/tasks/{date}/{id}/future.
//
//	@Summary		Patch a habit on this date and every later one
//	@Tags			habits
//	@Accept			json
//	@Produce		json
//	@Param			date	path		string				true	"Anchor date (YYYY-MM-DD)"
//	@Param			id		path		string				true	"Habit instance id"
//	@Param			body	body		FutureHabitRequest	true	"Fields to patch"
//	@Success		200		{object}	AffectedResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{date}/{id}/future [put]
func (h *Handler) UpdateFutureHabits(w http.ResponseWriter, r *http.Request) {
	date, ok := reqDate(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req FutureHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	n, err := h.store.UpdateFutureHabits(date, chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("update future habits failed", slog.String("date", date), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, AffectedResponse{Affected: n})
}

// DeleteFutureHabits handles DELETE /api/tasks/{date}/{id}/future.
//
//	@Summary		Remove a habit from this date and every later one
//	@Tags			habits
//	@Produce		json
//	@Param			date	path		string	true	"Anchor date (YYYY-MM-DD)"
//	@Param			id		path		string	true	"Habit instance id"
//	@Success		200		{object}	AffectedResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{date}/{id}/future [delete]
func (h *Handler) DeleteFutureHabits(w http.ResponseWriter, r *http.Request) {
	date, ok := reqDate(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return
	}
	n, err := h.store.DeleteFutureHabits(date, chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("delete future habits failed", slog.String("date", date), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, AffectedResponse{Affected: n})
}

func (h *Handler) dayResponse(date string) DayResponse {
	tasks := h.store.Tasks(date)
	return DayResponse{
		Date:     date,
		Pretty:   dateutil.Pretty(date),
		IsToday:  date == dateutil.Key(h.now()),
		Tasks:    tasks,
		Checksum: dayChecksum(tasks),
	}
}

// CurrentDay handles GET /api/day.
//
//	@Summary		Get the day-view cursor with its tasks
//	@Tags			day
//	@Produce		json
//	@Success		200	{object}	DayResponse
//	@Security		BearerAuth
//	@Router			/day [get]
func (h *Handler) CurrentDay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dayResponse(h.store.Current()))
}

// Navigate handles POST /api/day/navigate.
//
//	@Summary		Move the day-view cursor by a relative offset
//	@Tags			day
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NavigateRequest	true	"Offset in days"
//	@Success		200		{object}	DayResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/day/navigate [post]
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	writeJSON(w, http.StatusOK, h.dayResponse(h.store.Navigate(req.Offset)))
}

// WeeklyStats handles GET /api/stats/weekly.
//
//	@Summary		Completion percentage per day of the current week
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	WeeklyStatsResponse
//	@Security		BearerAuth
//	@Router			/stats/weekly [get]
func (h *Handler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, WeeklyStatsResponse{
		Days: stats.WeeklyCompletion(h.store.All(), h.now()),
	})
}

// CategoryStats handles GET /api/stats/categories.
//
//	@Summary		Task counts per category across all dates
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	CategoryStatsResponse
//	@Security		BearerAuth
//	@Router			/stats/categories [get]
func (h *Handler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoryStatsResponse{
		Categories: stats.CategoryDistribution(h.store.All()),
	})
}

// StreakStats handles GET /api/stats/streaks.
//
//	@Summary		Current and best perfect-day streaks
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	stats.Streaks
//	@Security		BearerAuth
//	@Router			/stats/streaks [get]
func (h *Handler) StreakStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.GeneralStreaks(h.store.All(), h.now()))
}

// HabitStats handles GET /api/stats/habits.
//
//	@Summary		Habit totals, completion rate and streaks
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	stats.HabitStats
//	@Security		BearerAuth
//	@Router			/stats/habits [get]
func (h *Handler) HabitStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.Habits(h.store.All(), h.now()))
}

// HabitProgress handles GET /api/stats/habits/progress.
//
//	@Summary		Per-weekday habit completion chart
//	@Tags			stats
//	@Produce		json
//	@Param			week	query		string	false	"Restrict to the current week"	Enums(current, all)
//	@Success		200		{object}	HabitProgressResponse
//	@Security		BearerAuth
//	@Router			/stats/habits/progress [get]
func (h *Handler) HabitProgress(w http.ResponseWriter, r *http.Request) {
	all := h.store.All()
	var days []stats.DayHabitProgress
	if r.URL.Query().Get("week") == "current" {
		days = stats.CurrentWeekHabitProgress(all, h.now())
	} else {
		days = stats.WeeklyHabitProgress(all)
	}
	writeJSON(w, http.StatusOK, HabitProgressResponse{Days: days})
}

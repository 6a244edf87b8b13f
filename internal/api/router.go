package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/dagaz/internal/taskstore"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store *taskstore.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Per-date task CRUD.
	r.Get("/tasks/{date}", h.ListTasks)
	r.Post("/tasks/{date}", h.AddTask)
	r.Put("/tasks/{date}/{id}", h.UpdateTask)
	r.Delete("/tasks/{date}/{id}", h.DeleteTask)
	r.Post("/tasks/{date}/{id}/toggle", h.ToggleTask)

	// Bulk habit operations over future dates.
	r.Put("/tasks/{date}/{id}/future", h.UpdateFutureHabits)
	r.Delete("/tasks/{date}/{id}/future", h.DeleteFutureHabits)

	// Day-view cursor.
	r.Get("/day", h.CurrentDay)
	r.Post("/day/navigate", h.Navigate)

	// Dashboard statistics.
	r.Get("/stats/weekly", h.WeeklyStats)
	r.Get("/stats/categories", h.CategoryStats)
	r.Get("/stats/streaks", h.StreakStats)
	r.Get("/stats/habits", h.HabitStats)
	r.Get("/stats/habits/progress", h.HabitProgress)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

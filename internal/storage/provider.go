// Package storage defines the per-date task persistence abstraction.
//
// Records are keyed "tasks_<YYYY-MM-DD>" with a JSON array of task
// records as the value, mirroring the layout a browser-local store
// would use. A missing or malformed value reads as absent, never as an
// error.
package storage

import "github.com/starford/dagaz/internal/models"

// KeyPrefix is prepended to date keys to form storage keys.
const KeyPrefix = "tasks_"

// Provider is the interface for per-date task persistence.
type Provider interface {
	// Load returns the stored tasks for a date key, or (nil, nil) when
	// nothing is stored or the stored value cannot be decoded.
	Load(date string) ([]models.Task, error)
	// Save overwrites the full task list for a date key.
	Save(date string, tasks []models.Task) error
	// Dates returns every date key that has a stored value, unsorted.
	Dates() ([]string, error)
	// Close releases any underlying resources.
	Close() error
}

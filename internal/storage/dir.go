package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/dagaz/internal/dateutil"
	"github.com/starford/dagaz/internal/models"
)

// Dir implements Provider with one JSON file per date under a data
// directory: tasks_<date>.json. Files are human-readable and can be
// edited externally; pair with Watch to pick such edits up live.
type Dir struct {
	root string
}

// NewDir creates a Dir provider rooted at the given directory.
// The directory must already exist.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute data directory path.
func (d *Dir) Root() string {
	return d.root
}

// path maps a date key to its file. Date keys are validated so they can
// never traverse outside the root.
func (d *Dir) path(date string) (string, error) {
	if !dateutil.Valid(date) {
		return "", fmt.Errorf("storage: invalid date key %q", date)
	}
	return filepath.Join(d.root, KeyPrefix+date+".json"), nil
}

// Load returns the stored tasks for a date, or (nil, nil) when the file
// is absent or undecodable.
func (d *Dir) Load(date string) ([]models.Task, error) {
	p, err := d.path(date)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", date, err)
	}
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		// Corrupt payload reads as absent.
		return nil, nil
	}
	return tasks, nil
}

// Save atomically writes the full task list: tmp file, fsync, rename.
func (d *Dir) Save(date string, tasks []models.Task) error {
	p, err := d.path(date)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", date, err)
	}

	tmp, err := os.CreateTemp(d.root, ".dagaz-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Dates returns the date key of every stored file.
func (d *Dir) Dates() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if date, ok := DateFromFilename(e.Name()); ok {
			out = append(out, date)
		}
	}
	return out, nil
}

// Close is a no-op for the directory backend.
func (d *Dir) Close() error {
	return nil
}

// DateFromFilename extracts the date key from a tasks_<date>.json file
// name. ok is false for anything else (temp files, foreign files).
func DateFromFilename(name string) (string, bool) {
	if !strings.HasPrefix(name, KeyPrefix) || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	date := strings.TrimSuffix(strings.TrimPrefix(name, KeyPrefix), ".json")
	if !dateutil.Valid(date) {
		return "", false
	}
	return date, true
}

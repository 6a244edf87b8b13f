package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/dateutil"
	"github.com/starford/dagaz/internal/models"
)

var now = time.Date(2026, 1, 14, 12, 0, 0, 0, time.Local)

func TestDefault_AnchoredAroundNow(t *testing.T) {
	s := Default(now)

	today := s.TasksFor("2026-01-14")
	if len(today) != 6 {
		t.Fatalf("today: len = %d, want 6", len(today))
	}
	yesterday := s.TasksFor("2026-01-13")
	if len(yesterday) != 1 || !yesterday[0].Done {
		t.Errorf("yesterday: %+v", yesterday)
	}
	tomorrow := s.TasksFor("2026-01-15")
	if len(tomorrow) != 3 {
		t.Errorf("tomorrow: len = %d, want 3", len(tomorrow))
	}
	if s.TasksFor("2026-02-01") != nil {
		t.Error("unseeded date should yield nil")
	}
}

func TestDefault_UniqueIDs(t *testing.T) {
	s := Default(now)
	seen := map[string]bool{}
	for _, date := range []string{"2026-01-13", "2026-01-14", "2026-01-15"} {
		for _, task := range s.TasksFor(date) {
			if task.ID == "" || seen[task.ID] {
				t.Errorf("duplicate or empty id %q on %s", task.ID, date)
			}
			seen[task.ID] = true
		}
	}
}

func TestTasksFor_ReturnsCopy(t *testing.T) {
	s := Default(now)
	a := s.TasksFor("2026-01-14")
	a[0].Title = "mutated"
	b := s.TasksFor("2026-01-14")
	if b[0].Title == "mutated" {
		t.Error("TasksFor must return an independent copy")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `
- offset: 0
  tasks:
    - title: Read a chapter
      time: "21:00-21:30"
      category: study
      isHabit: true
      habitFrequency: daily
- offset: 2
  tasks:
    - title: Grocery shopping
      category: personal
      done: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path, now)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	today := s.TasksFor(dateutil.Key(now))
	if len(today) != 1 {
		t.Fatalf("today: len = %d, want 1", len(today))
	}
	if !today[0].IsHabit || today[0].Frequency != models.FrequencyDaily {
		t.Errorf("habit fields lost: %+v", today[0])
	}

	later := s.TasksFor("2026-01-16")
	if len(later) != 1 || !later[0].Done {
		t.Errorf("offset 2 day: %+v", later)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), now); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("{{nope"), 0o644)
	if _, err := Load(path, now); err == nil {
		t.Error("expected error for malformed file")
	}
}

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/dagaz/internal/models"
)

func tempSQLite(t *testing.T) *SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "dagaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func tempDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return d
}

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: "a", Title: "Design review", Time: "09:00-10:00", Category: models.CategoryWork, Done: true},
		{ID: "b", Title: "Run", Category: models.CategorySport, IsHabit: true, Frequency: models.FrequencyDaily},
	}
}

func providers(t *testing.T) map[string]Provider {
	return map[string]Provider{
		"sqlite": tempSQLite(t),
		"dir":    tempDir(t),
	}
}

func TestSaveAndLoad(t *testing.T) {
	for name, p := range providers(t) {
		want := sampleTasks()
		if err := p.Save("2026-01-12", want); err != nil {
			t.Fatalf("%s: Save: %v", name, err)
		}
		got, err := p.Load("2026-01-12")
		if err != nil {
			t.Fatalf("%s: Load: %v", name, err)
		}
		if len(got) != len(want) {
			t.Fatalf("%s: len = %d, want %d", name, len(got), len(want))
		}
		if got[0] != want[0] || got[1] != want[1] {
			t.Errorf("%s: round trip mismatch: %+v", name, got)
		}
	}
}

func TestLoadAbsentDate(t *testing.T) {
	for name, p := range providers(t) {
		got, err := p.Load("2026-06-01")
		if err != nil {
			t.Fatalf("%s: Load absent: %v", name, err)
		}
		if got != nil {
			t.Errorf("%s: absent date should load as nil, got %+v", name, got)
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	for name, p := range providers(t) {
		_ = p.Save("2026-01-12", sampleTasks())
		if err := p.Save("2026-01-12", nil); err != nil {
			t.Fatalf("%s: Save nil: %v", name, err)
		}
		got, err := p.Load("2026-01-12")
		if err != nil {
			t.Fatalf("%s: Load: %v", name, err)
		}
		if len(got) != 0 {
			t.Errorf("%s: expected empty list after overwrite, got %+v", name, got)
		}
	}
}

func TestDates(t *testing.T) {
	for name, p := range providers(t) {
		_ = p.Save("2026-01-12", sampleTasks())
		_ = p.Save("2026-01-13", nil)
		dates, err := p.Dates()
		if err != nil {
			t.Fatalf("%s: Dates: %v", name, err)
		}
		if len(dates) != 2 {
			t.Errorf("%s: len(dates) = %d, want 2", name, len(dates))
		}
		seen := map[string]bool{}
		for _, d := range dates {
			seen[d] = true
		}
		if !seen["2026-01-12"] || !seen["2026-01-13"] {
			t.Errorf("%s: dates = %v", name, dates)
		}
	}
}

func TestDirMalformedPayloadReadsAsAbsent(t *testing.T) {
	d := tempDir(t)
	p := filepath.Join(d.Root(), KeyPrefix+"2026-01-12.json")
	if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := d.Load("2026-01-12")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("malformed payload should read as absent, got %+v", got)
	}
}

func TestSQLiteMalformedPayloadReadsAsAbsent(t *testing.T) {
	s := tempSQLite(t)
	_, err := s.conn.Exec(`INSERT INTO days (key, value) VALUES (?, ?)`, KeyPrefix+"2026-01-12", "][")
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Load("2026-01-12")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("malformed payload should read as absent, got %+v", got)
	}
}

func TestDirRejectsInvalidDateKey(t *testing.T) {
	d := tempDir(t)
	for _, bad := range []string{"", "../escape", "2026-1-1", "2026-01-12/../x"} {
		if err := d.Save(bad, nil); err == nil {
			t.Errorf("Save(%q) should fail", bad)
		}
		if _, err := d.Load(bad); err == nil {
			t.Errorf("Load(%q) should fail", bad)
		}
	}
}

func TestDirAtomicWriteNoTempLeftover(t *testing.T) {
	d := tempDir(t)
	_ = d.Save("2026-01-12", sampleTasks())
	_ = d.Save("2026-01-12", sampleTasks())

	matches, _ := filepath.Glob(filepath.Join(d.Root(), ".dagaz-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestDateFromFilename(t *testing.T) {
	cases := []struct {
		name string
		date string
		ok   bool
	}{
		{"tasks_2026-01-12.json", "2026-01-12", true},
		{"tasks_2026-01-12.txt", "", false},
		{"notes_2026-01-12.json", "", false},
		{"tasks_garbage.json", "", false},
		{".dagaz-tmp-123", "", false},
	}
	for _, c := range cases {
		date, ok := DateFromFilename(c.name)
		if ok != c.ok || date != c.date {
			t.Errorf("DateFromFilename(%q) = (%q, %v), want (%q, %v)", c.name, date, ok, c.date, c.ok)
		}
	}
}

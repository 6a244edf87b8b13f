package dateutil

import (
	"testing"
	"time"
)

func TestAddDays_MonthRollover(t *testing.T) {
	cases := []struct {
		key  string
		n    int
		want string
	}{
		{"2026-01-31", 1, "2026-02-01"},
		{"2026-12-31", 1, "2027-01-01"},
		{"2026-03-01", -1, "2026-02-28"},
		{"2028-03-01", -1, "2028-02-29"}, // leap year
		{"2026-01-12", 7, "2026-01-19"},
		{"2026-01-12", 0, "2026-01-12"},
	}
	for _, c := range cases {
		if got := AddDays(c.key, c.n); got != c.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", c.key, c.n, got, c.want)
		}
	}
}

func TestAddDays_InvalidKeyUnchanged(t *testing.T) {
	if got := AddDays("not-a-date", 3); got != "not-a-date" {
		t.Errorf("got %q", got)
	}
}

func TestDayOfWeek_MondayIndexed(t *testing.T) {
	// 2026-01-12 is a Monday, 2026-01-18 a Sunday.
	cases := []struct {
		key  string
		want int
	}{
		{"2026-01-12", 0},
		{"2026-01-13", 1},
		{"2026-01-16", 4},
		{"2026-01-17", 5},
		{"2026-01-18", 6},
	}
	for _, c := range cases {
		if got := DayOfWeek(c.key); got != c.want {
			t.Errorf("DayOfWeek(%q) = %d, want %d", c.key, got, c.want)
		}
	}
}

func TestIsWeekend(t *testing.T) {
	if IsWeekend("2026-01-16") {
		t.Error("Friday should not be a weekend")
	}
	if !IsWeekend("2026-01-17") || !IsWeekend("2026-01-18") {
		t.Error("Saturday and Sunday should be weekends")
	}
}

func TestStartOfWeek(t *testing.T) {
	wed, _ := Parse("2026-01-14")
	if got := Key(StartOfWeek(wed)); got != "2026-01-12" {
		t.Errorf("StartOfWeek(Wed) = %q, want 2026-01-12", got)
	}
	mon, _ := Parse("2026-01-12")
	if got := Key(StartOfWeek(mon)); got != "2026-01-12" {
		t.Errorf("StartOfWeek(Mon) = %q, want 2026-01-12", got)
	}
	sun, _ := Parse("2026-01-18")
	if got := Key(StartOfWeek(sun)); got != "2026-01-12" {
		t.Errorf("StartOfWeek(Sun) = %q, want 2026-01-12", got)
	}
}

func TestKeyParseRoundTrip(t *testing.T) {
	orig := "2026-07-04"
	parsed, err := Parse(orig)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if Key(parsed) != orig {
		t.Errorf("round trip = %q", Key(parsed))
	}
	if parsed.Hour() != 0 || parsed.Location() != time.Local {
		t.Error("parsed key should be local midnight")
	}
}

func TestValid(t *testing.T) {
	if !Valid("2026-01-01") {
		t.Error("valid key rejected")
	}
	for _, bad := range []string{"", "2026-1-1", "2026-13-01", "01-01-2026", "2026-01-32"} {
		if Valid(bad) {
			t.Errorf("invalid key %q accepted", bad)
		}
	}
}

func TestPretty(t *testing.T) {
	if got := Pretty("2026-01-12"); got != "Monday, 12 January" {
		t.Errorf("Pretty = %q", got)
	}
	if got := Pretty("garbage"); got != "" {
		t.Errorf("Pretty(garbage) = %q", got)
	}
}

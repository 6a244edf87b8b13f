// Package stats derives completion rates, category distributions and
// streak metrics from the date-keyed task collection.
//
// All functions are pure: they never mutate their input, and a nil or
// empty collection yields zeroed results. "now" is always passed in
// explicitly so week and streak anchoring is deterministic.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/starford/dagaz/internal/dateutil"
	"github.com/starford/dagaz/internal/models"
)

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayCompletion is one weekday slot of the weekly completion chart.
type DayCompletion struct {
	Day        string `json:"day"`
	Completion int    `json:"completion"`
}

// WeeklyCompletion returns the completion percentage for each day of
// the Monday-start week containing now. Days without tasks score 0.
func WeeklyCompletion(all map[string][]models.Task, now time.Time) []DayCompletion {
	monday := dateutil.StartOfWeek(now)
	out := make([]DayCompletion, 7)
	for i := 0; i < 7; i++ {
		date := dateutil.Key(monday.AddDate(0, 0, i))
		tasks := all[date]
		done := 0
		for _, t := range tasks {
			if t.Done {
				done++
			}
		}
		out[i] = DayCompletion{Day: dayNames[i], Completion: percent(done, len(tasks))}
	}
	return out
}

// CategoryCount is one slice of the category distribution chart.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// CategoryDistribution counts all tasks by category across every
// loaded date. Tasks without a category are excluded.
func CategoryDistribution(all map[string][]models.Task) []CategoryCount {
	counts := make(map[models.Category]int)
	for _, tasks := range all {
		for _, t := range tasks {
			if t.Category == "" {
				continue
			}
			counts[t.Category]++
		}
	}
	out := []CategoryCount{}
	for _, c := range models.Categories() {
		if counts[c] > 0 {
			out = append(out, CategoryCount{Name: c.Label(), Value: counts[c], Color: c.Color()})
		}
	}
	return out
}

// Streaks holds the general (all-task) streak pair.
type Streaks struct {
	Current int `json:"currentStreak"`
	Best    int `json:"bestStreak"`
}

// perfectDay reports whether tasks is non-empty with every entry done.
func perfectDay(tasks []models.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !t.Done {
			return false
		}
	}
	return true
}

// GeneralStreaks computes the current and best perfect-day streaks.
// The current streak is anchored at today, or yesterday when today is
// not yet perfect; otherwise it is 0. The best streak is the longest
// run of consecutive perfect calendar days anywhere in history.
func GeneralStreaks(all map[string][]models.Task, now time.Time) Streaks {
	perfect := make(map[string]bool, len(all))
	for date, tasks := range all {
		if perfectDay(tasks) {
			perfect[date] = true
		}
	}

	best := 0
	dates := make([]string, 0, len(perfect))
	for d := range perfect {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	run := 0
	prev := ""
	for _, d := range dates {
		if prev != "" && dateutil.AddDays(prev, 1) == d {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = d
	}

	today := dateutil.Key(now)
	anchor := ""
	switch {
	case perfect[today]:
		anchor = today
	case perfect[dateutil.AddDays(today, -1)]:
		anchor = dateutil.AddDays(today, -1)
	}
	current := 0
	for d := anchor; d != "" && perfect[d]; d = dateutil.AddDays(d, -1) {
		current++
	}

	return Streaks{Current: current, Best: best}
}

// HabitStats aggregates every task flagged as a habit.
type HabitStats struct {
	TotalHabits        int `json:"totalHabits"`
	CompletedHabits    int `json:"completedHabits"`
	CompletionRate     int `json:"habitCompletionRate"`
	DailyHabits        int `json:"dailyHabits"`
	WeekdayHabits      int `json:"weekdayHabits"`
	WeeklyHabits       int `json:"weeklyHabits"`
	HabitStreak        int `json:"habitStreak"`
	CurrentHabitStreak int `json:"currentHabitStreak"`
}

// Habits computes totals, the completion rate, per-frequency buckets
// and both habit streaks.
func Habits(all map[string][]models.Task, now time.Time) HabitStats {
	var s HabitStats
	for _, tasks := range all {
		for _, t := range tasks {
			if !t.IsHabit {
				continue
			}
			s.TotalHabits++
			if t.Done {
				s.CompletedHabits++
			}
			switch t.Frequency {
			case models.FrequencyDaily:
				s.DailyHabits++
			case models.FrequencyWeekdays:
				s.WeekdayHabits++
			case models.FrequencyWeekly:
				s.WeeklyHabits++
			}
		}
	}
	s.CompletionRate = percent(s.CompletedHabits, s.TotalHabits)
	s.HabitStreak = HabitStreak(all)
	s.CurrentHabitStreak = CurrentHabitStreak(all, now)
	return s
}

// dayClass is the habit-streak classification of a single date.
type dayClass int

const (
	dayPerfect dayClass = iota // all due habits completed
	daySkip                    // nothing due: no habits, or weekend with weekday-only habits
	dayBroken                  // due habits left incomplete, or an empty weekday
)

// classifyHistorical classifies a date that has stored tasks. Dates
// absent from history never reach this function.
func classifyHistorical(date string, tasks []models.Task) dayClass {
	habits := habitsOf(tasks)
	if len(habits) == 0 {
		return daySkip
	}
	if dateutil.IsWeekend(date) && allWeekdayOnly(habits) {
		return daySkip
	}
	for _, h := range habits {
		if !h.Done {
			return dayBroken
		}
	}
	return dayPerfect
}

// classifyWalk classifies a date during the current-streak walk, where
// absent days matter: a habit-less weekend is skippable, a habit-less
// weekday ends the walk.
func classifyWalk(date string, tasks []models.Task) dayClass {
	habits := habitsOf(tasks)
	if len(habits) == 0 {
		if dateutil.IsWeekend(date) {
			return daySkip
		}
		return dayBroken
	}
	if dateutil.IsWeekend(date) && allWeekdayOnly(habits) {
		return daySkip
	}
	for _, h := range habits {
		if !h.Done {
			return dayBroken
		}
	}
	return dayPerfect
}

func habitsOf(tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.IsHabit {
			out = append(out, t)
		}
	}
	return out
}

func allWeekdayOnly(habits []models.Task) bool {
	for _, h := range habits {
		if h.Frequency != models.FrequencyWeekdays {
			return false
		}
	}
	return true
}

// HabitStreak returns the longest habit streak anywhere in history.
// Dates are scanned in ascending order; a date with incomplete due
// habits breaks the run, while days with nothing due are skipped.
func HabitStreak(all map[string][]models.Task) int {
	dates := make([]string, 0, len(all))
	for d := range all {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	streak, longest := 0, 0
	for _, d := range dates {
		switch classifyHistorical(d, all[d]) {
		case dayPerfect:
			streak++
			if streak > longest {
				longest = streak
			}
		case dayBroken:
			streak = 0
		}
	}
	return longest
}

// CurrentHabitStreak returns the active habit streak: anchored at
// today if today is a qualifying perfect day, else at yesterday, else
// 0; then extended backwards through perfect days and skippable
// weekends until a broken or habit-less weekday is reached.
func CurrentHabitStreak(all map[string][]models.Task, now time.Time) int {
	if len(all) == 0 {
		return 0
	}
	earliest := ""
	for d := range all {
		if earliest == "" || d < earliest {
			earliest = d
		}
	}

	today := dateutil.Key(now)
	anchor := ""
	if classifyWalk(today, all[today]) == dayPerfect {
		anchor = today
	} else if y := dateutil.AddDays(today, -1); classifyWalk(y, all[y]) == dayPerfect {
		anchor = y
	}
	if anchor == "" {
		return 0
	}

	streak := 1
	for d := dateutil.AddDays(anchor, -1); d >= earliest; d = dateutil.AddDays(d, -1) {
		switch classifyWalk(d, all[d]) {
		case dayPerfect:
			streak++
		case daySkip:
			continue
		case dayBroken:
			return streak
		}
	}
	return streak
}

// DayHabitProgress is one weekday slot of the habit progress chart.
type DayHabitProgress struct {
	Day        string `json:"day"`
	Habits     int    `json:"habits"`
	Completed  int    `json:"completed"`
	Completion int    `json:"completion"`
}

// WeeklyHabitProgress aggregates habit counts per weekday slot across
// all of history: every stored Tuesday contributes to the Tue slot.
func WeeklyHabitProgress(all map[string][]models.Task) []DayHabitProgress {
	return habitProgress(all, func(string) bool { return true })
}

// CurrentWeekHabitProgress is WeeklyHabitProgress restricted to the
// Monday-start week containing now.
func CurrentWeekHabitProgress(all map[string][]models.Task, now time.Time) []DayHabitProgress {
	monday := dateutil.Key(dateutil.StartOfWeek(now))
	sunday := dateutil.AddDays(monday, 6)
	return habitProgress(all, func(date string) bool {
		return date >= monday && date <= sunday
	})
}

func habitProgress(all map[string][]models.Task, include func(date string) bool) []DayHabitProgress {
	out := make([]DayHabitProgress, 7)
	for i := range out {
		out[i].Day = dayNames[i]
	}
	for date, tasks := range all {
		if !include(date) {
			continue
		}
		slot := dateutil.DayOfWeek(date)
		for _, t := range tasks {
			if !t.IsHabit {
				continue
			}
			out[slot].Habits++
			if t.Done {
				out[slot].Completed++
			}
		}
	}
	for i := range out {
		out[i].Completion = percent(out[i].Completed, out[i].Habits)
	}
	return out
}

// percent returns round(100 * part / total), or 0 when total is 0.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

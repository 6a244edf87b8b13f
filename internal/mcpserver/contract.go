package mcpserver

// TaskFormatContract describes the canonical task record format that
// LLM consumers should follow when creating tasks.
const TaskFormatContract = `# Dagaz Task Record Contract

Every task stored in Dagaz MUST follow this structure.

## Structure

` + "```" + `json
{
  "id": "b4f9c2e1-...",              // assigned by the server, never supplied
  "title": "Morning run",            // REQUIRED – 2 to 100 characters after trimming
  "time": "07:00-08:00",             // OPTIONAL – HH:MM-HH:MM, 24-hour, start before end
  "category": "sport",               // OPTIONAL – one of: work, study, sport, personal
  "notes": "5km along the river",    // OPTIONAL – free-form text
  "done": false,                     // new tasks always start undone
  "isHabit": true,                   // marks a recurring habit
  "habitFrequency": "daily"          // REQUIRED for habits – daily, weekdays or weekly
}
` + "```" + `

## Rules

1. **Dates are keys.** Tasks live under a date key in YYYY-MM-DD form
   (e.g. ` + "`" + `2026-01-14` + "`" + `). There is no date field on the task itself.
2. **Titles are trimmed** before validation; 2 to 100 characters remain.
3. **Time ranges** use 24-hour HH:MM-HH:MM and the start must be before
   the end on the same day (e.g. ` + "`" + `09:00-10:30` + "`" + `).
4. **Habits propagate on completion.** Completing a habit creates a
   fresh undone instance on its next occurrence:
   - ` + "`" + `daily` + "`" + `: the next calendar day.
   - ` + "`" + `weekdays` + "`" + `: the next weekday; Friday rolls over to Monday, and
     completing on a weekend creates nothing.
   - ` + "`" + `weekly` + "`" + `: the same weekday one week later; only Monday instances
     propagate.
5. **Propagation is idempotent.** If the target date already holds an
   undone habit with the same title, no duplicate is created.
6. **Non-habits never recur.** Leave ` + "`" + `habitFrequency` + "`" + ` unset for one-off
   tasks.

## Example

Create a weekday meditation habit for today, then complete it:

` + "```" + `
add_task    date=2026-01-14 title="Meditation" time="08:00-08:20" category=personal habitFrequency=weekdays
toggle_task date=2026-01-14 id=<returned id>
` + "```" + `

The completed instance stays on 2026-01-14 and a new undone instance
appears on 2026-01-15.
`

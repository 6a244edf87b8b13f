package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/seed"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/taskstore"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	dir, err := storage.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dir.Close() })

	return New(taskstore.New(dir, seed.None{}))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	case "add_task":
		result, err = srv.addTask(ctx, req)
	case "toggle_task":
		result, err = srv.toggleTask(ctx, req)
	case "delete_task":
		result, err = srv.deleteTask(ctx, req)
	case "get_task_contract":
		result, err = srv.getTaskContract(ctx, req)
	case "habit_stats":
		result, err = srv.habitStats(ctx, req)
	case "streaks":
		result, err = srv.streaks(ctx, req)
	case "weekly_completion":
		result, err = srv.weeklyCompletion(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddAndListTasks(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_task", map[string]interface{}{
		"date":     "2026-01-14",
		"title":    "Write report",
		"time":     "09:00-10:00",
		"category": "work",
	})
	if r.IsError {
		t.Fatalf("add failed: %s", resultText(r))
	}
	var created models.Task
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatalf("add result not JSON: %v", err)
	}
	if created.ID == "" || created.Title != "Write report" || created.Done {
		t.Errorf("created = %+v", created)
	}

	r = callTool(t, srv, "list_tasks", map[string]interface{}{"date": "2026-01-14"})
	var tasks []models.Task
	if err := json.Unmarshal([]byte(resultText(r)), &tasks); err != nil {
		t.Fatalf("list result not JSON: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestAddTask_Invalid(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_task", map[string]interface{}{
		"date":  "2026-01-14",
		"title": "x",
	})
	if !r.IsError {
		t.Error("expected error for short title")
	}

	r = callTool(t, srv, "add_task", map[string]interface{}{
		"date":  "not-a-date",
		"title": "Valid title",
	})
	if !r.IsError {
		t.Error("expected error for bad date")
	}
}

func TestToggleTask_PropagatesHabit(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_task", map[string]interface{}{
		"date":           "2026-01-14",
		"title":          "Morning run",
		"habitFrequency": "daily",
	})
	var habit models.Task
	_ = json.Unmarshal([]byte(resultText(r)), &habit)
	if !habit.IsHabit || habit.Frequency != models.FrequencyDaily {
		t.Fatalf("habit = %+v", habit)
	}

	r = callTool(t, srv, "toggle_task", map[string]interface{}{
		"date": "2026-01-14",
		"id":   habit.ID,
	})
	var toggled models.Task
	_ = json.Unmarshal([]byte(resultText(r)), &toggled)
	if !toggled.Done {
		t.Errorf("toggled = %+v", toggled)
	}

	r = callTool(t, srv, "list_tasks", map[string]interface{}{"date": "2026-01-15"})
	var next []models.Task
	_ = json.Unmarshal([]byte(resultText(r)), &next)
	if len(next) != 1 || next[0].Title != "Morning run" || next[0].Done {
		t.Errorf("next day = %+v", next)
	}
}

func TestToggleTask_Missing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "toggle_task", map[string]interface{}{
		"date": "2026-01-14",
		"id":   "ghost",
	})
	if !r.IsError {
		t.Error("expected error for missing task")
	}
}

func TestDeleteTask(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_task", map[string]interface{}{
		"date":  "2026-01-14",
		"title": "Bye now",
	})
	var task models.Task
	_ = json.Unmarshal([]byte(resultText(r)), &task)

	r = callTool(t, srv, "delete_task", map[string]interface{}{
		"date": "2026-01-14",
		"id":   task.ID,
	})
	if r.IsError {
		t.Fatalf("delete failed: %s", resultText(r))
	}

	r = callTool(t, srv, "delete_task", map[string]interface{}{
		"date": "2026-01-14",
		"id":   task.ID,
	})
	if !r.IsError {
		t.Error("expected error for double delete")
	}
}

func TestStatsTools(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_task", map[string]interface{}{
		"date":           "2026-01-14",
		"title":          "Gym session",
		"habitFrequency": "daily",
	})
	var habit models.Task
	_ = json.Unmarshal([]byte(resultText(r)), &habit)

	r = callTool(t, srv, "habit_stats", map[string]interface{}{})
	if !strings.Contains(resultText(r), `"totalHabits": 1`) {
		t.Errorf("habit_stats = %s", resultText(r))
	}

	r = callTool(t, srv, "streaks", map[string]interface{}{})
	if !strings.Contains(resultText(r), "currentStreak") {
		t.Errorf("streaks = %s", resultText(r))
	}

	r = callTool(t, srv, "weekly_completion", map[string]interface{}{})
	var days []map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(r)), &days); err != nil {
		t.Fatalf("weekly_completion not JSON: %v", err)
	}
	if len(days) != 7 {
		t.Errorf("weekly slots = %d, want 7", len(days))
	}
}

func TestTaskContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_task_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "habitFrequency") || !strings.Contains(text, "YYYY-MM-DD") {
		t.Errorf("contract missing core sections: %q", text[:80])
	}
}

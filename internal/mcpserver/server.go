// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Dagaz task tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dagaz/internal/dateutil"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/stats"
	"github.com/starford/dagaz/internal/taskstore"
)

// Server wraps the MCP server with Dagaz tools.
type Server struct {
	mcp   *server.MCPServer
	store *taskstore.Store
	now   func() time.Time
}

// New creates a new MCP server with all Dagaz tools registered.
func New(store *taskstore.Store) *Server {
	s := &Server{store: store, now: time.Now}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List the tasks of a single date."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date key in YYYY-MM-DD form (e.g. 2026-01-14)")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Create a task on a date. Fields MUST follow the canonical task "+
			"record format. Read the contract first via the get_task_contract tool or the "+
			"dagaz://task-format resource. Setting habitFrequency marks the task as a habit "+
			"that propagates to future dates when completed."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date key in YYYY-MM-DD form")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title, 2 to 100 characters")),
		mcp.WithString("time", mcp.Description("Optional time range as HH:MM-HH:MM (e.g. 09:00-10:30)")),
		mcp.WithString("category", mcp.Description("Optional category: work, study, sport or personal")),
		mcp.WithString("notes", mcp.Description("Optional free-form notes")),
		mcp.WithString("habitFrequency", mcp.Description("Optional habit frequency: daily, weekdays or weekly. Presence makes the task a habit.")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("toggle_task",
		mcp.WithDescription("Flip a task's done flag. Completing a habit creates its next "+
			"occurrence on a future date."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date key in YYYY-MM-DD form")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id as returned by list_tasks")),
	), s.toggleTask)

	s.mcp.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task from a date."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date key in YYYY-MM-DD form")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id as returned by list_tasks")),
	), s.deleteTask)

	s.mcp.AddTool(mcp.NewTool("get_task_contract",
		mcp.WithDescription("Returns the canonical Dagaz task record format contract. "+
			"Call this before creating tasks to ensure correct fields."),
	), s.getTaskContract)

	s.mcp.AddTool(mcp.NewTool("habit_stats",
		mcp.WithDescription("Habit totals, completion rate, per-frequency counts and streaks."),
	), s.habitStats)

	s.mcp.AddTool(mcp.NewTool("streaks",
		mcp.WithDescription("Current and best perfect-day streaks across all tasks."),
	), s.streaks)

	s.mcp.AddTool(mcp.NewTool("weekly_completion",
		mcp.WithDescription("Completion percentage per day of the current Monday-start week."),
	), s.weeklyCompletion)

	// Resource: task record contract.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://task-format", "Task Record Contract",
			mcp.WithResourceDescription("Canonical task record format that all tasks must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTaskFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !dateutil.Valid(date) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date: %s", date)), nil
	}
	out, _ := json.MarshalIndent(s.store.Tasks(date), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !dateutil.Valid(date) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date: %s", date)), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := models.TaskInput{Title: title}
	if v, err := req.RequireString("time"); err == nil {
		in.Time = v
	}
	if v, err := req.RequireString("category"); err == nil {
		in.Category = models.Category(v)
	}
	if v, err := req.RequireString("notes"); err == nil {
		in.Notes = v
	}
	if v, err := req.RequireString("habitFrequency"); err == nil && v != "" {
		in.IsHabit = true
		in.Frequency = models.Frequency(v)
	}

	task, err := s.store.Add(date, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(task, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) toggleTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, found := s.store.Toggle(date, id)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s on %s", id, date)), nil
	}
	out, _ := json.MarshalIndent(task, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.store.Delete(date, id) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s on %s", id, date)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s on %s", id, date)), nil
}

func (s *Server) getTaskContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TaskFormatContract), nil
}

func (s *Server) readTaskFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://task-format",
			MIMEType: "text/markdown",
			Text:     TaskFormatContract,
		},
	}, nil
}

func (s *Server) habitStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(stats.Habits(s.store.All(), s.now()), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) streaks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(stats.GeneralStreaks(s.store.All(), s.now()), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) weeklyCompletion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(stats.WeeklyCompletion(s.store.All(), s.now()), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/balkashynov/todo/internal/chatbot"
	"github.com/balkashynov/todo/internal/export"
	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/parser"
	"github.com/balkashynov/todo/internal/progress"
	"github.com/balkashynov/todo/internal/store"
)

// NewServer creates a new MCP server exposing the task store as tools.
func NewServer(s *store.Store, policy progress.Policy, version string) *server.MCPServer {
	srv := server.NewMCPServer("todo", version)

	srv.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the end of the to-do list."),
		mcp.WithString("text", mcp.Description("Task text"), mcp.Required()),
		mcp.WithString("priority", mcp.Description("low, medium or high")),
		mcp.WithString("due_date", mcp.Description("YYYY-MM-DD, dd/mm/yyyy, today, tomorrow, or '3 days'")),
		mcp.WithString("category", mcp.Description("Category label")),
	), addTaskHandler(s))

	srv.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks in display order."),
		mcp.WithString("status", mcp.Description("Filter: all (default), pending or done")),
	), listTasksHandler(s))

	srv.AddTool(mcp.NewTool("edit_task",
		mcp.WithDescription("Change a task's text, priority, due date or category. Omitted fields are kept."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("text", mcp.Description("New text")),
		mcp.WithString("priority", mcp.Description("low, medium, high, or empty to clear")),
		mcp.WithString("due_date", mcp.Description("New due date, or empty to clear")),
		mcp.WithString("category", mcp.Description("New category, or empty to clear")),
	), editTaskHandler(s))

	srv.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task completed, or not completed."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithBoolean("completed", mcp.Description("Completion flag (defaults to true)")),
	), completeTaskHandler(s))

	srv.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. Deleting an unknown id does nothing."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(s))

	srv.AddTool(mcp.NewTool("add_subtask",
		mcp.WithDescription("Append a subtask to a task."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Subtask text"), mcp.Required()),
	), addSubtaskHandler(s))

	srv.AddTool(mcp.NewTool("complete_subtask",
		mcp.WithDescription("Mark a subtask completed, or not completed."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("1-based subtask position"), mcp.Required()),
		mcp.WithBoolean("completed", mcp.Description("Completion flag (defaults to true)")),
	), completeSubtaskHandler(s))

	srv.AddTool(mcp.NewTool("reorder_task",
		mcp.WithDescription("Move a task from one 1-based position to another."),
		mcp.WithNumber("from", mcp.Description("Current position"), mcp.Required()),
		mcp.WithNumber("to", mcp.Description("New position"), mcp.Required()),
	), reorderTaskHandler(s))

	srv.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Report how many tasks are completed."),
		mcp.WithString("policy", mcp.Description("tasks, subtasks or rollup (defaults to the configured policy)")),
	), getProgressHandler(s, policy))

	srv.AddTool(mcp.NewTool("export_tasks",
		mcp.WithDescription("Export the task list as JSON or YAML text."),
		mcp.WithString("format", mcp.Description("json (default) or yaml")),
	), exportTasksHandler(s))

	srv.AddTool(mcp.NewTool("ask_help",
		mcp.WithDescription("Ask the built-in assistant how to use the to-do list."),
		mcp.WithString("question", mcp.Description("Question"), mcp.Required()),
	), askHelpHandler())

	return srv
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	return args
}

// requireNumber reads a required numeric argument
func requireNumber(request mcp.CallToolRequest, key string) (int64, *mcp.CallToolResult) {
	if _, ok := arguments(request)[key]; !ok {
		return 0, mcp.NewToolResultError(fmt.Sprintf("%s is required", key))
	}
	return int64(mcp.ParseInt(request, key, 0)), nil
}

func toolError(err error) *mcp.CallToolResult {
	var parseErr *models.ParseError
	switch {
	case errors.Is(err, store.ErrEmptyText):
		return mcp.NewToolResultError("text must not be empty")
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrIndexOutOfRange), errors.As(err, &parseErr):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError("failed: " + err.Error())
	}
}

func taskResult(task models.Task) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func addTaskHandler(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		priority, ok := models.ParsePriority(mcp.ParseString(request, "priority", ""))
		if !ok {
			return mcp.NewToolResultError("priority must be low, medium or high"), nil
		}
		due, err := parser.ParseDueDate(mcp.ParseString(request, "due_date", ""), time.Now())
		if err != nil {
			return mcp.NewToolResultError("invalid due_date: " + err.Error()), nil
		}

		task, err := s.Add(store.AddInput{
			Text:     mcp.ParseString(request, "text", ""),
			Priority: priority,
			DueDate:  due,
			Category: mcp.ParseString(request, "category", ""),
		})
		if err != nil {
			return toolError(err), nil
		}
		return taskResult(task)
	}
}

func listTasksHandler(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := mcp.ParseString(request, "status", "all")
		if status != "all" && status != "pending" && status != "done" {
			return mcp.NewToolResultError("status must be all, pending or done"), nil
		}

		tasks := []models.Task{}
		for _, t := range s.Snapshot() {
			if status == "pending" && t.Completed || status == "done" && !t.Completed {
				continue
			}
			tasks = append(tasks, t)
		}

		data, err := json.Marshal(map[string]any{"tasks": tasks, "count": len(tasks)})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func editTaskHandler(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requireNumber(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		args := arguments(request)

		var in store.UpdateInput
		if raw, ok := args["priority"].(string); ok {
			p, valid := models.ParsePriority(raw)
			if !valid {
				return mcp.NewToolResultError("priority must be low, medium or high"), nil
			}
			in.Priority = &p
		}
		if raw, ok := args["due_date"].(string); ok {
			due, err := parser.ParseDueDate(raw, time.Now())
			if err != nil {
				return mcp.NewToolResultError("invalid due_date: " + err.Error()), nil
			}
			in.DueDate = &due
		}
		if raw, ok := args["category"].(string); ok {
			in.Category = &raw
		}
		if text, ok := args["text"].(string); ok {
			in.Text = &text
		}

		task, err := s.Update(id, in)
		if err != nil {
			return toolError(err), nil
		}
		return taskResult(task)
	}
}

func completeTaskHandler(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requireNumber(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		task, err := s.SetCompleted(id, mcp.ParseBoolean(request, "completed", true))
		if err != nil {
			return toolError(err), nil
		}
		return taskResult(task)
	}
}

func deleteTaskHandler(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requireNumber(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		if err := s.Delete(id); err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task %d deleted", id)), nil
	}
}

func addSubtaskHandler(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requireNumber(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		task, err := s.AddSubtask(id, mcp.ParseString(request, "text", ""))
		if err != nil {
			return toolError(err), nil
		}
		return taskResult(task)
	}
}

func completeSubtaskHandler(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requireNumber(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		index, errResult := requireNumber(request, "index")
		if errResult != nil {
			return errResult, nil
		}
		task, err := s.SetSubtaskCompleted(id, int(index)-1, mcp.ParseBoolean(request, "completed", true))
		if err != nil {
			return toolError(err), nil
		}
		return taskResult(task)
	}
}

func reorderTaskHandler(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from, errResult := requireNumber(request, "from")
		if errResult != nil {
			return errResult, nil
		}
		to, errResult := requireNumber(request, "to")
		if errResult != nil {
			return errResult, nil
		}
		if err := s.Reorder(int(from)-1, int(to)-1); err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Moved task from position %d to %d", from, to)), nil
	}
}

func getProgressHandler(s *store.Store, defaultPolicy progress.Policy) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		policy := defaultPolicy
		if raw := mcp.ParseString(request, "policy", ""); raw != "" {
			p, err := progress.ParsePolicy(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			policy = p
		}

		p := progress.Compute(s.Snapshot(), policy)
		data, err := json.Marshal(map[string]any{
			"policy":    policy,
			"completed": p.Completed,
			"total":     p.Total,
			"percent":   p.Percent(),
			"summary":   p.String(),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func exportTasksHandler(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, err := export.ParseFormat(mcp.ParseString(request, "format", "json"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if format != export.FormatJSON && format != export.FormatYAML {
			return mcp.NewToolResultError("only json and yaml can be returned as text"), nil
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, format, s.Snapshot()); err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}

func askHelpHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(chatbot.Respond(mcp.ParseString(request, "question", ""))), nil
	}
}

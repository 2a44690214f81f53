package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/progress"
	"github.com/balkashynov/todo/internal/storage"
	"github.com/balkashynov/todo/internal/store"
)

func newTestServer(t *testing.T) (*server.MCPServer, *store.Store) {
	t.Helper()
	st, err := store.New(storage.NewMemory())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return NewServer(st, progress.PolicyTasks, "test"), st
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	tool := s.GetTool(name)
	if tool == nil {
		t.Fatalf("Tool %s not found", name)
	}
	result, err := tool.Handler(context.Background(), req)
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	return result.Content[0].(mcp.TextContent).Text
}

func decodeTask(t *testing.T, result *mcp.CallToolResult) models.Task {
	t.Helper()
	if result.IsError {
		t.Fatalf("Tool returned error: %v", resultText(t, result))
	}
	var task models.Task
	if err := json.Unmarshal([]byte(resultText(t, result)), &task); err != nil {
		t.Fatalf("Failed to unmarshal task: %v", err)
	}
	return task
}

func TestServerInitialization(t *testing.T) {
	s, _ := newTestServer(t)
	stdio := server.NewStdioServer(s)

	r, w := io.Pipe()
	stdout := &bytes.Buffer{}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		_ = stdio.Listen(ctx, r, stdout)
	}()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}

	data, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params":  initReq.Params,
	})
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	w.Write(data)
	w.Write([]byte("\n"))

	time.Sleep(200 * time.Millisecond)

	var resp struct {
		ID     int `json:"id"`
		Result struct {
			ServerInfo struct {
				Name string `json:"name"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v\nOutput: %s", err, stdout.String())
	}
	if resp.ID != 1 || resp.Result.ServerInfo.Name != "todo" {
		t.Errorf("unexpected initialize response: %s", stdout.String())
	}
}

func TestToolHandlers(t *testing.T) {
	s, st := newTestServer(t)

	var id float64

	t.Run("add_task", func(t *testing.T) {
		task := decodeTask(t, callTool(t, s, "add_task", map[string]interface{}{
			"text":     "Buy milk",
			"priority": "high",
			"due_date": "2025-12-24",
			"category": "home",
		}))
		if task.Text != "Buy milk" || task.Priority != models.PriorityHigh || task.DueDate != "2025-12-24" || task.Category != "home" {
			t.Errorf("unexpected task %+v", task)
		}
		id = float64(task.ID)

		if st.Len() != 1 {
			t.Errorf("Expected 1 task in store, got %d", st.Len())
		}
	})

	t.Run("add_task validation", func(t *testing.T) {
		cases := []map[string]interface{}{
			{"text": "   "},
			{"text": "x", "priority": "urgent"},
			{"text": "x", "due_date": "someday"},
		}
		for _, args := range cases {
			if result := callTool(t, s, "add_task", args); !result.IsError {
				t.Errorf("expected error for %v", args)
			}
		}
		if st.Len() != 1 {
			t.Errorf("rejected adds must not change the store, got %d tasks", st.Len())
		}
	})

	t.Run("edit_task", func(t *testing.T) {
		task := decodeTask(t, callTool(t, s, "edit_task", map[string]interface{}{
			"id":       id,
			"text":     "Buy oat milk",
			"category": "",
		}))
		if task.Text != "Buy oat milk" || task.Category != "" || task.Priority != models.PriorityHigh {
			t.Errorf("unexpected task after edit %+v", task)
		}

		if result := callTool(t, s, "edit_task", map[string]interface{}{"id": 42.0, "text": "x"}); !result.IsError {
			t.Error("expected error for unknown id")
		}
		if result := callTool(t, s, "edit_task", map[string]interface{}{"text": "x"}); !result.IsError {
			t.Error("expected error for missing id")
		}
	})

	t.Run("subtasks", func(t *testing.T) {
		task := decodeTask(t, callTool(t, s, "add_subtask", map[string]interface{}{"id": id, "text": "Check fridge"}))
		if len(task.Subtasks) != 1 {
			t.Fatalf("Expected 1 subtask, got %d", len(task.Subtasks))
		}

		task = decodeTask(t, callTool(t, s, "complete_subtask", map[string]interface{}{"id": id, "index": 1.0}))
		if !task.Subtasks[0].Completed {
			t.Error("subtask should be completed")
		}

		if result := callTool(t, s, "complete_subtask", map[string]interface{}{"id": id, "index": 5.0}); !result.IsError {
			t.Error("expected error for out of range subtask")
		}
	})

	t.Run("complete_task", func(t *testing.T) {
		task := decodeTask(t, callTool(t, s, "complete_task", map[string]interface{}{"id": id}))
		if !task.Completed {
			t.Error("task should be completed")
		}
	})

	t.Run("list_tasks", func(t *testing.T) {
		decodeTask(t, callTool(t, s, "add_task", map[string]interface{}{"text": "Walk dog"}))

		var resp struct {
			Tasks []models.Task `json:"tasks"`
			Count int           `json:"count"`
		}
		result := callTool(t, s, "list_tasks", map[string]interface{}{"status": "pending"})
		if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if resp.Count != 1 || resp.Tasks[0].Text != "Walk dog" {
			t.Errorf("unexpected pending list %+v", resp)
		}

		if result := callTool(t, s, "list_tasks", map[string]interface{}{"status": "later"}); !result.IsError {
			t.Error("expected error for bad status")
		}
	})

	t.Run("get_progress", func(t *testing.T) {
		var resp struct {
			Completed int    `json:"completed"`
			Total     int    `json:"total"`
			Percent   int    `json:"percent"`
			Summary   string `json:"summary"`
		}
		result := callTool(t, s, "get_progress", map[string]interface{}{})
		if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if resp.Completed != 1 || resp.Total != 2 || resp.Percent != 50 {
			t.Errorf("unexpected progress %+v", resp)
		}

		if result := callTool(t, s, "get_progress", map[string]interface{}{"policy": "weighted"}); !result.IsError {
			t.Error("expected error for unknown policy")
		}
	})

	t.Run("reorder_task", func(t *testing.T) {
		result := callTool(t, s, "reorder_task", map[string]interface{}{"from": 2.0, "to": 1.0})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", resultText(t, result))
		}
		if got := st.Snapshot()[0].Text; got != "Walk dog" {
			t.Errorf("Expected Walk dog first, got %q", got)
		}

		if result := callTool(t, s, "reorder_task", map[string]interface{}{"from": 1.0, "to": 9.0}); !result.IsError {
			t.Error("expected error for out of range move")
		}
	})

	t.Run("export_tasks", func(t *testing.T) {
		text := resultText(t, callTool(t, s, "export_tasks", map[string]interface{}{"format": "yaml"}))
		if !strings.Contains(text, "text: Walk dog") {
			t.Errorf("unexpected yaml export:\n%s", text)
		}
		if result := callTool(t, s, "export_tasks", map[string]interface{}{"format": "pdf"}); !result.IsError {
			t.Error("binary formats should be rejected")
		}
	})

	t.Run("delete_task", func(t *testing.T) {
		result := callTool(t, s, "delete_task", map[string]interface{}{"id": id})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", resultText(t, result))
		}
		if st.Len() != 1 {
			t.Errorf("Expected 1 task left, got %d", st.Len())
		}
	})

	t.Run("ask_help", func(t *testing.T) {
		text := resultText(t, callTool(t, s, "ask_help", map[string]interface{}{"question": "how do I delete a task?"}))
		if !strings.Contains(strings.ToLower(text), "delete") {
			t.Errorf("unexpected answer %q", text)
		}
	})
}

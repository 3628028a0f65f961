package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/coachly/coachd/core"
	"github.com/coachly/coachd/task"
)

func newTaskStore(t *testing.T) *task.Store {
	t.Helper()
	store, err := task.NewStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create task store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func execute(t *testing.T, tool core.Tool, userID string, input map[string]interface{}) *core.ToolResult {
	t.Helper()
	raw, err := json.Marshal(input)
	if err != nil {
		t.Fatalf("Failed to marshal input: %v", err)
	}
	result, err := tool.Execute(context.Background(), &core.ToolParams{
		UserID: userID,
		Input:  raw,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	return result
}

func TestAddTaskTool_CreatesTask(t *testing.T) {
	store := newTaskStore(t)
	tool := NewAddTaskTool(store)

	result := execute(t, tool, "user-1", map[string]interface{}{
		"title":         "Meditate",
		"description":   "10 minutes of breathing",
		"frequency":     "daily",
		"specific_time": "08:00",
		"recurring":     true,
	})

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	tasks, err := store.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Meditate" || got.Frequency != task.FrequencyDaily || got.SpecificTime != "08:00" || !got.Recurring {
		t.Errorf("Unexpected task: %+v", got)
	}
}

func TestAddTaskTool_RejectsMissingTitle(t *testing.T) {
	store := newTaskStore(t)
	tool := NewAddTaskTool(store)

	result := execute(t, tool, "user-1", map[string]interface{}{
		"description": "no title here",
	})

	if result.Success {
		t.Fatal("Expected a tool error for missing title")
	}
	if !strings.Contains(result.Error, "title is required") {
		t.Errorf("Expected a descriptive title message, got %q", result.Error)
	}
}

func TestAddTaskTool_RejectsBadTime(t *testing.T) {
	store := newTaskStore(t)
	tool := NewAddTaskTool(store)

	result := execute(t, tool, "user-1", map[string]interface{}{
		"title":         "Impossible",
		"specific_time": "25:61",
	})

	if result.Success {
		t.Fatal("Expected a tool error for an invalid time")
	}
	if !strings.Contains(result.Error, "specific_time") {
		t.Errorf("Expected a specific_time message, got %q", result.Error)
	}

	tasks, err := store.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Rejected input must not create a task, got %d", len(tasks))
	}
}

func TestAddTaskTool_RejectsBadFrequencyAndDate(t *testing.T) {
	store := newTaskStore(t)
	tool := NewAddTaskTool(store)

	result := execute(t, tool, "user-1", map[string]interface{}{
		"title":     "Bad frequency",
		"frequency": "fortnightly",
	})
	if result.Success || !strings.Contains(result.Error, "frequency") {
		t.Errorf("Expected a frequency error, got %+v", result)
	}

	result = execute(t, tool, "user-1", map[string]interface{}{
		"title":         "Bad date",
		"specific_date": "15-09-2026",
	})
	if result.Success || !strings.Contains(result.Error, "specific_date") {
		t.Errorf("Expected a specific_date error, got %+v", result)
	}
}

func TestListTasksTool(t *testing.T) {
	store := newTaskStore(t)
	addTool := NewAddTaskTool(store)
	listTool := NewListTasksTool(store)

	result := execute(t, listTool, "user-1", map[string]interface{}{})
	if !result.Success {
		t.Fatalf("Expected success, got %s", result.Error)
	}
	if result.Data != "The task list is empty." {
		t.Errorf("Expected empty-list message, got %v", result.Data)
	}

	execute(t, addTool, "user-1", map[string]interface{}{"title": "Water plants"})

	result = execute(t, listTool, "user-1", map[string]interface{}{})
	if !result.Success {
		t.Fatalf("Expected success, got %s", result.Error)
	}
	data, ok := result.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected structured data, got %T", result.Data)
	}
	if data["count"] != 1 {
		t.Errorf("Expected count 1, got %v", data["count"])
	}
}

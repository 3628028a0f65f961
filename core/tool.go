package core

import (
	"context"
	"encoding/json"
)

// Tool is a callable side-effecting function exposed to the model.
type Tool interface {
	// Name returns the tool's unique name.
	Name() string

	// Description returns the tool description shown to the model.
	Description() string

	// InputSchema returns the JSON Schema for the tool's input.
	InputSchema() map[string]interface{}

	// Execute runs the tool. Validation failures are reported through
	// ToolResult.Error, not through the error return; the error return
	// is for infrastructure failures only. Either way the orchestrator
	// surfaces the failure back to the model as a tool-error result
	// rather than aborting the turn.
	Execute(ctx context.Context, params *ToolParams) (*ToolResult, error)
}

// ToolParams carries the execution context for a tool call.
type ToolParams struct {
	// UserID is the identity on whose behalf the tool runs.
	UserID string

	// Input is the raw JSON input from the model.
	Input json.RawMessage

	// RequestID identifies the originating turn for logging.
	RequestID string
}

// ToolResult is the outcome of a tool execution.
type ToolResult struct {
	Success bool
	Data    interface{}
	Error   string
}

// ToolDefinition declares a tool: name, description, and input schema.
type ToolDefinition struct {
	ToolName        string
	ToolDescription string
	InputSchema     map[string]interface{}
}

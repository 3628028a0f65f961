// Package tools declares the side-effecting functions exposed to the
// model and the schema helpers for describing their inputs.
package tools

import (
	"context"

	"github.com/coachly/coachd/core"
)

// HandlerFunc executes a tool call.
type HandlerFunc func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error)

// funcTool is a core.Tool assembled from a definition and a handler.
type funcTool struct {
	def     core.ToolDefinition
	handler HandlerFunc
}

// Builder assembles a tool fluently:
//
//	tools.New("add_task").
//		Description("...").
//		Schema(tools.ObjectSchema(...)).
//		Handler(fn)
type Builder struct {
	def core.ToolDefinition
}

// New starts building a tool with the given name.
func New(name string) *Builder {
	return &Builder{def: core.ToolDefinition{ToolName: name}}
}

// Description sets the description shown to the model.
func (b *Builder) Description(description string) *Builder {
	b.def.ToolDescription = description
	return b
}

// Schema sets the JSON Schema for the tool input.
func (b *Builder) Schema(schema map[string]interface{}) *Builder {
	b.def.InputSchema = schema
	return b
}

// Handler finishes the build with the execution function.
func (b *Builder) Handler(handler HandlerFunc) core.Tool {
	return &funcTool{def: b.def, handler: handler}
}

func (t *funcTool) Name() string                        { return t.def.ToolName }
func (t *funcTool) Description() string                 { return t.def.ToolDescription }
func (t *funcTool) InputSchema() map[string]interface{} { return t.def.InputSchema }

func (t *funcTool) Execute(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
	return t.handler(ctx, params)
}

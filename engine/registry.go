package engine

import (
	"sync"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/coachly/coachd/core"
)

// ToolRegistry declares the callable tools exposed to the model.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]core.Tool
	order []string
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]core.Tool)}
}

// Register adds a tool. A tool with the same name overwrites the
// previous registration.
func (r *ToolRegistry) Register(tools ...core.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tool := range tools {
		if _, exists := r.tools[tool.Name()]; !exists {
			r.order = append(r.order, tool.Name())
		}
		r.tools[tool.Name()] = tool
	}
}

// Get returns the named tool.
func (r *ToolRegistry) Get(name string) (core.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// ToAPITools converts the registered tools to Anthropic API tool
// declarations, in registration order.
func (r *ToolRegistry) ToAPITools() []anthropic.ToolUnionParam {
	r.mu.RLock()
	defer r.mu.RUnlock()

	params := make([]anthropic.ToolUnionParam, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		schema := tool.InputSchema()

		input := anthropic.ToolInputSchemaParam{}
		if props, ok := schema["properties"]; ok {
			input.Properties = props
		}
		if required, ok := schema["required"].([]string); ok {
			input.Required = required
		}

		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name(),
				Description: anthropic.String(tool.Description()),
				InputSchema: input,
			},
		})
	}
	return params
}

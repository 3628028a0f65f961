// Package engine runs the bounded tool-use loop against the model:
// invoke the model with the accumulated message list and the tool
// declarations, execute any requested tools, feed results back, and
// repeat until the model produces plain content or the round cap is
// hit.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/coachly/coachd/core"
)

// ModelClient is the model collaborator boundary: one synchronous
// generation round. The Anthropic client satisfies it through
// NewAnthropicModel; tests substitute fakes.
type ModelClient interface {
	New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// anthropicModel adapts *anthropic.Client to ModelClient.
type anthropicModel struct {
	client *anthropic.Client
}

// NewAnthropicModel wraps an Anthropic client as a ModelClient.
func NewAnthropicModel(client *anthropic.Client) ModelClient {
	return &anthropicModel{client: client}
}

func (m *anthropicModel) New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return m.client.Messages.New(ctx, params)
}

// Engine drives the model loop and dispatches tool calls through the
// registry.
type Engine struct {
	model    ModelClient
	registry *ToolRegistry
}

// NewEngine creates an engine over the given model and registry.
func NewEngine(model ModelClient, registry *ToolRegistry) *Engine {
	return &Engine{model: model, registry: registry}
}

// Input is one turn's worth of work for the engine.
type Input struct {
	// Turns is the bounded context window, chronological, ending with
	// the user utterance being answered.
	Turns []core.Turn

	// SystemPrompt is the persona prompt.
	SystemPrompt string

	// Model is the model name.
	Model string

	// MaxTokens caps the response size per round.
	MaxTokens int64

	// MaxRounds caps the tool-use loop. Hitting the cap terminates the
	// run with core.ErrToolLoopExceeded and whatever content the model
	// produced along the way.
	MaxRounds int

	// ThreadID scopes this run's session state.
	ThreadID string

	// UserID is passed to tool executions.
	UserID string
}

// Output is the result of a run.
type Output struct {
	// Text is the model's final (or best-available) content.
	Text string

	// ToolsUsed lists the tools invoked during the run, in order.
	ToolsUsed []string
}

// Run executes the loop until the model stops requesting tools.
//
// Tool failures are fed back to the model as tool-error results rather
// than aborting the turn; only model invocation failures and the round
// cap are fatal.
func (e *Engine) Run(ctx context.Context, input *Input) (*Output, error) {
	if input.MaxRounds <= 0 {
		return nil, fmt.Errorf("engine: MaxRounds must be positive")
	}

	session := NewSession(input.ThreadID, input.UserID)
	session.RestoreTurns(input.Turns)

	apiTools := e.registry.ToAPITools()

	out := &Output{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrUpstreamModel, err)
		}
		if session.Rounds() >= input.MaxRounds {
			return out, fmt.Errorf("%w: %d rounds", core.ErrToolLoopExceeded, input.MaxRounds)
		}
		session.IncrementRounds()

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(input.Model),
			MaxTokens: input.MaxTokens,
			Messages:  session.Messages(),
			System: []anthropic.TextBlockParam{
				{Text: input.SystemPrompt},
			},
		}
		if len(apiTools) > 0 {
			params.Tools = apiTools
		}

		resp, err := e.model.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrUpstreamModel, err)
		}

		var (
			textResponse string
			toolResults  []anthropic.ContentBlockParamUnion
		)
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				textResponse += block.Text

			case "tool_use":
				toolResults = append(toolResults, e.dispatch(ctx, session, block))
				out.ToolsUsed = append(out.ToolsUsed, block.Name)
			}
		}

		if len(toolResults) == 0 {
			out.Text = textResponse
			return out, nil
		}

		// Keep the latest text as best-available content in case the
		// round cap terminates the loop.
		if textResponse != "" {
			out.Text = textResponse
		}

		session.AddAssistantResponse(resp)
		session.AddToolResults(toolResults)
	}
}

// dispatch executes one requested tool call and formats the result for
// the model.
func (e *Engine) dispatch(ctx context.Context, session *Session, block anthropic.ContentBlockUnion) anthropic.ContentBlockParamUnion {
	tool, ok := e.registry.Get(block.Name)
	if !ok {
		return anthropic.NewToolResultBlock(block.ID,
			fmt.Sprintf("unknown tool: %s", block.Name), true)
	}

	result, err := tool.Execute(ctx, &core.ToolParams{
		UserID:    session.UserID,
		Input:     block.Input,
		RequestID: session.ThreadID,
	})
	switch {
	case err != nil:
		log.Printf("[ENGINE] Tool %s failed: %v", block.Name, err)
		return anthropic.NewToolResultBlock(block.ID, err.Error(), true)

	case result != nil && !result.Success:
		log.Printf("[ENGINE] Tool %s rejected input: %s", block.Name, result.Error)
		return anthropic.NewToolResultBlock(block.ID, result.Error, true)

	default:
		var data interface{}
		if result != nil {
			data = result.Data
		}
		return anthropic.NewToolResultBlock(block.ID, formatResult(data), false)
	}
}

// formatResult renders tool output as text for the model.
func formatResult(data interface{}) string {
	switch v := data.(type) {
	case nil:
		return "ok"
	case string:
		return v
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

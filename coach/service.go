package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coachly/coachd/core"
	"github.com/coachly/coachd/engine"
	"github.com/coachly/coachd/memory"
)

// SeedDelimiter separates lines of a coach's scripted seed
// conversation.
const SeedDelimiter = "\n\n"

// Limiter is the admission-control boundary.
type Limiter interface {
	Allow(key string) (bool, error)
}

// Config bounds a turn. The two window sizes are the two-stage
// truncation: the memory manager serves the larger recent-history
// window, the orchestrator replays only the smaller turn window into
// the model.
type Config struct {
	// Model is the model name, also part of the memory identity.
	Model string

	// MaxTokens caps the response size per model round.
	MaxTokens int64

	// HistoryWindow is how many log entries to read back.
	HistoryWindow int

	// TurnWindow is how many parsed turns to replay into the model.
	TurnWindow int

	// MaxToolRounds caps the tool-use loop.
	MaxToolRounds int
}

// Service orchestrates one conversation turn end to end: admission,
// seeding, context assembly, the model loop, and persistence of the
// exchange.
type Service struct {
	profiles *ProfileStore
	memory   *memory.Manager
	limiter  Limiter
	engine   *engine.Engine
	cfg      Config
	logger   *slog.Logger
}

// NewService wires the orchestrator. All collaborators are injected;
// the service holds no hidden global state.
func NewService(profiles *ProfileStore, mem *memory.Manager, limiter Limiter, eng *engine.Engine, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		profiles: profiles,
		memory:   mem,
		limiter:  limiter,
		engine:   eng,
		cfg:      cfg,
		logger:   logger,
	}
}

// Respond answers a user utterance and persists the exchange.
//
// Two turns for the same identity may run concurrently; their log
// writes can interleave. The log's per-identity append ordering is the
// only ordering guarantee.
func (s *Service) Respond(ctx context.Context, userID, prompt string) (string, error) {
	if userID == "" {
		return "", core.ErrUnauthorized
	}

	c, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	id := core.Identity{Persona: c.ID, Model: s.cfg.Model, User: userID}

	allowed, err := s.limiter.Allow(id.Key())
	if err != nil {
		// Fail closed: a broken limiter must not wave requests through.
		return "", fmt.Errorf("%w: %v", core.ErrRateLimiterUnavailable, err)
	}
	if !allowed {
		return "", core.ErrRateLimitExceeded
	}

	// Seeding must complete before the user turn is written, or the
	// backstory would sort after live turns.
	if err := s.memory.SeedIfEmpty(ctx, id, c.Seed, SeedDelimiter); err != nil {
		return "", err
	}

	if err := s.memory.WriteTurn(ctx, id, core.RoleUser, prompt); err != nil {
		return "", err
	}

	entries, err := s.memory.ReadRecent(ctx, id, s.cfg.HistoryWindow)
	if err != nil {
		return "", err
	}
	turns := core.ParseTurns(entries)
	if len(turns) > s.cfg.TurnWindow {
		turns = turns[len(turns)-s.cfg.TurnWindow:]
	}
	// The just-written user turn is the window's final message; if the
	// log served a stale read, fall back to the raw prompt.
	if len(turns) == 0 || turns[len(turns)-1].Role != core.RoleUser {
		turns = append(turns, core.Turn{Role: core.RoleUser, Content: prompt})
	}

	out, err := s.engine.Run(ctx, &engine.Input{
		Turns:        turns,
		SystemPrompt: s.systemPrompt(c),
		Model:        s.cfg.Model,
		MaxTokens:    s.cfg.MaxTokens,
		MaxRounds:    s.cfg.MaxToolRounds,
		ThreadID:     id.ThreadID(),
		UserID:       userID,
	})
	if err != nil {
		if out != nil && out.Text != "" {
			// Round cap hit: keep the best-available content but do
			// not pretend the turn succeeded.
			s.logger.Warn("tool loop terminated early", "user", userID, "error", err)
		}
		return "", err
	}

	if err := s.memory.WriteTurn(ctx, id, core.RoleSystem, out.Text); err != nil {
		return "", err
	}

	s.logger.Info("turn completed", "user", userID, "coach", c.ID, "tools", len(out.ToolsUsed))
	return out.Text, nil
}

// systemPrompt assembles the persona prompt from the coach profile.
func (s *Service) systemPrompt(c *Coach) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a personal coach.\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "\nABOUT YOU:\n%s\n", c.Description)
	}
	if c.Instructions != "" {
		fmt.Fprintf(&b, "\nINSTRUCTIONS:\n%s\n", c.Instructions)
	}
	b.WriteString("\nYou can manage the user's task list with the available tools. Use them when the user asks to add or review tasks.")
	return b.String()
}

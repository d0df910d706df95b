// Package llm wraps the generative model calls the planner relies on.
package llm

import (
	"context"
	"fmt"

	"tool-agent/config"
)

const logPrefix = "[llm]"

// Request is a single-turn generation request.
type Request struct {
	// System carries the instructions for the model.
	System string
	// Prompt is the user turn.
	Prompt string
	// JSON asks the back-end to constrain the output to JSON.
	JSON bool
	// Schema optionally describes the expected JSON shape.
	Schema map[string]any
}

// Client generates text from a request.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New creates the client selected by cfg.LLMProvider.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderOllama, "":
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel, cfg.LLMTimeout), nil
	case config.ProviderGemini:
		return NewGemini(ctx, GeminiConfig{
			APIKey:   cfg.GeminiAPIKey,
			Project:  cfg.GoogleProject,
			Location: cfg.GoogleLocation,
			Model:    cfg.GeminiModel,
			Timeout:  cfg.LLMTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}

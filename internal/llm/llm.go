// Package llm wraps the text-completion backends used by the tagging workflow.
package llm

import (
	"context"
	"errors"
	"fmt"

	"docstore/internal/config"
	"docstore/internal/logger"
)

// ErrEmptyResponse is returned when the model answered with no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Completer turns a single prompt into a single text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// New builds the Completer selected by cfg.Provider ("openrouter" or "vertex").
// The returned close function releases the client.
func New(ctx context.Context, cfg config.LLMConfig, log *logger.Logger) (Completer, func() error, error) {
	switch cfg.Provider {
	case "", "openrouter":
		c, err := NewOpenRouter(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return c, func() error { return nil }, nil
	case "vertex":
		v, err := NewVertex(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return v, v.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

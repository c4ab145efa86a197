package noop

import (
	"context"

	"invest-dashboard/internal/llm"
	"invest-dashboard/internal/logger"
)

// Narrator is the fallback used when no model key is configured. Every
// call fails with llm.ErrUnavailable so callers switch to their
// deterministic path.
type Narrator struct{}

// New returns a narrator that never produces text
func New() *Narrator {
	return &Narrator{}
}

// Complete always returns llm.ErrUnavailable
func (n *Narrator) Complete(ctx context.Context, system, user string) (string, error) {
	logger.Debug(ctx, "Noop narrator called - no model configured")
	return "", llm.ErrUnavailable
}

// Stream always returns llm.ErrUnavailable without emitting chunks
func (n *Narrator) Stream(ctx context.Context, system, user string, onChunk func(string) error) error {
	logger.Debug(ctx, "Noop narrator stream called - no model configured")
	return llm.ErrUnavailable
}

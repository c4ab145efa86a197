package llmobs

import (
	"context"
	"errors"
	"time"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/llm"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/trace"
)

// observableNarrator wraps a Narrator with observability (logging & tracing)
type observableNarrator struct {
	narrator interfaces.Narrator
	provider string
}

// Compile-time interface check
var _ interfaces.Narrator = (*observableNarrator)(nil)

// Wrap wraps a narrator with observability middleware
func Wrap(narrator interfaces.Narrator, provider string) interfaces.Narrator {
	return &observableNarrator{
		narrator: narrator,
		provider: provider,
	}
}

// Complete requests a full narrative with observability
func (on *observableNarrator) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting narrative",
		"provider", on.provider,
		"prompt_chars", len(user),
	)

	start := time.Now()
	text, err := on.narrator.Complete(ctx, system, user)
	if err != nil {
		if !errors.Is(err, llm.ErrUnavailable) {
			logger.ErrorWithErrSkip(ctx, 1, "Narrative request failed", err,
				"provider", on.provider,
				"duration", time.Since(start),
			)
		}
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Narrative received",
		"provider", on.provider,
		"chars", len(text),
		"duration", time.Since(start),
	)
	return text, nil
}

// Stream relays a streamed narrative with observability
func (on *observableNarrator) Stream(ctx context.Context, system, user string, onChunk func(string) error) error {
	ctx, span := trace.StartSpan(ctx, "llm.Stream")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Opening narrative stream",
		"provider", on.provider,
		"prompt_chars", len(user),
	)

	start := time.Now()
	chunks := 0
	err := on.narrator.Stream(ctx, system, user, func(s string) error {
		chunks++
		return onChunk(s)
	})
	if err != nil {
		if !errors.Is(err, llm.ErrUnavailable) {
			logger.ErrorWithErrSkip(ctx, 1, "Narrative stream failed", err,
				"provider", on.provider,
				"chunks", chunks,
			)
		}
		return err
	}

	logger.InfoSkip(ctx, 1, "Narrative stream finished",
		"provider", on.provider,
		"chunks", chunks,
		"duration", time.Since(start),
	)
	return nil
}

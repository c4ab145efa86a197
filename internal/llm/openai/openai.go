package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"invest-dashboard/internal/llm"
	"invest-dashboard/internal/store"
	"invest-dashboard/internal/trace"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Narrator talks to an OpenAI compatible chat endpoint through eino.
type Narrator struct {
	model   *einoopenai.ChatModel
	name    string
	timeout time.Duration
}

// KeyConfigured reports whether OPENAI_API_KEY looks like a real key.
func KeyConfigured() bool {
	return strings.HasPrefix(os.Getenv("OPENAI_API_KEY"), "sk-")
}

// NewNarrator builds the chat model from cfg.LLM and OPENAI_API_KEY.
func NewNarrator(ctx context.Context, cfg *store.Config) (*Narrator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if !strings.HasPrefix(apiKey, "sk-") {
		return nil, fmt.Errorf("OPENAI_API_KEY missing or malformed: %w", llm.ErrUnavailable)
	}

	baseURL := cfg.LLM.BaseURL
	if ep := os.Getenv("OPENAI_BASE_URL"); ep != "" {
		baseURL = ep
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxTokens := cfg.LLM.MaxTokens
	temperature := cfg.LLM.Temperature
	cm, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return &Narrator{
		model:   cm,
		name:    cfg.LLM.Model,
		timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}, nil
}

func messages(system, user string) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}
}

func (n *Narrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if n.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, n.timeout)
}

// Complete returns the full assistant reply.
func (n *Narrator) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	ctx, cancel := n.withTimeout(ctx)
	defer cancel()

	msg, err := n.model.Generate(ctx, messages(system, user))
	if err != nil {
		return "", fmt.Errorf("openai generate (%s): %w", n.name, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", errors.New("openai returned empty content")
	}
	return msg.Content, nil
}

// Stream forwards each non-empty content delta to onChunk.
func (n *Narrator) Stream(ctx context.Context, system, user string, onChunk func(string) error) error {
	ctx, span := trace.StartSpan(ctx, "openai-api-stream")
	defer span.End()

	ctx, cancel := n.withTimeout(ctx)
	defer cancel()

	sr, err := n.model.Stream(ctx, messages(system, user))
	if err != nil {
		return fmt.Errorf("openai stream (%s): %w", n.name, err)
	}
	defer sr.Close()

	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("openai stream recv: %w", err)
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		if err := onChunk(msg.Content); err != nil {
			return err
		}
	}
}

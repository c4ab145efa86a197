package claude

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"invest-dashboard/internal/api"
	"invest-dashboard/internal/llm"
	"invest-dashboard/internal/store"
	"invest-dashboard/internal/trace"
)

const (
	defaultEndpoint  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// Narrator implements interfaces.Narrator using the Anthropic Messages API
type Narrator struct {
	cfg      *store.Config
	endpoint string
	apiKey   string
	client   *api.Client
	retry    *api.RetryConfig
}

// NewNarrator creates a Claude-backed narrator. CLAUDE_API_ENDPOINT overrides
// the public endpoint for proxies.
func NewNarrator(cfg *store.Config) (*Narrator, error) {
	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("CLAUDE_API_KEY missing: %w", llm.ErrUnavailable)
	}
	endpoint := defaultEndpoint
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return newNarrator(cfg, endpoint, apiKey), nil
}

func newNarrator(cfg *store.Config, endpoint, apiKey string) *Narrator {
	// one retry: each attempt already waits up to the full timeout
	retry := api.DefaultRetryConfig()
	retry.MaxAttempts = 2

	return &Narrator{
		cfg:      cfg,
		endpoint: endpoint,
		apiKey:   apiKey,
		client: api.NewClient(
			api.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
			api.WithHeader("x-api-key", apiKey),
			api.WithHeader("anthropic-version", anthropicVersion),
			api.WithLogging(true),
		),
		retry: retry,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
	Stream      bool      `json:"stream,omitempty"`
}

func (n *Narrator) request(system, user string, stream bool) messagesRequest {
	return messagesRequest{
		Model:       n.cfg.LLM.Model,
		System:      system,
		Messages:    []message{{Role: "user", Content: user}},
		MaxTokens:   n.cfg.LLM.MaxTokens,
		Temperature: n.cfg.LLM.Temperature,
		Stream:      stream,
	}
}

// Complete sends one message and returns the concatenated text blocks.
func (n *Narrator) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	req := api.NewRequest(http.MethodPost, n.endpoint).
		WithContext(ctx).
		WithBody(n.request(system, user, false))
	resp, err := n.client.DoWithRetry(req, n.retry)
	if err != nil {
		return "", fmt.Errorf("claude request: %w", err)
	}

	text := extractText(resp.Body)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("claude returned empty content")
	}
	return text, nil
}

// extractText pulls assistant text out of a Messages API body. Proxies that
// answer in the chat-completions shape are handled too; anything else is
// returned as raw text.
func extractText(body []byte) string {
	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Text string `json:"text"`
		} `json:"choices"`
		Completion string `json:"completion"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return string(body)
	}

	var sb strings.Builder
	for _, c := range r.Content {
		if c.Type == "" || c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	if sb.Len() > 0 {
		return sb.String()
	}
	if len(r.Choices) > 0 {
		if r.Choices[0].Message.Content != "" {
			return r.Choices[0].Message.Content
		}
		return r.Choices[0].Text
	}
	return r.Completion
}

// Stream opens a streamed message and forwards text deltas to onChunk.
func (n *Narrator) Stream(ctx context.Context, system, user string, onChunk func(string) error) error {
	ctx, span := trace.StartSpan(ctx, "claude-api-stream")
	defer span.End()

	// Open drops the client timeout, so the whole stream is bounded here.
	if d := time.Duration(n.cfg.LLM.TimeoutSeconds) * time.Second; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	req := api.NewRequest(http.MethodPost, n.endpoint).
		WithContext(ctx).
		WithHeader("Accept", "text/event-stream").
		WithBody(n.request(system, user, true))
	body, err := n.client.Open(req)
	if err != nil {
		return fmt.Errorf("claude stream: %w", err)
	}
	defer body.Close()

	return readEvents(body, onChunk)
}

// readEvents walks an SSE body and hands every delta.text to onChunk. An
// "error" event ends the stream with its message.
func readEvents(r io.Reader, onChunk func(string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var ev struct {
			Type  string `json:"type"`
			Delta struct {
				Text string `json:"text"`
			} `json:"delta"`
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue
		}
		if ev.Type == "error" {
			return fmt.Errorf("claude stream error: %s", ev.Error.Message)
		}
		if ev.Type == "message_stop" {
			return nil
		}
		if ev.Delta.Text == "" {
			continue
		}
		if err := onChunk(ev.Delta.Text); err != nil {
			return err
		}
	}
	return sc.Err()
}

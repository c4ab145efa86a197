package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invest-dashboard/internal/market"
	"invest-dashboard/internal/report"
	"invest-dashboard/internal/store"
)

// stalledServer accepts requests and never answers until the client gives up.
func stalledServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestNarrator(t *testing.T, baseURL string) *Narrator {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", baseURL)

	cfg := store.Default()
	cfg.LLM.TimeoutSeconds = 1
	n, err := NewNarrator(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewNarrator: %v", err)
	}
	return n
}

func TestNewNarratorRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewNarrator(context.Background(), store.Default()); err == nil {
		t.Fatal("expected an error without OPENAI_API_KEY")
	}
}

func TestCompleteTimesOut(t *testing.T) {
	n := newTestNarrator(t, stalledServer(t).URL)

	start := time.Now()
	_, err := n.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected a timeout error from a stalled endpoint")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Complete took %v, want about 1s", elapsed)
	}
}

func TestStalledNarratorDegradesToFallback(t *testing.T) {
	n := newTestNarrator(t, stalledServer(t).URL)

	r := report.NewComposer(n).Compose(context.Background(), report.Input{
		Summary: market.Summarize(nil),
	})
	if !r.Fallback {
		t.Errorf("report = %+v, want the templated fallback", r)
	}
}

package indicator

import (
	"context"
	"errors"
	"testing"

	"invest-dashboard/internal/types"
)

type fakeProvider struct {
	series map[string][]float64
	calls  []string
}

func (f *fakeProvider) DailyBars(_ context.Context, code string, _ int) ([]types.Bar, error) {
	f.calls = append(f.calls, code)
	closes, ok := f.series[code]
	if !ok {
		return nil, errors.New("source unavailable")
	}
	return barsFrom(closes), nil
}

func TestEngineAnalyzeAllIsFailSoft(t *testing.T) {
	provider := &fakeProvider{series: map[string][]float64{
		"A": linear(150, 100, 1),
		"B": linear(50, 100, 1),
		"D": linear(150, 300, -1),
	}}
	engine := NewEngine(provider, 150, 0)

	stocks := []types.Stock{{Code: "A", Name: "Alpha"}, {Code: "B"}, {Code: "C"}, {Code: "D", Name: "Delta"}}
	results := engine.AnalyzeAll(context.Background(), stocks)

	if len(provider.calls) != 4 {
		t.Errorf("provider called %d times, want 4", len(provider.calls))
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Code != "A" || results[1].Code != "D" {
		t.Errorf("results out of order: %s, %s", results[0].Code, results[1].Code)
	}
	if results[0].Trend != TrendUp || results[1].Trend != TrendDown {
		t.Errorf("trends = %s, %s", results[0].Trend, results[1].Trend)
	}
}

func TestEngineStopsOnCancelledContext(t *testing.T) {
	provider := &fakeProvider{series: map[string][]float64{"A": linear(150, 100, 1)}}
	engine := NewEngine(provider, 150, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := engine.AnalyzeAll(ctx, []types.Stock{{Code: "A"}})
	if len(results) != 0 {
		t.Errorf("got %d results from a cancelled context", len(results))
	}
}

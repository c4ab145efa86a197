package analysis

import (
	"context"
	"strings"
	"testing"

	"invest-dashboard/internal/indicator"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/report"
	"invest-dashboard/internal/types"
)

type fakeQuotes struct{}

func (fakeQuotes) Indices(ctx context.Context) []types.IndexQuote {
	return []types.IndexQuote{
		{Name: "코스피", Value: 2600, Change: -10, ChangePercent: -0.38},
		{Name: "코스닥", Value: 850, Change: 3, ChangePercent: 0.35},
		{Name: "나스닥"},
	}
}

func (fakeQuotes) Commodities(ctx context.Context) []types.IndexQuote { return nil }

func (fakeQuotes) Stock(ctx context.Context, code string) (types.StockQuote, error) {
	return types.StockQuote{Code: code}, nil
}

type fakeNews struct{}

func (fakeNews) MarketNews(ctx context.Context) []types.NewsItem {
	return []types.NewsItem{{Title: "증시 마감", Source: "연합뉴스"}}
}

func (fakeNews) StockNews(ctx context.Context, code string) []types.NewsItem {
	return []types.NewsItem{{Title: code + " 공시", Source: "뉴스"}}
}

type fakeEngine struct {
	results []indicator.Result
	calls   int
}

func (f *fakeEngine) AnalyzeAll(ctx context.Context, stocks []types.Stock) []indicator.Result {
	f.calls++
	return f.results
}

func newTestService(results []indicator.Result) (*Service, *fakeEngine) {
	eng := &fakeEngine{results: results}
	universe := []types.Stock{{Code: "005930", Name: "삼성전자"}}
	return NewService(fakeQuotes{}, fakeNews{}, eng, report.NewComposer(nil), universe), eng
}

func TestTechnical(t *testing.T) {
	svc, _ := newTestService([]indicator.Result{
		{Name: "A", RSI: 75, Trend: indicator.TrendUp},
		{Name: "B", RSI: 80, Trend: indicator.TrendUp},
	})
	tech := svc.Technical(context.Background())
	if len(tech.Indicators) != 2 {
		t.Fatalf("indicators = %d", len(tech.Indicators))
	}
	if tech.Summary.Overall != market.RegimeOverbought || tech.Summary.OverboughtCount != 2 {
		t.Errorf("summary = %+v", tech.Summary)
	}
}

func TestTechnicalEmpty(t *testing.T) {
	svc, _ := newTestService(nil)
	tech := svc.Technical(context.Background())
	if tech.Summary.Overall != market.RegimeInsufficient || tech.Summary.AvgRSI != market.NeutralRSI {
		t.Errorf("summary = %+v", tech.Summary)
	}
}

func TestGenerateFallback(t *testing.T) {
	svc, eng := newTestService(nil)
	r := svc.Generate(context.Background(), []string{"삼성전자"})
	if !r.Fallback {
		t.Fatal("expected templated report without a narrator")
	}
	if !strings.Contains(r.Summary, "코스피는 2,600.00pt로 하락(-0.38%)") {
		t.Errorf("summary = %q", r.Summary)
	}
	if eng.calls != 1 {
		t.Errorf("engine calls = %d", eng.calls)
	}
}

func TestStreamFrameOrder(t *testing.T) {
	svc, _ := newTestService(nil)
	var frames []string
	err := svc.Stream(context.Background(), nil, func(f string) error {
		frames = append(frames, f)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) < 4 {
		t.Fatalf("too few frames: %q", frames)
	}
	if frames[0] != report.StatusFrame(report.StatusCollecting) || frames[1] != report.StatusFrame(report.StatusIndicators) {
		t.Errorf("status frames = %q", frames[:2])
	}
	if frames[len(frames)-1] != report.DoneFrame {
		t.Errorf("last frame = %q", frames[len(frames)-1])
	}
}

func TestStockNews(t *testing.T) {
	svc, _ := newTestService(nil)
	items := svc.StockNews(context.Background(), "005930")
	if len(items) != 1 || items[0].Title != "005930 공시" {
		t.Errorf("items = %+v", items)
	}
}

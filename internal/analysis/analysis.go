// Package analysis gathers quotes, headlines and indicator results and hands
// them to the report composer.
package analysis

import (
	"context"

	"invest-dashboard/internal/indicator"
	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/report"
	"invest-dashboard/internal/types"
)

// batchAnalyzer is satisfied by *indicator.Engine.
type batchAnalyzer interface {
	AnalyzeAll(ctx context.Context, stocks []types.Stock) []indicator.Result
}

type Service struct {
	quotes   interfaces.QuoteSource
	news     interfaces.HeadlineSource
	engine   batchAnalyzer
	composer *report.Composer
	universe []types.Stock
}

// Technical is the indicator snapshot for the configured universe.
type Technical struct {
	Indicators []indicator.Result `json:"indicators"`
	Summary    market.Summary     `json:"summary"`
}

func NewService(quotes interfaces.QuoteSource, news interfaces.HeadlineSource, engine batchAnalyzer, composer *report.Composer, universe []types.Stock) *Service {
	return &Service{
		quotes:   quotes,
		news:     news,
		engine:   engine,
		composer: composer,
		universe: universe,
	}
}

func (s *Service) Universe() []types.Stock {
	return s.universe
}

// Technical analyzes the universe. Symbols without enough history are left
// out; an empty universe yields the insufficient-data summary.
func (s *Service) Technical(ctx context.Context) Technical {
	results := s.engine.AnalyzeAll(ctx, s.universe)
	return Technical{
		Indicators: results,
		Summary:    market.Summarize(results),
	}
}

func (s *Service) Indices(ctx context.Context) []types.IndexQuote {
	return s.quotes.Indices(ctx)
}

func (s *Service) News(ctx context.Context) []types.NewsItem {
	return s.news.MarketNews(ctx)
}

func (s *Service) StockNews(ctx context.Context, code string) []types.NewsItem {
	return s.news.StockNews(ctx, code)
}

func (s *Service) marketData(ctx context.Context) ([]types.IndexQuote, []types.NewsItem) {
	return s.quotes.Indices(ctx), s.news.MarketNews(ctx)
}

// Generate builds a full report. It always returns a report; the templated
// one when no narrator answers.
func (s *Service) Generate(ctx context.Context, holdings []string) report.Report {
	timer := logger.StartOperation(ctx, "analysis.Generate", "holdings", len(holdings))
	ctx = timer.GetContext()

	indices, news := s.marketData(ctx)
	tech := s.Technical(ctx)
	r := s.composer.Compose(ctx, report.Input{
		Indices:  indices,
		News:     news,
		Results:  tech.Indicators,
		Summary:  tech.Summary,
		Holdings: holdings,
	})

	timer.End("fallback", r.Fallback, "analyzed", len(tech.Indicators))
	return r
}

// Stream emits progress frames while collecting data and then the narrated
// report. It returns only when the client has gone away.
func (s *Service) Stream(ctx context.Context, holdings []string, w report.FrameWriter) error {
	timer := logger.StartOperation(ctx, "analysis.Stream", "holdings", len(holdings))
	ctx = timer.GetContext()

	err := s.stream(ctx, holdings, w)
	if err != nil {
		timer.EndWithError(err)
		return err
	}
	timer.End()
	return nil
}

func (s *Service) stream(ctx context.Context, holdings []string, w report.FrameWriter) error {
	if err := w(report.StatusFrame(report.StatusCollecting)); err != nil {
		return err
	}
	indices, news := s.marketData(ctx)

	if err := w(report.StatusFrame(report.StatusIndicators)); err != nil {
		return err
	}
	tech := s.Technical(ctx)

	return s.composer.Stream(ctx, report.Input{
		Indices:  indices,
		News:     news,
		Results:  tech.Indicators,
		Summary:  tech.Summary,
		Holdings: holdings,
	}, w)
}

package indicator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/types"
)

// Engine fetches bars for a universe and analyzes each symbol in turn.
type Engine struct {
	provider interfaces.SeriesProvider
	limiter  *rate.Limiter
	days     int
}

// NewEngine builds an engine that waits delay between successive symbol
// lookups. A zero delay disables the wait.
func NewEngine(provider interfaces.SeriesProvider, days int, delay time.Duration) *Engine {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	if days < MinBars {
		days = MinBars
	}
	return &Engine{
		provider: provider,
		limiter:  rate.NewLimiter(limit, 1),
		days:     days,
	}
}

// AnalyzeOne fetches and analyzes a single symbol.
func (e *Engine) AnalyzeOne(ctx context.Context, stock types.Stock) (Result, error) {
	bars, err := e.provider.DailyBars(ctx, stock.Code, e.days)
	if err != nil {
		return Result{}, err
	}
	return Analyze(stock.Code, stock.Name, bars)
}

// AnalyzeAll returns results in input order. Symbols that fail to load or
// lack history are dropped.
func (e *Engine) AnalyzeAll(ctx context.Context, stocks []types.Stock) []Result {
	timer := logger.StartOperation(ctx, "indicator.AnalyzeAll", "symbols", len(stocks))
	ctx = timer.GetContext()

	results := make([]Result, 0, len(stocks))
	for _, stock := range stocks {
		if err := e.limiter.Wait(ctx); err != nil {
			timer.EndWithError(err, "analyzed", len(results))
			return results
		}

		res, err := e.AnalyzeOne(ctx, stock)
		switch {
		case errors.Is(err, ErrInsufficientData):
			logger.Warn(ctx, "Skipping symbol with short history", "code", stock.Code)
			continue
		case err != nil:
			logger.Warn(ctx, "Skipping symbol after fetch failure", "code", stock.Code, "error", err)
			continue
		}

		logger.Signal(ctx, res.Code, res.RSI, string(res.Trend),
			"rsi_status", res.RSIStatus, "ma_status", res.MAStatus)
		results = append(results, res)
	}

	timer.End("analyzed", len(results))
	return results
}

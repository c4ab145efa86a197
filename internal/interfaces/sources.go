package interfaces

import (
	"context"

	"invest-dashboard/internal/types"
)

// SeriesProvider supplies ascending daily bars for a symbol.
type SeriesProvider interface {
	DailyBars(ctx context.Context, code string, days int) ([]types.Bar, error)
}

// QuoteSource never fails; unreachable sources come back as zero quotes.
type QuoteSource interface {
	Indices(ctx context.Context) []types.IndexQuote
	Commodities(ctx context.Context) []types.IndexQuote
	Stock(ctx context.Context, code string) (types.StockQuote, error)
}

type HeadlineSource interface {
	MarketNews(ctx context.Context) []types.NewsItem
	StockNews(ctx context.Context, code string) []types.NewsItem
}

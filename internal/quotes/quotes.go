// Package quotes reads Korean and world market prices from Naver Finance.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"

	"invest-dashboard/internal/api"
	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/types"
)

var ErrNotFound = errors.New("quote not found")

// Endpoints are the hosts queried; tests point them at a local server.
type Endpoints struct {
	API     string
	Mobile  string
	Finance string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		API:     "https://api.finance.naver.com",
		Mobile:  "https://m.stock.naver.com",
		Finance: "https://finance.naver.com",
	}
}

type Options struct {
	Timeout   time.Duration
	UserAgent string
	CacheTTL  time.Duration
	Endpoints Endpoints
}

type Client struct {
	http  *resty.Client
	cache *cache.Cache
	ttl   time.Duration
	ep    Endpoints
	now   func() time.Time
}

var (
	_ interfaces.QuoteSource    = (*Client)(nil)
	_ interfaces.SeriesProvider = (*Client)(nil)
)

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Endpoints == (Endpoints{}) {
		opts.Endpoints = DefaultEndpoints()
	}

	headers := api.NaverHeaders()
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}
	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetHeaders(headers).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{
		http:  httpClient,
		cache: cache.New(opts.CacheTTL, 10*time.Minute),
		ttl:   opts.CacheTTL,
		ep:    opts.Endpoints,
		now:   time.Now,
	}
}

// cached serves key from the cache when caching is enabled, otherwise calls load.
// Only successful loads are stored.
func cached[T any](c *Client, key string, load func() (T, error)) (T, error) {
	if c.ttl > 0 {
		if v, ok := c.cache.Get(key); ok {
			return v.(T), nil
		}
	}
	v, err := load()
	if err == nil && c.ttl > 0 {
		c.cache.Set(key, v, cache.DefaultExpiration)
	}
	return v, err
}

type naverBasic struct {
	StockName                   string `json:"stockName"`
	ClosePrice                  string `json:"closePrice"`
	CompareToPreviousClosePrice string `json:"compareToPreviousClosePrice"`
	FluctuationsRatio           string `json:"fluctuationsRatio"`
	AccumulatedTradingVolume    string `json:"accumulatedTradingVolume"`
}

func (c *Client) basic(ctx context.Context, path string) (naverBasic, error) {
	var out naverBasic
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(c.ep.Mobile + path)
	if err != nil {
		return out, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return out, ErrNotFound
	}
	if !resp.IsSuccess() {
		return out, fmt.Errorf("naver %s: status %d", path, resp.StatusCode())
	}
	return out, nil
}

// Index returns one domestic index (KOSPI or KOSDAQ).
func (c *Client) Index(ctx context.Context, symbol, name string) (types.IndexQuote, error) {
	return cached(c, "index:"+symbol, func() (types.IndexQuote, error) {
		b, err := c.basic(ctx, "/api/index/"+symbol+"/basic")
		if err != nil {
			return types.IndexQuote{Name: name}, err
		}
		return types.IndexQuote{
			Name:          name,
			Value:         parseNumber(b.ClosePrice),
			Change:        parseNumber(b.CompareToPreviousClosePrice),
			ChangePercent: parseNumber(b.FluctuationsRatio),
		}, nil
	})
}

// Indices returns 코스피, 코스닥 and 나스닥 in that order. Failed sources are zeroed.
func (c *Client) Indices(ctx context.Context) []types.IndexQuote {
	return []types.IndexQuote{
		c.orZero(ctx, "코스피", func() (types.IndexQuote, error) { return c.Index(ctx, "KOSPI", "코스피") }),
		c.orZero(ctx, "코스닥", func() (types.IndexQuote, error) { return c.Index(ctx, "KOSDAQ", "코스닥") }),
		c.orZero(ctx, "나스닥", func() (types.IndexQuote, error) { return c.WorldIndex(ctx, "NAS@IXIC", "나스닥") }),
	}
}

// Commodities returns 니케이225, 금, 은 and 구리.
func (c *Client) Commodities(ctx context.Context) []types.IndexQuote {
	return []types.IndexQuote{
		c.orZero(ctx, "니케이225", func() (types.IndexQuote, error) { return c.WorldIndex(ctx, "JPX@NI225", "니케이225") }),
		c.orZero(ctx, "금", func() (types.IndexQuote, error) { return c.Commodity(ctx, "CMDT_GC", "금") }),
		c.orZero(ctx, "은", func() (types.IndexQuote, error) { return c.Commodity(ctx, "CMDT_SI", "은") }),
		c.orZero(ctx, "구리", func() (types.IndexQuote, error) { return c.Commodity(ctx, "CMDT_HG", "구리") }),
	}
}

func (c *Client) orZero(ctx context.Context, name string, load func() (types.IndexQuote, error)) types.IndexQuote {
	q, err := load()
	if err != nil {
		logger.Warn(ctx, "Quote source failed, using zero quote", "name", name, "error", err)
		return types.IndexQuote{Name: name}
	}
	return q
}

// Stock returns the latest quote for a listed code.
func (c *Client) Stock(ctx context.Context, code string) (types.StockQuote, error) {
	return cached(c, "stock:"+code, func() (types.StockQuote, error) {
		b, err := c.basic(ctx, "/api/stock/"+code+"/basic")
		if err != nil {
			return types.StockQuote{}, err
		}
		if b.StockName == "" {
			return types.StockQuote{}, ErrNotFound
		}
		return types.StockQuote{
			Code:          code,
			Name:          b.StockName,
			CurrentPrice:  int64(parseNumber(b.ClosePrice)),
			Change:        int64(parseNumber(b.CompareToPreviousClosePrice)),
			ChangePercent: parseNumber(b.FluctuationsRatio),
			Volume:        int64(parseNumber(b.AccumulatedTradingVolume)),
		}, nil
	})
}

// DailyBars fetches up to days daily bars, oldest first.
func (c *Client) DailyBars(ctx context.Context, code string, days int) ([]types.Bar, error) {
	end := c.now().In(market.KST)
	start := end.AddDate(0, 0, -(days + 30))

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":      code,
			"requestType": "1",
			"startTime":   start.Format("20060102"),
			"endTime":     end.Format("20060102"),
			"timeframe":   "day",
		}).
		Get(c.ep.API + "/siseJson.naver")
	if err != nil {
		return nil, fmt.Errorf("fetch bars for %s: %w", code, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch bars for %s: status %d", code, resp.StatusCode())
	}
	return ParseSiseJSON(resp.Body(), days)
}

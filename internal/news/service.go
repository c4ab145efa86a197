package news

import (
	"context"
	"sync"
	"time"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/types"
)

// fetcher is the part of Scraper the service depends on
type fetcher interface {
	MarketNews(ctx context.Context, limit int) []types.NewsItem
	StockNews(ctx context.Context, code string, limit int) []types.NewsItem
}

// Service serves headlines with a short-lived cache
type Service struct {
	scraper fetcher
	cache   *headlineCache
	cfg     *ServiceConfig
}

var _ interfaces.HeadlineSource = (*Service)(nil)

// ServiceConfig configures the news service
type ServiceConfig struct {
	MaxArticles      int           // market headlines per request
	MaxStockArticles int           // headlines per stock
	CacheDuration    time.Duration // how long a scrape is reused
	ScraperTimeout   time.Duration // per-page request timeout
	Enabled          bool          // when false every call returns no items
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxArticles:      15,
		MaxStockArticles: 10,
		CacheDuration:    5 * time.Minute,
		ScraperTimeout:   10 * time.Second,
		Enabled:          true,
	}
}

// headlineCache stores scraped headlines temporarily
type headlineCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
	stop chan struct{}
}

type cacheEntry struct {
	items     []types.NewsItem
	timestamp time.Time
}

func newHeadlineCache(ttl time.Duration) *headlineCache {
	cache := &headlineCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go cache.cleanupLoop()
	return cache
}

// get retrieves cached headlines if still fresh
func (c *headlineCache) get(key string) ([]types.NewsItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists || time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.items, true
}

func (c *headlineCache) set(key string, items []types.NewsItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		items:     items,
		timestamp: time.Now(),
	}
}

func (c *headlineCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes expired entries
func (c *headlineCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, key)
		}
	}
}

// NewService creates a news service over the scraper
func NewService(scraper fetcher, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	return &Service{
		scraper: scraper,
		cache:   newHeadlineCache(cfg.CacheDuration),
		cfg:     cfg,
	}
}

// MarketNews returns market headlines, cached or fresh. Failures yield an empty list.
func (s *Service) MarketNews(ctx context.Context) []types.NewsItem {
	return s.cachedOrFetch(ctx, "market", func() []types.NewsItem {
		return s.scraper.MarketNews(ctx, s.cfg.MaxArticles)
	})
}

// StockNews returns headlines for one code.
func (s *Service) StockNews(ctx context.Context, code string) []types.NewsItem {
	return s.cachedOrFetch(ctx, "stock:"+code, func() []types.NewsItem {
		return s.scraper.StockNews(ctx, code, s.cfg.MaxStockArticles)
	})
}

func (s *Service) cachedOrFetch(ctx context.Context, key string, fetch func() []types.NewsItem) []types.NewsItem {
	if !s.cfg.Enabled {
		return []types.NewsItem{}
	}
	if cached, ok := s.cache.get(key); ok {
		logger.Debug(ctx, "Using cached headlines", "key", key, "articles", len(cached))
		return cached
	}

	items := fetch()
	if items == nil {
		items = []types.NewsItem{}
	}
	// empty scrapes are retried on the next call
	if len(items) > 0 {
		s.cache.set(key, items)
	}
	return items
}

// ClearCache removes all cached headlines
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// GetCachedKeys returns the cache keys currently held
func (s *Service) GetCachedKeys() []string {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()

	keys := make([]string, 0, len(s.cache.data))
	for key := range s.cache.data {
		keys = append(keys, key)
	}
	return keys
}

// Close stops the cache cleanup goroutine
func (s *Service) Close() {
	close(s.cache.stop)
}

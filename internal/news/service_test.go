package news

import (
	"context"
	"testing"
	"time"

	"invest-dashboard/internal/types"
)

type stubScraper struct {
	market     []types.NewsItem
	marketHits int
	stockHits  int
}

func (s *stubScraper) MarketNews(_ context.Context, limit int) []types.NewsItem {
	s.marketHits++
	if len(s.market) > limit {
		return s.market[:limit]
	}
	return s.market
}

func (s *stubScraper) StockNews(_ context.Context, code string, _ int) []types.NewsItem {
	s.stockHits++
	return []types.NewsItem{{Title: code + " 실적 발표", Source: "연합뉴스"}}
}

func TestHeadlineCache(t *testing.T) {
	cache := newHeadlineCache(1 * time.Second)
	defer close(cache.stop)

	items := []types.NewsItem{{Title: "코스피 상승 마감", Source: "네이버금융"}}
	cache.set("market", items)

	retrieved, found := cache.get("market")
	if !found {
		t.Fatal("Expected to find cached headlines")
	}
	if retrieved[0].Title != "코스피 상승 마감" {
		t.Errorf("Expected cached title, got %s", retrieved[0].Title)
	}

	time.Sleep(1100 * time.Millisecond)
	if _, found = cache.get("market"); found {
		t.Error("Expected cache entry to be expired")
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()

	if cfg.MaxArticles != 15 {
		t.Errorf("Expected MaxArticles to be 15, got %d", cfg.MaxArticles)
	}
	if cfg.MaxStockArticles != 10 {
		t.Errorf("Expected MaxStockArticles to be 10, got %d", cfg.MaxStockArticles)
	}
	if cfg.ScraperTimeout != 10*time.Second {
		t.Errorf("Expected ScraperTimeout to be 10s, got %v", cfg.ScraperTimeout)
	}
	if !cfg.Enabled {
		t.Error("Expected Enabled to be true")
	}
}

func TestServiceCachesMarketNews(t *testing.T) {
	stub := &stubScraper{market: []types.NewsItem{{Title: "반도체 수출 호조"}, {Title: "환율 급등"}}}
	svc := NewService(stub, DefaultServiceConfig())
	defer svc.Close()

	ctx := context.Background()
	first := svc.MarketNews(ctx)
	second := svc.MarketNews(ctx)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("Expected 2 headlines, got %d and %d", len(first), len(second))
	}
	if stub.marketHits != 1 {
		t.Errorf("Expected one scrape, got %d", stub.marketHits)
	}
}

func TestServiceDoesNotCacheEmptyScrape(t *testing.T) {
	stub := &stubScraper{}
	svc := NewService(stub, DefaultServiceConfig())
	defer svc.Close()

	ctx := context.Background()
	items := svc.MarketNews(ctx)
	if items == nil || len(items) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", items)
	}
	svc.MarketNews(ctx)
	if stub.marketHits != 2 {
		t.Errorf("Expected empty result to be refetched, got %d scrapes", stub.marketHits)
	}
}

func TestServiceDisabled(t *testing.T) {
	stub := &stubScraper{market: []types.NewsItem{{Title: "무시되는 기사"}}}
	svc := NewService(stub, &ServiceConfig{Enabled: false})
	defer svc.Close()

	if items := svc.MarketNews(context.Background()); len(items) != 0 {
		t.Errorf("Expected no headlines when disabled, got %d", len(items))
	}
	if stub.marketHits != 0 {
		t.Error("Expected scraper not to be called when disabled")
	}
}

func TestCacheCleanup(t *testing.T) {
	cache := newHeadlineCache(100 * time.Millisecond)
	defer close(cache.stop)

	for _, key := range []string{"market", "stock:005930", "stock:000660"} {
		cache.set(key, []types.NewsItem{{Title: key}})
	}

	time.Sleep(200 * time.Millisecond)
	cache.cleanup()

	cache.mu.RLock()
	count := len(cache.data)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Expected 0 cache entries after cleanup, got %d", count)
	}
}

func TestGetCachedKeysAndClear(t *testing.T) {
	svc := NewService(&stubScraper{}, DefaultServiceConfig())
	defer svc.Close()

	ctx := context.Background()
	svc.StockNews(ctx, "005930")
	svc.StockNews(ctx, "000660")

	if keys := svc.GetCachedKeys(); len(keys) != 2 {
		t.Errorf("Expected 2 cached keys, got %d", len(keys))
	}

	svc.ClearCache()
	if keys := svc.GetCachedKeys(); len(keys) != 0 {
		t.Errorf("Expected 0 cached keys after clear, got %d", len(keys))
	}
}

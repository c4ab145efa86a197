package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"invest-dashboard/internal/api"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/types"
)

// Scraper collects headlines from Naver Finance pages
type Scraper struct {
	sources   Sources
	timeout   time.Duration
	userAgent string
	now       func() time.Time
}

// NewsSource defines one listing page and how to read it
type NewsSource struct {
	Name        string // reported as the item source when the page has no press name
	BaseURL     string
	Path        string // may contain {code}
	Selectors   ArticleSelectors
	MinTitleLen int
}

// ArticleSelectors defines CSS selectors relative to each article container
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	Press            string
	PublishedAt      string
}

// Sources groups the pages the scraper reads
type Sources struct {
	Market   NewsSource
	Breaking NewsSource
	Section  NewsSource
	Stock    NewsSource
}

// DefaultSources returns the Naver pages rooted at the given hosts.
func DefaultSources(financeBase, newsBase string) Sources {
	listPath := "/news/news_list.naver?mode=LSS2D&section_id=101&section_id2=258"
	return Sources{
		Market: NewsSource{
			Name:    "네이버금융",
			BaseURL: financeBase,
			Path:    listPath,
			Selectors: ArticleSelectors{
				ArticleContainer: "dd.articleSubject, dt.articleSubject",
				Title:            "a",
				Press:            ".press",
				PublishedAt:      ".wdate",
			},
			MinTitleLen: 5,
		},
		Breaking: NewsSource{
			Name:    "네이버금융",
			BaseURL: financeBase,
			Path:    listPath,
			Selectors: ArticleSelectors{
				ArticleContainer: ".realtimeNewsList li, .newsList li",
				Title:            "a",
				PublishedAt:      ".time, .wdate",
			},
			MinTitleLen: 5,
		},
		Section: NewsSource{
			Name:    "네이버뉴스",
			BaseURL: newsBase,
			Path:    "/section/101",
			Selectors: ArticleSelectors{
				ArticleContainer: ".sa_text, .sa_item",
				Title:            "a",
			},
			MinTitleLen: 10,
		},
		Stock: NewsSource{
			Name:    "네이버금융",
			BaseURL: financeBase,
			Path:    "/item/news_news.naver?code={code}&page=1",
			Selectors: ArticleSelectors{
				ArticleContainer: "table.type5 tr",
				Title:            "td.title a",
				Press:            "td.info",
				PublishedAt:      "td.date",
			},
			MinTitleLen: 1,
		},
	}
}

// NewScraper creates a scraper over the given sources
func NewScraper(sources Sources, timeout time.Duration, userAgent string) *Scraper {
	if userAgent == "" {
		userAgent = api.BrowserHeaders()["User-Agent"]
	}
	return &Scraper{
		sources:   sources,
		timeout:   timeout,
		userAgent: userAgent,
		now:       time.Now,
	}
}

// MarketNews returns up to limit market headlines. A thin main list is topped
// up from the breaking list; an empty result falls back to the news section.
func (s *Scraper) MarketNews(ctx context.Context, limit int) []types.NewsItem {
	items, err := s.scrapeSource(ctx, s.sources.Market, "", limit)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to scrape market news", err)
	}

	if len(items) < 5 {
		more, err := s.scrapeSource(ctx, s.sources.Breaking, "", limit-len(items))
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape breaking news", err)
		}
		items = appendUnique(items, more, limit)
	}

	if len(items) == 0 {
		logger.Info(ctx, "No finance headlines, trying news section")
		items, err = s.scrapeSource(ctx, s.sources.Section, "", limit)
		if err != nil {
			logger.ErrorWithErr(ctx, "News section fallback failed", err)
		}
	}

	logger.Info(ctx, "Market news scraping completed", "articles", len(items))
	return items
}

// StockNews returns up to limit headlines about one listed code.
func (s *Scraper) StockNews(ctx context.Context, code string, limit int) []types.NewsItem {
	items, err := s.scrapeSource(ctx, s.sources.Stock, code, limit)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to scrape stock news", err, "code", code)
	}
	return items
}

// scrapeSource visits one listing page and extracts its articles
func (s *Scraper) scrapeSource(ctx context.Context, source NewsSource, code string, limit int) ([]types.NewsItem, error) {
	items := []types.NewsItem{}
	if limit <= 0 {
		return items, nil
	}
	seen := make(map[string]bool)

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)
	// Naver serves EUC-KR
	c.DetectCharset = true

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("User-Agent", s.userAgent)
		r.Headers.Set("Referer", source.BaseURL+"/")
	})

	c.OnHTML(source.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(items) >= limit {
			return
		}
		item, ok := s.extract(e.DOM, source)
		if !ok || seen[item.Title] {
			return
		}
		seen[item.Title] = true
		items = append(items, item)
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("%s: %w", r.Request.URL, err)
	})

	target := source.BaseURL + strings.ReplaceAll(source.Path, "{code}", url.QueryEscape(code))
	if err := c.Visit(target); err != nil {
		return items, fmt.Errorf("failed to visit %s: %w", target, err)
	}
	c.Wait()

	return items, visitErr
}

// extract reads one article container. Press and date are looked up in the
// container first and then in the following sibling (Naver puts them in a
// separate summary row).
func (s *Scraper) extract(sel *goquery.Selection, source NewsSource) (types.NewsItem, bool) {
	link := sel.Find(source.Selectors.Title).First()
	title := strings.TrimSpace(link.Text())
	if utf8.RuneCountInString(title) < source.MinTitleLen {
		return types.NewsItem{}, false
	}

	href, _ := link.Attr("href")
	item := types.NewsItem{
		Title:  title,
		Source: source.Name,
		URL:    absoluteURL(source.BaseURL, href),
		Time:   s.now().Format("15:04"),
	}

	if press := lookup(sel, source.Selectors.Press); press != "" {
		item.Source = press
	}
	if when := lookup(sel, source.Selectors.PublishedAt); when != "" {
		item.Time = when
	}
	if next := sel.Next(); next.HasClass("articleSummary") {
		summary := next.Clone()
		summary.Find(".press, .wdate, .bar").Remove()
		item.Summary = strings.Join(strings.Fields(summary.Text()), " ")
	}
	return item, true
}

func lookup(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	if text := strings.TrimSpace(sel.Find(selector).First().Text()); text != "" {
		return text
	}
	return strings.TrimSpace(sel.Next().Find(selector).First().Text())
}

func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}

func appendUnique(items, more []types.NewsItem, limit int) []types.NewsItem {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		seen[it.Title] = true
	}
	for _, it := range more {
		if len(items) >= limit {
			break
		}
		if seen[it.Title] {
			continue
		}
		seen[it.Title] = true
		items = append(items, it)
	}
	return items
}

// getDomain extracts the host name from a URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

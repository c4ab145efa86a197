package quotes

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"invest-dashboard/internal/types"
)

var numberRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// page downloads an HTML page and decodes it to UTF-8 (Naver serves EUC-KR).
func (c *Client) page(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%s: status %d", url, resp.StatusCode())
	}
	r, err := charset.NewReader(bytes.NewReader(resp.Body()), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return goquery.NewDocumentFromReader(r)
}

// WorldIndex scrapes an overseas index page such as NAS@IXIC.
func (c *Client) WorldIndex(ctx context.Context, symbol, name string) (types.IndexQuote, error) {
	return cached(c, "world:"+symbol, func() (types.IndexQuote, error) {
		doc, err := c.page(ctx, c.ep.Finance+"/world/sise.naver?symbol="+symbol)
		if err != nil {
			return types.IndexQuote{Name: name}, err
		}
		q := ParseWorldIndex(doc)
		q.Name = name
		if q.Value <= 0 {
			return q, fmt.Errorf("%s: no price on page", symbol)
		}
		return q, nil
	})
}

// Commodity scrapes a world commodity detail page such as CMDT_GC.
func (c *Client) Commodity(ctx context.Context, code, name string) (types.IndexQuote, error) {
	return cached(c, "commodity:"+code, func() (types.IndexQuote, error) {
		doc, err := c.page(ctx, c.ep.Finance+"/marketindex/worldGoldDetail.naver?marketindexCd="+code)
		if err != nil {
			return types.IndexQuote{Name: name}, err
		}
		q := ParseCommodity(doc)
		q.Name = name
		if q.Value <= 0 {
			return q, fmt.Errorf("%s: no price on page", code)
		}
		return q, nil
	})
}

// ParseWorldIndex reads the digit spans under .today em and the change block.
func ParseWorldIndex(doc *goquery.Document) types.IndexQuote {
	var parts []string
	doc.Find(".today em").First().Find("span").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "." || (text != "" && unicode.IsDigit(rune(text[0]))) {
			parts = append(parts, text)
		}
	})

	q := types.IndexQuote{Value: parseNumber(strings.Join(parts, ""))}
	exday := doc.Find(".no_exday").First()
	if exday.Length() == 0 {
		return q
	}
	q.Change, q.ChangePercent = firstTwo(exday.Text())
	if isDown(exday) {
		q.Change, q.ChangePercent = -math.Abs(q.Change), -math.Abs(q.ChangePercent)
	}
	return q
}

// ParseCommodity prefers the screen-reader (.blind) values and derives the
// percent change when the page omits it.
func ParseCommodity(doc *goquery.Document) types.IndexQuote {
	var q types.IndexQuote

	if blind := doc.Find(".no_today .blind").First(); blind.Length() > 0 {
		q.Value = parseNumber(blind.Text())
	} else if nums := numberRe.FindAllString(doc.Find(".no_today").First().Text(), 1); len(nums) > 0 {
		q.Value = parseNumber(nums[0])
	}

	exday := doc.Find(".no_exday").First()
	if blinds := exday.Find(".blind"); blinds.Length() > 0 {
		q.Change, q.ChangePercent = firstTwo(strings.Join(blinds.Map(func(_ int, s *goquery.Selection) string {
			return s.Text()
		}), " "))
	} else {
		q.Change, q.ChangePercent = firstTwo(exday.Text())
	}

	if exday.Length() > 0 && isDown(exday) {
		q.Change, q.ChangePercent = -math.Abs(q.Change), -math.Abs(q.ChangePercent)
	}
	if q.Value > 0 && q.ChangePercent == 0 && q.Change != 0 {
		q.ChangePercent = q.Change / (q.Value - q.Change) * 100
	}
	return q
}

func isDown(s *goquery.Selection) bool {
	if s.HasClass("down") || s.Find(".ico.down").Length() > 0 {
		return true
	}
	html, _ := goquery.OuterHtml(s)
	return strings.Contains(html, "down") || strings.Contains(s.Text(), "하락")
}

func firstTwo(text string) (a, b float64) {
	nums := numberRe.FindAllString(text, 2)
	if len(nums) > 0 {
		a = parseNumber(nums[0])
	}
	if len(nums) > 1 {
		b = parseNumber(nums[1])
	}
	return a, b
}

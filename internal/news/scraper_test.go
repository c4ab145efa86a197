package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const listPage = `<html><body><div class="mainNewsList"><ul><li>
<dl>
<dd class="articleSubject"><a href="/news/news_read.naver?article_id=1">코스피, 외국인 매수에 2650선 회복</a></dd>
<dd class="articleSummary">외국인이 반도체를 중심으로 순매수했다. <span class="press">연합뉴스</span><span class="bar">|</span><span class="wdate">2024-03-04 15:40</span></dd>
<dd class="articleSubject"><a href="/news/news_read.naver?article_id=2">짧음</a></dd>
<dd class="articleSubject"><a href="https://n.news.naver.com/article/3">환율 1,330원대 하락 마감</a></dd>
<dd class="articleSummary">달러 약세. <span class="press">한국경제</span><span class="wdate">2024-03-04 15:35</span></dd>
</dl></li></ul></div></body></html>`

const sectionPage = `<html><body>
<div class="sa_item"><div class="sa_text"><a href="https://n.news.naver.com/a/1">미국 금리 동결 기대감에 증시 반등</a></div></div>
<div class="sa_item"><div class="sa_text"><a href="https://n.news.naver.com/a/2">너무 짧은 제목</a></div></div>
</body></html>`

const stockPage = `<html><body><table class="type5"><tbody>
<tr><td class="title"><a href="/item/news_read.naver?article_id=9&code=005930">삼성전자, HBM 공급 확대</a></td><td class="info">매일경제</td><td class="date">2024.03.04 10:12</td></tr>
<tr><td colspan="3">relation</td></tr>
</tbody></table></body></html>`

func newsServer(list, section string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/news/news_list.naver", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(list))
	})
	mux.HandleFunc("/section/101", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(section))
	})
	mux.HandleFunc("/item/news_news.naver", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(stockPage))
	})
	return httptest.NewServer(mux)
}

func TestMarketNewsParsesListPage(t *testing.T) {
	srv := newsServer(listPage, sectionPage)
	defer srv.Close()

	s := NewScraper(DefaultSources(srv.URL, srv.URL), 2*time.Second, "")
	items := s.MarketNews(context.Background(), 15)

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}
	first := items[0]
	if first.Title != "코스피, 외국인 매수에 2650선 회복" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Source != "연합뉴스" || first.Time != "2024-03-04 15:40" {
		t.Errorf("source/time = %q / %q", first.Source, first.Time)
	}
	if first.URL != srv.URL+"/news/news_read.naver?article_id=1" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Summary != "외국인이 반도체를 중심으로 순매수했다." {
		t.Errorf("summary = %q", first.Summary)
	}
	if !strings.HasPrefix(items[1].URL, "https://n.news.naver.com") {
		t.Errorf("absolute url rewritten: %q", items[1].URL)
	}
}

func TestMarketNewsFallsBackToSection(t *testing.T) {
	srv := newsServer("<html><body></body></html>", sectionPage)
	defer srv.Close()

	s := NewScraper(DefaultSources(srv.URL, srv.URL), 2*time.Second, "")
	items := s.MarketNews(context.Background(), 15)

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(items), items)
	}
	if items[0].Source != "네이버뉴스" {
		t.Errorf("source = %q", items[0].Source)
	}
}

func TestStockNews(t *testing.T) {
	srv := newsServer(listPage, sectionPage)
	defer srv.Close()

	s := NewScraper(DefaultSources(srv.URL, srv.URL), 2*time.Second, "")
	items := s.StockNews(context.Background(), "005930", 10)

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Source != "매일경제" || items[0].Time != "2024.03.04 10:12" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestMarketNewsUnreachable(t *testing.T) {
	s := NewScraper(DefaultSources("http://127.0.0.1:1", "http://127.0.0.1:1"), 500*time.Millisecond, "")
	if items := s.MarketNews(context.Background(), 15); len(items) != 0 {
		t.Errorf("got %d items from an unreachable host", len(items))
	}
}

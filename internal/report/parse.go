package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"invest-dashboard/internal/market"
)

var ErrNoJSON = errors.New("no JSON object in response")

// narrative is the snake_case shape the model is asked to answer with.
type narrative struct {
	Summary        string `json:"summary"`
	NewsAnalysis   string `json:"news_analysis"`
	KospiAnalysis  string `json:"kospi_analysis"`
	KosdaqAnalysis string `json:"kosdaq_analysis"`
	NasdaqAnalysis string `json:"nasdaq_analysis"`
	Technical      struct {
		Overall    string `json:"overall"`
		RSIComment string `json:"rsi_comment"`
		BBComment  string `json:"bb_comment"`
		MAComment  string `json:"ma_comment"`
	} `json:"technical_analysis"`
	MarketSentiment string `json:"market_sentiment"`
	HotThemes       []struct {
		Name         string `json:"name"`
		Reason       string `json:"reason"`
		KospiLeader  string `json:"kospi_leader"`
		KosdaqLeader string `json:"kosdaq_leader"`
	} `json:"hot_themes"`
	RiskFactors    []string `json:"risk_factors"`
	ActionItems    []string `json:"action_items"`
	Recommendation string   `json:"recommendation"`
}

// extractJSON pulls the JSON object out of a model reply. Fenced blocks win;
// otherwise the span from the first '{' to the last '}' is used.
func extractJSON(text string) (string, error) {
	t := strings.TrimSpace(text)
	if _, after, ok := strings.Cut(t, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		t = strings.TrimSpace(body)
	} else if _, after, ok := strings.Cut(t, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		t = strings.TrimSpace(body)
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return t[start : end+1], nil
}

// ParseResponse builds a Report from a model reply. Computed figures
// (average RSI and the oversold/overbought lists) always come from s.
func ParseResponse(text string, s market.Summary, now time.Time) (Report, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return Report{}, err
	}
	var n narrative
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return Report{}, fmt.Errorf("decode narrative: %w", err)
	}

	overall := n.Technical.Overall
	if overall == "" {
		overall = RegimeLabel(s.Overall)
	}
	sentiment := strings.TrimSpace(n.MarketSentiment)
	if !validSentiment(sentiment) {
		sentiment = SentimentNeutral
	}

	themes := make([]HotTheme, 0, len(n.HotThemes))
	for _, t := range n.HotThemes {
		themes = append(themes, HotTheme{
			Name:         t.Name,
			Reason:       t.Reason,
			KospiLeader:  t.KospiLeader,
			KosdaqLeader: t.KosdaqLeader,
		})
	}

	return Report{
		Summary:        n.Summary,
		NewsAnalysis:   n.NewsAnalysis,
		KospiAnalysis:  n.KospiAnalysis,
		KosdaqAnalysis: n.KosdaqAnalysis,
		NasdaqAnalysis: n.NasdaqAnalysis,
		TechnicalSummary: TechnicalSummary{
			Overall:          overall,
			AvgRSI:           s.AvgRSI,
			RSIStatus:        n.Technical.RSIComment,
			BollingerStatus:  n.Technical.BBComment,
			MAStatus:         n.Technical.MAComment,
			OversoldStocks:   nonNil(s.OversoldStocks),
			OverboughtStocks: nonNil(s.OverboughtStocks),
		},
		MarketSentiment: sentiment,
		HotThemes:       themes,
		RiskFactors:     nonNil(n.RiskFactors),
		ActionItems:     nonNil(n.ActionItems),
		Recommendation:  n.Recommendation,
		GeneratedAt:     now.Format(TimeLayout),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

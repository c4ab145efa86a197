// Package report turns indicator output, quotes and headlines into the
// Korean market report served by the dashboard. A narrator writes the prose
// when one is configured; otherwise a templated report is built from the
// same inputs.
package report

import (
	"invest-dashboard/internal/indicator"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/types"
)

// TimeLayout is the generatedAt format.
const TimeLayout = "2006-01-02 15:04:05"

// Input is everything a report is derived from.
type Input struct {
	Indices  []types.IndexQuote
	News     []types.NewsItem
	Results  []indicator.Result
	Summary  market.Summary
	Holdings []string
}

type TechnicalSummary struct {
	Overall          string   `json:"overall"`
	AvgRSI           float64  `json:"avgRsi"`
	RSIStatus        string   `json:"rsiStatus"`
	BollingerStatus  string   `json:"bollingerStatus"`
	MAStatus         string   `json:"maStatus"`
	OversoldStocks   []string `json:"oversoldStocks"`
	OverboughtStocks []string `json:"overboughtStocks"`
}

type HotTheme struct {
	Name         string `json:"name"`
	Reason       string `json:"reason"`
	KospiLeader  string `json:"kospiLeader"`
	KosdaqLeader string `json:"kosdaqLeader"`
}

// Report is the fixed-shape analysis returned to clients.
type Report struct {
	Summary          string           `json:"summary"`
	NewsAnalysis     string           `json:"newsAnalysis"`
	KospiAnalysis    string           `json:"kospiAnalysis"`
	KosdaqAnalysis   string           `json:"kosdaqAnalysis"`
	NasdaqAnalysis   string           `json:"nasdaqAnalysis"`
	TechnicalSummary TechnicalSummary `json:"technicalSummary"`
	MarketSentiment  string           `json:"marketSentiment"`
	HotThemes        []HotTheme       `json:"hotThemes"`
	RiskFactors      []string         `json:"riskFactors"`
	ActionItems      []string         `json:"actionItems"`
	Recommendation   string           `json:"recommendation"`
	GeneratedAt      string           `json:"generatedAt"`
	// Fallback is set when the templated path produced the report.
	Fallback bool `json:"fallback"`
}

// Sentiment vocabulary, from most fearful to most greedy.
const (
	SentimentFear     = "공포"
	SentimentAnxiety  = "불안"
	SentimentNeutral  = "중립"
	SentimentOptimism = "낙관"
	SentimentGreed    = "탐욕"
)

func validSentiment(s string) bool {
	switch s {
	case SentimentFear, SentimentAnxiety, SentimentNeutral, SentimentOptimism, SentimentGreed:
		return true
	}
	return false
}

// findIndex returns the quote named name, or a zero quote carrying the name.
func findIndex(indices []types.IndexQuote, name string) types.IndexQuote {
	for _, q := range indices {
		if q.Name == name {
			return q
		}
	}
	return types.IndexQuote{Name: name}
}

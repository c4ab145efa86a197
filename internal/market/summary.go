// Package market reduces per-symbol indicator results to a market-wide view.
package market

import (
	"math"

	"invest-dashboard/internal/indicator"
)

type Regime string

const (
	RegimeOverbought   Regime = "overbought zone - correction risk"
	RegimeOversold     Regime = "oversold zone - rebound possible"
	RegimeBullish      Regime = "bullish bias - favor buying"
	RegimeBearish      Regime = "bearish bias - favor caution"
	RegimeMixed        Regime = "mixed - selective stock-picking"
	RegimeInsufficient Regime = "insufficient data"
)

// NeutralRSI is the average reported when no symbol could be analyzed.
const NeutralRSI = 50.0

type Summary struct {
	Overall           Regime   `json:"overall"`
	AvgRSI            float64  `json:"avgRsi"`
	OversoldCount     int      `json:"oversoldCount"`
	OverboughtCount   int      `json:"overboughtCount"`
	OversoldStocks    []string `json:"oversoldStocks"`
	OverboughtStocks  []string `json:"overboughtStocks"`
	UptrendCount      int      `json:"uptrendCount"`
	DowntrendCount    int      `json:"downtrendCount"`
	GoldenCrossStocks []string `json:"goldenCrossStocks"`
	DeadCrossStocks   []string `json:"deadCrossStocks"`
}

// Summarize aggregates results. Oversold and overbought membership is
// recomputed from RSI with the shared thresholds rather than read from
// each symbol's status label.
func Summarize(results []indicator.Result) Summary {
	s := Summary{
		Overall:           RegimeInsufficient,
		AvgRSI:            NeutralRSI,
		OversoldStocks:    []string{},
		OverboughtStocks:  []string{},
		GoldenCrossStocks: []string{},
		DeadCrossStocks:   []string{},
	}
	if len(results) == 0 {
		return s
	}

	total := 0.0
	for _, r := range results {
		total += r.RSI
		if indicator.IsOversold(r.RSI) {
			s.OversoldStocks = append(s.OversoldStocks, r.Name)
		}
		if indicator.IsOverbought(r.RSI) {
			s.OverboughtStocks = append(s.OverboughtStocks, r.Name)
		}
		switch r.Trend {
		case indicator.TrendUp:
			s.UptrendCount++
		case indicator.TrendDown:
			s.DowntrendCount++
		}
		if r.GoldenCross {
			s.GoldenCrossStocks = append(s.GoldenCrossStocks, r.Name)
		}
		if r.DeadCross {
			s.DeadCrossStocks = append(s.DeadCrossStocks, r.Name)
		}
	}

	// The regime is classified on the exact mean; only the reported value is rounded.
	avg := total / float64(len(results))
	s.AvgRSI = math.Round(avg*100) / 100
	s.OversoldCount = len(s.OversoldStocks)
	s.OverboughtCount = len(s.OverboughtStocks)
	s.Overall = classifyRegime(avg, s.UptrendCount, s.DowntrendCount)
	return s
}

// classifyRegime applies the rules in order; the first match wins.
func classifyRegime(avgRSI float64, up, down int) Regime {
	switch {
	case indicator.IsOverbought(avgRSI):
		return RegimeOverbought
	case indicator.IsOversold(avgRSI):
		return RegimeOversold
	case up > 2*down:
		return RegimeBullish
	case down > 2*up:
		return RegimeBearish
	default:
		return RegimeMixed
	}
}

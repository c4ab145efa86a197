// Package indicator derives RSI, Bollinger, moving-average and cross signals
// from a daily bar series.
package indicator

import (
	"errors"
	"math"

	"invest-dashboard/internal/ta"
	"invest-dashboard/internal/types"
)

var ErrInsufficientData = errors.New("insufficient data")

// Result is the indicator snapshot at the most recent bar.
type Result struct {
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	CurrentPrice float64           `json:"currentPrice"`
	RSI          float64           `json:"rsi"`
	RSIStatus    RSIStatus         `json:"rsiStatus"`
	BBUpper      float64           `json:"bbUpper"`
	BBMiddle     float64           `json:"bbMiddle"`
	BBLower      float64           `json:"bbLower"`
	BBWidth      float64           `json:"bbWidth"`
	BBStatus     BollingerPosition `json:"bbStatus"`
	MA5          float64           `json:"ma5"`
	MA20         float64           `json:"ma20"`
	MA60         float64           `json:"ma60"`
	MA120        float64           `json:"ma120"`
	MAStatus     MAArrangement     `json:"maStatus"`
	Trend        Trend             `json:"trend"`
	GoldenCross  bool              `json:"goldenCross"`
	DeadCross    bool              `json:"deadCross"`
}

// Closes returns the finite closing prices of bars in order.
func Closes(bars []types.Bar) []float64 {
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		closes = append(closes, b.Close)
	}
	return closes
}

// Analyze computes the indicator snapshot for one symbol. It returns
// ErrInsufficientData when fewer than MinBars usable closes remain.
func Analyze(code, name string, bars []types.Bar) (Result, error) {
	closes := Closes(bars)
	if len(closes) < MinBars {
		return Result{}, ErrInsufficientData
	}
	if name == "" {
		name = code
	}

	price := closes[len(closes)-1]
	rsi := ta.RSI(closes, RSIPeriod)
	mid, up, low := ta.Bollinger(closes, BollingerPeriod, BollingerK)
	width := 0.0
	if mid != 0 {
		width = (up - low) / mid * 100
	}

	ma5Series := ta.SMASeries(closes, MAPeriods[0])
	ma20Series := ta.SMASeries(closes, MAPeriods[1])
	ma5, ma20 := ma5Series[len(ma5Series)-1], ma20Series[len(ma20Series)-1]
	ma60 := ta.SMA(closes, MAPeriods[2])
	ma120 := ta.SMA(closes, MAPeriods[3])
	golden, dead := DetectCrosses(ma5Series, ma20Series, CrossWindow)

	return Result{
		Code:         code,
		Name:         name,
		CurrentPrice: price,
		RSI:          round2(rsi),
		RSIStatus:    ClassifyRSI(rsi),
		BBUpper:      round2(up),
		BBMiddle:     round2(mid),
		BBLower:      round2(low),
		BBWidth:      round2(width),
		BBStatus:     ClassifyBollinger(price, up, mid, low),
		MA5:          round2(ma5),
		MA20:         round2(ma20),
		MA60:         round2(ma60),
		MA120:        round2(ma120),
		MAStatus:     ClassifyMA(ma5, ma20, ma60, ma120),
		Trend:        ClassifyTrend(price, ma20, ma60, rsi),
		GoldenCross:  golden,
		DeadCross:    dead,
	}, nil
}

// DetectCrosses walks adjacent pairs among the last n points of fast-slow.
// A sign change from negative to positive is a golden cross and the reverse
// a dead cross. Points with an undefined average are skipped.
func DetectCrosses(fast, slow []float64, n int) (golden, dead bool) {
	size := len(fast)
	if len(slow) < size {
		size = len(slow)
	}
	start := size - n
	if start < 0 {
		start = 0
	}
	for i := start + 1; i < size; i++ {
		prev := fast[i-1] - slow[i-1]
		curr := fast[i] - slow[i]
		if math.IsNaN(prev) || math.IsNaN(curr) {
			continue
		}
		if prev < 0 && curr > 0 {
			golden = true
		}
		if prev > 0 && curr < 0 {
			dead = true
		}
	}
	return golden, dead
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

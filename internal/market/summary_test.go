package market

import (
	"reflect"
	"testing"

	"invest-dashboard/internal/indicator"
)

func result(name string, rsi float64, trend indicator.Trend) indicator.Result {
	return indicator.Result{
		Code:      name,
		Name:      name,
		RSI:       rsi,
		RSIStatus: indicator.ClassifyRSI(rsi),
		Trend:     trend,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Overall != RegimeInsufficient {
		t.Errorf("overall = %q", s.Overall)
	}
	if s.AvgRSI != 50 {
		t.Errorf("avg rsi = %v, want 50", s.AvgRSI)
	}
	if s.OversoldCount+s.OverboughtCount+s.UptrendCount+s.DowntrendCount != 0 {
		t.Errorf("counts not zero: %+v", s)
	}
	if s.OversoldStocks == nil || len(s.OversoldStocks) != 0 || len(s.GoldenCrossStocks) != 0 {
		t.Errorf("lists should be empty and non-nil: %+v", s)
	}
}

func TestSummarizeThreeSymbolScenario(t *testing.T) {
	s := Summarize([]indicator.Result{
		result("A", 25, indicator.TrendSideways),
		result("B", 50, indicator.TrendSideways),
		result("C", 85, indicator.TrendSideways),
	})
	if s.OversoldCount != 1 || s.OverboughtCount != 1 {
		t.Errorf("oversold=%d overbought=%d, want 1/1", s.OversoldCount, s.OverboughtCount)
	}
	if s.AvgRSI != 53.33 {
		t.Errorf("avg rsi = %v, want 53.33", s.AvgRSI)
	}
	if s.Overall != RegimeMixed {
		t.Errorf("overall = %q, want %q", s.Overall, RegimeMixed)
	}
	if !reflect.DeepEqual(s.OversoldStocks, []string{"A"}) || !reflect.DeepEqual(s.OverboughtStocks, []string{"C"}) {
		t.Errorf("lists = %v / %v", s.OversoldStocks, s.OverboughtStocks)
	}
}

func TestRegimePrecedence(t *testing.T) {
	var rs []indicator.Result
	for i := 0; i < 5; i++ {
		rs = append(rs, result(string(rune('A'+i)), 75, indicator.TrendUp))
	}
	rs = append(rs, result("F", 75, indicator.TrendDown))
	s := Summarize(rs)
	if s.AvgRSI != 75 {
		t.Fatalf("avg rsi = %v", s.AvgRSI)
	}
	if s.UptrendCount != 5 || s.DowntrendCount != 1 {
		t.Errorf("trend counts = %d/%d", s.UptrendCount, s.DowntrendCount)
	}
	if s.Overall != RegimeOverbought {
		t.Errorf("overall = %q, want %q", s.Overall, RegimeOverbought)
	}
}

func TestClassifyRegime(t *testing.T) {
	tests := []struct {
		name     string
		avg      float64
		up, down int
		want     Regime
	}{
		{"overbought boundary", 70, 0, 5, RegimeOverbought},
		{"oversold boundary", 30, 5, 0, RegimeOversold},
		{"bullish", 55, 3, 1, RegimeBullish},
		{"bullish needs more than double", 55, 2, 1, RegimeMixed},
		{"bearish", 45, 0, 1, RegimeBearish},
		{"balanced", 50, 0, 0, RegimeMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyRegime(tt.avg, tt.up, tt.down); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummaryListsMatchThresholdFilter(t *testing.T) {
	rs := []indicator.Result{
		result("A", 12, indicator.TrendDown),
		result("B", 30, indicator.TrendDown),
		result("C", 30.01, indicator.TrendSideways),
		result("D", 69.99, indicator.TrendUp),
		result("E", 70, indicator.TrendUp),
		result("F", 99, indicator.TrendUp),
	}
	s := Summarize(rs)

	var oversold, overbought []string
	for _, r := range rs {
		if r.RSIStatus == indicator.RSIStatusOversold {
			oversold = append(oversold, r.Name)
		}
		if r.RSIStatus == indicator.RSIStatusOverbought {
			overbought = append(overbought, r.Name)
		}
	}
	if !reflect.DeepEqual(s.OversoldStocks, oversold) {
		t.Errorf("oversold %v, status filter gives %v", s.OversoldStocks, oversold)
	}
	if !reflect.DeepEqual(s.OverboughtStocks, overbought) {
		t.Errorf("overbought %v, status filter gives %v", s.OverboughtStocks, overbought)
	}
}

func TestSummarizeCrossLists(t *testing.T) {
	a := result("A", 50, indicator.TrendUp)
	a.GoldenCross = true
	b := result("B", 50, indicator.TrendDown)
	b.DeadCross = true
	s := Summarize([]indicator.Result{a, b})
	if !reflect.DeepEqual(s.GoldenCrossStocks, []string{"A"}) || !reflect.DeepEqual(s.DeadCrossStocks, []string{"B"}) {
		t.Errorf("cross lists = %v / %v", s.GoldenCrossStocks, s.DeadCrossStocks)
	}
}

func TestRegimeUsesUnroundedAverage(t *testing.T) {
	cases := []struct {
		name string
		rsis []float64
		avg  float64
	}{
		{"just under overbought", []float64{69.99, 70, 70}, 70},
		{"just over oversold", []float64{30.01, 30, 30}, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var results []indicator.Result
			for i, v := range tc.rsis {
				results = append(results, result(string(rune('A'+i)), v, indicator.TrendSideways))
			}
			s := Summarize(results)
			if s.AvgRSI != tc.avg {
				t.Errorf("avg rsi = %v, want %v", s.AvgRSI, tc.avg)
			}
			if s.Overall != RegimeMixed {
				t.Errorf("overall = %q, want %q", s.Overall, RegimeMixed)
			}
		})
	}
}

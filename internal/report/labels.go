package report

import (
	"invest-dashboard/internal/indicator"
	"invest-dashboard/internal/market"
)

var rsiLabels = map[indicator.RSIStatus]string{
	indicator.RSIStatusOverbought: "과매수",
	indicator.RSIStatusBuyBias:    "매수우위",
	indicator.RSIStatusNeutral:    "중립",
	indicator.RSIStatusSellBias:   "매도우위",
	indicator.RSIStatusOversold:   "과매도",
}

var bandLabels = map[indicator.BollingerPosition]string{
	indicator.BandUpperBreakout:    "상단돌파",
	indicator.BandLowerBreakdown:   "하단이탈",
	indicator.BandApproachingUpper: "상단접근",
	indicator.BandApproachingLower: "하단접근",
	indicator.BandMidline:          "중심선",
}

var maLabels = map[indicator.MAArrangement]string{
	indicator.MABullishAlignment: "정배열",
	indicator.MABearishAlignment: "역배열",
	indicator.MAShortTermBullish: "단기상승",
	indicator.MAShortTermBearish: "단기하락",
	indicator.MAMixed:            "혼조",
}

var trendLabels = map[indicator.Trend]string{
	indicator.TrendUp:       "상승추세",
	indicator.TrendDown:     "하락추세",
	indicator.TrendSideways: "횡보",
}

var regimeLabels = map[market.Regime]string{
	market.RegimeOverbought:   "과매수 구간 - 조정 가능성",
	market.RegimeOversold:     "과매도 구간 - 반등 가능성",
	market.RegimeBullish:      "상승 우위 - 매수 관점 유리",
	market.RegimeBearish:      "하락 우위 - 관망 또는 방어적 접근",
	market.RegimeMixed:        "혼조세 - 종목별 선별 접근",
	market.RegimeInsufficient: "데이터 부족",
}

func label[K ~string](m map[K]string, k K) string {
	if s, ok := m[k]; ok {
		return s
	}
	return string(k)
}

func RSILabel(s indicator.RSIStatus) string { return label(rsiLabels, s) }
func BandLabel(s indicator.BollingerPosition) string { return label(bandLabels, s) }
func MALabel(s indicator.MAArrangement) string { return label(maLabels, s) }
func TrendLabel(s indicator.Trend) string { return label(trendLabels, s) }
func RegimeLabel(r market.Regime) string { return label(regimeLabels, r) }

// Localize returns copies of results with their labels in Korean, the form
// the dashboard renders.
func Localize(results []indicator.Result) []indicator.Result {
	out := make([]indicator.Result, len(results))
	for i, r := range results {
		r.RSIStatus = indicator.RSIStatus(RSILabel(r.RSIStatus))
		r.BBStatus = indicator.BollingerPosition(BandLabel(r.BBStatus))
		r.MAStatus = indicator.MAArrangement(MALabel(r.MAStatus))
		r.Trend = indicator.Trend(TrendLabel(r.Trend))
		out[i] = r
	}
	return out
}

// LocalizeSummary returns s with the regime label in Korean.
func LocalizeSummary(s market.Summary) market.Summary {
	s.Overall = market.Regime(RegimeLabel(s.Overall))
	return s
}

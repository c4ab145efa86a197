package report

import (
	"fmt"
	"strings"
	"time"

	"invest-dashboard/internal/types"
)

var defaultThemes = []HotTheme{
	{Name: "2차전지", Reason: "전기차 시장 확대로 수혜 예상", KospiLeader: "LG에너지솔루션", KosdaqLeader: "에코프로비엠"},
	{Name: "반도체", Reason: "AI 수요 증가로 메모리 반도체 수혜", KospiLeader: "삼성전자", KosdaqLeader: "리노공업"},
	{Name: "바이오", Reason: "신약 개발 모멘텀 지속", KospiLeader: "삼성바이오로직스", KosdaqLeader: "셀트리온헬스케어"},
}

var defaultRisks = []string{"글로벌 금리 인상", "지정학적 리스크", "경기 둔화 우려"}

var defaultActions = []string{
	"시장 변동성 확대에 대비하여 현금 비중 유지",
	"과매도 구간 진입 시 분할 매수 고려",
	"리스크 관리를 위한 손절가 설정",
}

const defaultRecommendation = "시장 변동성이 높은 상황에서 분할 매수/매도 전략을 권장합니다."

func direction(change float64) string {
	if change >= 0 {
		return "상승"
	}
	return "하락"
}

// Fallback builds the templated report. It reads only its arguments, so the
// result is fully determined by in and now.
func Fallback(in Input, now time.Time) Report {
	kospi := findIndex(in.Indices, "코스피")
	kosdaq := findIndex(in.Indices, "코스닥")
	nasdaq := findIndex(in.Indices, "나스닥")
	overall := RegimeLabel(in.Summary.Overall)

	summary := fmt.Sprintf("오늘 코스피는 %spt로 %s(%+.2f%%), 코스닥은 %spt로 %s(%+.2f%%) 마감했습니다. 기술적으로는 %s 상황입니다.",
		number(kospi.Value), direction(kospi.Change), kospi.ChangePercent,
		number(kosdaq.Value), direction(kosdaq.Change), kosdaq.ChangePercent,
		overall)

	titles := make([]string, 0, 3)
	for _, n := range in.News {
		if len(titles) == 3 {
			break
		}
		titles = append(titles, n.Title)
	}

	return Report{
		Summary:        summary,
		NewsAnalysis:   fmt.Sprintf("주요 뉴스: %s. 시장에 영향을 미치고 있습니다.", strings.Join(titles, ", ")),
		KospiAnalysis:  indexAnalysis("코스피는", kospi),
		KosdaqAnalysis: indexAnalysis("코스닥은", kosdaq),
		NasdaqAnalysis: fmt.Sprintf("나스닥은 %spt로 %+.2f%% 변동했습니다.", number(nasdaq.Value), nasdaq.ChangePercent),
		TechnicalSummary: TechnicalSummary{
			Overall:          overall,
			AvgRSI:           in.Summary.AvgRSI,
			RSIStatus:        fmt.Sprintf("평균 RSI %.1f", in.Summary.AvgRSI),
			BollingerStatus:  "밴드 내 움직임",
			MAStatus:         "혼조세",
			OversoldStocks:   nonNil(in.Summary.OversoldStocks),
			OverboughtStocks: nonNil(in.Summary.OverboughtStocks),
		},
		MarketSentiment: SentimentNeutral,
		HotThemes:       append([]HotTheme(nil), defaultThemes...),
		RiskFactors:     append([]string(nil), defaultRisks...),
		ActionItems:     append([]string(nil), defaultActions...),
		Recommendation:  defaultRecommendation,
		GeneratedAt:     now.Format(TimeLayout),
		Fallback:        true,
	}
}

func indexAnalysis(subject string, q types.IndexQuote) string {
	return fmt.Sprintf("%s %spt로 전일 대비 %spt(%+.2f%%) %s했습니다.",
		subject, number(q.Value), signed(q.Change), q.ChangePercent, direction(q.Change))
}

// Markdown renders r in the section layout the streaming prompt asks for.
func Markdown(r Report) string {
	var b strings.Builder
	b.WriteString("## 오늘의 시황 요약\n")
	b.WriteString(r.Summary + "\n\n")
	b.WriteString("## 시장 심리\n")
	b.WriteString(r.MarketSentiment + "\n\n")
	b.WriteString("## 지수별 분석\n\n")
	b.WriteString("### 코스피\n" + r.KospiAnalysis + "\n\n")
	b.WriteString("### 코스닥\n" + r.KosdaqAnalysis + "\n\n")
	b.WriteString("### 나스닥\n" + r.NasdaqAnalysis + "\n\n")
	b.WriteString("## 기술적 지표 해석\n")
	ts := r.TechnicalSummary
	fmt.Fprintf(&b, "- 종합: %s\n- RSI: %s\n- 볼린저밴드: %s\n- 이동평균선: %s\n\n",
		ts.Overall, ts.RSIStatus, ts.BollingerStatus, ts.MAStatus)
	b.WriteString("## 유망 테마 TOP 3\n\n")
	for i, t := range r.HotThemes {
		fmt.Fprintf(&b, "### %d. %s\n- 유망 이유: %s\n- 코스피 대장주: %s\n- 코스닥 대장주: %s\n\n",
			i+1, t.Name, t.Reason, t.KospiLeader, t.KosdaqLeader)
	}
	b.WriteString("## 리스크 요인\n")
	for _, f := range r.RiskFactors {
		b.WriteString("- " + f + "\n")
	}
	b.WriteString("\n## 투자 전략 제안\n")
	for _, a := range r.ActionItems {
		b.WriteString("- " + a + "\n")
	}
	b.WriteString(r.Recommendation + "\n")
	return b.String()
}

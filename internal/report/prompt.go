package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"invest-dashboard/internal/indicator"
	"invest-dashboard/internal/market"
)

// Headline counts fed to each prompt.
const (
	PromptNewsLimit    = 15
	StreamingNewsLimit = 10
)

const personaPrompt = `당신은 10년 이상 경력의 증권사 리서치센터 수석 애널리스트입니다.

역할:
- 개인 투자자에게 전문적인 시황 분석과 투자 전략을 제공
- 기술적 지표와 뉴스를 종합하여 시장 상황을 심층 분석
- 유망 테마와 대장주를 발굴하여 투자 아이디어 제공

중요 - 일관된 판단 기준 (반드시 이 기준으로 판단):
1. 시장 심리:
   - RSI 30 이하 + 지수 -2% 이상 하락 = "공포"
   - RSI 30-40 + 지수 하락 = "불안"
   - RSI 40-60 = "중립"
   - RSI 60-70 + 지수 상승 = "낙관"
   - RSI 70 이상 + 지수 +2% 이상 상승 = "탐욕"

2. 투자 전략:
   - RSI 30 이하: 분할 매수 구간
   - RSI 70 이상: 차익실현 고려
   - 이동평균선 정배열: 상승 추세
   - 이동평균선 역배열: 하락 추세
`

// SystemPrompt asks for a JSON-only answer.
const SystemPrompt = personaPrompt + `
3. 유망 테마 선정 기준:
   - 최근 뉴스에서 자주 언급되는 섹터
   - 정부 정책 수혜 섹터
   - 글로벌 트렌드 관련 섹터
   - 반드시 뉴스 근거를 제시

응답 스타일:
- 데이터와 수치에 기반한 객관적 분석
- 구체적인 근거와 함께 제시
- 반드시 순수 JSON 형식으로만 응답 (마크다운 코드블록 없이)`

// StreamingSystemPrompt asks for markdown prose.
const StreamingSystemPrompt = personaPrompt + `
응답 스타일:
- 마크다운 형식으로 깔끔하게 정리
- 이모지 사용하지 말것
- 데이터와 수치에 기반한 객관적 분석
- 뉴스 근거와 함께 제시`

const jsonSchemaPrompt = `위 데이터를 바탕으로 다음 JSON 형식으로 분석해주세요:

{
    "summary": "오늘 시장 상황 종합 요약 (3-4문장, 핵심 이슈와 시장 분위기 포함)",
    "news_analysis": "주요 뉴스 심층 분석 (어떤 뉴스가 시장에 영향을 미쳤는지, 향후 영향 전망 포함)",
    "kospi_analysis": "코스피 상세 분석 (등락 원인, 외국인/기관 수급 추정, 주요 섹터 동향)",
    "kosdaq_analysis": "코스닥 상세 분석 (등락 원인, 테마주 동향, 중소형주 흐름)",
    "nasdaq_analysis": "나스닥 분석 및 국내 영향 (기술주 동향, 국내 시장 영향도)",
    "technical_analysis": {
        "overall": "기술적 지표 종합 판단 (과매수/과매도/중립 등)",
        "rsi_comment": "RSI 기반 분석 코멘트",
        "bb_comment": "볼린저밴드 기반 분석 코멘트",
        "ma_comment": "이동평균선 기반 분석 코멘트"
    },
    "market_sentiment": "현재 시장 심리 (공포/불안/중립/낙관/탐욕 중 하나)",
    "hot_themes": [
        {
            "name": "테마명",
            "reason": "해당 테마가 유망한 이유 (구체적 뉴스/이벤트 기반)",
            "kospi_leader": "코스피 대장주 (종목명)",
            "kosdaq_leader": "코스닥 대장주 (종목명)"
        }
    ],
    "risk_factors": ["리스크 요인 1", "리스크 요인 2", "리스크 요인 3"],
    "action_items": ["구체적인 투자 액션 1", "구체적인 투자 액션 2", "구체적인 투자 액션 3"],
    "recommendation": "종합 투자 전략 (현재 시장 상황에서 어떻게 대응해야 하는지 2-3문장)"
}

유망 테마는 반드시 3개를 제시해주세요. 뉴스와 시장 상황을 고려하여 현실적인 테마와 대장주를 추천해주세요.`

const markdownLayoutPrompt = `중요: 위에서 제공한 데이터만을 근거로 분석하세요. 주관적 추측보다 수치 기반 판단을 우선하세요.

다음 형식으로 분석해주세요:

## 오늘의 시황 요약
(3-4문장으로 핵심 이슈와 시장 분위기 요약 - 뉴스 헤드라인 근거 인용)

## 시장 심리
(공포/불안/중립/낙관/탐욕 중 하나 - RSI와 지수 등락률 기준으로 판단하고 그 근거 명시)

## 지수별 분석

### 코스피
(등락 원인, 외국인/기관 수급 추정, 주요 섹터 동향)

### 코스닥
(등락 원인, 테마주 동향, 중소형주 흐름)

### 나스닥
(기술주 동향, 국내 시장 영향도)

## 기술적 지표 해석
(RSI, 볼린저밴드, 이동평균선 분석 및 시사점)

## 유망 테마 TOP 3
(테마마다 유망 이유, 코스피 대장주, 코스닥 대장주)

## 리스크 요인
(리스크 3가지)

## 투자 전략 제안
(현재 시장 상황에서 어떻게 대응해야 하는지 구체적 액션 포함)`

// BuildPrompt renders the user prompt for a JSON report.
func BuildPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("다음 시장 데이터를 분석하여 전문 애널리스트 수준의 시황 리포트를 작성해주세요.\n\n")
	writeData(&b, in, PromptNewsLimit)
	b.WriteString("\n\n")
	b.WriteString(jsonSchemaPrompt)
	return b.String()
}

// BuildStreamingPrompt renders the user prompt for a markdown report.
func BuildStreamingPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("다음 시장 데이터를 분석하여 전문 애널리스트 수준의 시황 리포트를 작성해주세요.\n\n")
	b.WriteString("## 데이터 출처\n- 지수 데이터: 네이버 금융 실시간 시세\n- 뉴스: 네이버 금융 뉴스 섹션\n- 기술적 지표: 종목별 계산 값\n\n")
	writeData(&b, in, StreamingNewsLimit)
	b.WriteString("\n\n")
	b.WriteString(markdownLayoutPrompt)
	return b.String()
}

func writeData(b *strings.Builder, in Input, newsLimit int) {
	b.WriteString("## 주요 지수 (실시간)\n")
	for _, q := range in.Indices {
		fmt.Fprintf(b, "- %s: %s (%s, %+.2f%%)\n", q.Name, number(q.Value), signed(q.Change), q.ChangePercent)
	}

	b.WriteString("\n## 주요 뉴스 헤드라인\n")
	for i, n := range in.News {
		if i >= newsLimit {
			break
		}
		fmt.Fprintf(b, "- [%s] %s\n", n.Source, n.Title)
	}

	b.WriteString("\n")
	b.WriteString(TechnicalBlock(in.Results, in.Summary))

	if len(in.Holdings) > 0 {
		b.WriteString("\n\n## 사용자 보유 종목\n")
		b.WriteString(strings.Join(in.Holdings, ", "))
	}
}

// TechnicalBlock renders the indicator section of a prompt.
func TechnicalBlock(results []indicator.Result, s market.Summary) string {
	if len(results) == 0 {
		return "기술적 지표 데이터 없음"
	}

	lines := []string{
		"## 기술적 지표 분석",
		"- 시장 종합: " + RegimeLabel(s.Overall),
		fmt.Sprintf("- 평균 RSI: %.2f (30이하 과매도, 70이상 과매수)", s.AvgRSI),
		fmt.Sprintf("- 과매도 종목: %d개 (%s)", s.OversoldCount, namesOrNone(s.OversoldStocks)),
		fmt.Sprintf("- 과매수 종목: %d개 (%s)", s.OverboughtCount, namesOrNone(s.OverboughtStocks)),
		fmt.Sprintf("- 상승추세 종목: %d개, 하락추세 종목: %d개", s.UptrendCount, s.DowntrendCount),
	}
	if len(s.GoldenCrossStocks) > 0 {
		lines = append(lines, "- 골든크로스 발생: "+strings.Join(s.GoldenCrossStocks, ", "))
	}
	if len(s.DeadCrossStocks) > 0 {
		lines = append(lines, "- 데드크로스 발생: "+strings.Join(s.DeadCrossStocks, ", "))
	}

	lines = append(lines, "", "### 종목별 상세")
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s: RSI %.2f(%s), 볼린저 %s, 이평선 %s, 추세 %s",
			r.Name, r.RSI, RSILabel(r.RSIStatus), BandLabel(r.BBStatus), MALabel(r.MAStatus), TrendLabel(r.Trend)))
	}
	return strings.Join(lines, "\n")
}

func namesOrNone(names []string) string {
	if len(names) == 0 {
		return "없음"
	}
	return strings.Join(names, ", ")
}

// number formats v with thousands separators and two decimals.
func number(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// signed is number with an explicit plus sign for non-negative values.
func signed(v float64) string {
	if v >= 0 {
		return "+" + number(v)
	}
	return number(v)
}

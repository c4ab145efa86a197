package indicator

// Threshold table shared by per-symbol labels and the market summary.
const (
	RSIPeriod     = 14
	RSIOverbought = 70.0
	RSIBuyBias    = 60.0
	RSISellBias   = 40.0
	RSIOversold   = 30.0
	// RSITrendPivot splits up and down trends.
	RSITrendPivot = 50.0

	BollingerPeriod = 20
	BollingerK      = 2.0

	// CrossWindow is the number of trailing MA5/MA20 points inspected for crosses.
	CrossWindow = 5

	// MinBars is the longest moving-average window.
	MinBars = 120
)

// MAPeriods are the simple moving averages reported per symbol.
var MAPeriods = [4]int{5, 20, 60, 120}

type RSIStatus string

const (
	RSIStatusOverbought RSIStatus = "overbought"
	RSIStatusBuyBias    RSIStatus = "buy-bias"
	RSIStatusNeutral    RSIStatus = "neutral"
	RSIStatusSellBias   RSIStatus = "sell-bias"
	RSIStatusOversold   RSIStatus = "oversold"
)

type BollingerPosition string

const (
	BandUpperBreakout    BollingerPosition = "upper breakout"
	BandLowerBreakdown   BollingerPosition = "lower breakdown"
	BandApproachingUpper BollingerPosition = "approaching upper"
	BandApproachingLower BollingerPosition = "approaching lower"
	BandMidline          BollingerPosition = "at midline"
)

type MAArrangement string

const (
	MABullishAlignment MAArrangement = "bullish alignment"
	MABearishAlignment MAArrangement = "bearish alignment"
	MAShortTermBullish MAArrangement = "short-term bullish"
	MAShortTermBearish MAArrangement = "short-term bearish"
	MAMixed            MAArrangement = "mixed"
)

type Trend string

const (
	TrendUp       Trend = "uptrend"
	TrendDown     Trend = "downtrend"
	TrendSideways Trend = "sideways"
)

func IsOverbought(rsi float64) bool { return rsi >= RSIOverbought }

func IsOversold(rsi float64) bool { return rsi <= RSIOversold }

// ClassifyRSI checks the extremes before the softer bias thresholds.
func ClassifyRSI(rsi float64) RSIStatus {
	switch {
	case IsOverbought(rsi):
		return RSIStatusOverbought
	case IsOversold(rsi):
		return RSIStatusOversold
	case rsi >= RSIBuyBias:
		return RSIStatusBuyBias
	case rsi <= RSISellBias:
		return RSIStatusSellBias
	default:
		return RSIStatusNeutral
	}
}

func ClassifyBollinger(price, upper, middle, lower float64) BollingerPosition {
	switch {
	case price > upper:
		return BandUpperBreakout
	case price < lower:
		return BandLowerBreakdown
	case price > middle:
		return BandApproachingUpper
	case price < middle:
		return BandApproachingLower
	default:
		return BandMidline
	}
}

func ClassifyMA(ma5, ma20, ma60, ma120 float64) MAArrangement {
	switch {
	case ma5 > ma20 && ma20 > ma60 && ma60 > ma120:
		return MABullishAlignment
	case ma5 < ma20 && ma20 < ma60 && ma60 < ma120:
		return MABearishAlignment
	case ma5 > ma20 && ma20 > ma60:
		return MAShortTermBullish
	case ma5 < ma20 && ma20 < ma60:
		return MAShortTermBearish
	default:
		return MAMixed
	}
}

func ClassifyTrend(price, ma20, ma60, rsi float64) Trend {
	switch {
	case price > ma20 && price > ma60 && rsi > RSITrendPivot:
		return TrendUp
	case price < ma20 && price < ma60 && rsi < RSITrendPivot:
		return TrendDown
	default:
		return TrendSideways
	}
}

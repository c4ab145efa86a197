package types

import "time"

// Bar is one trading day of OHLCV data.
type Bar struct {
	Date                            time.Time
	Open, High, Low, Close, Volume float64
}

type Stock struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type IndexQuote struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

type StockQuote struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	CurrentPrice  int64   `json:"currentPrice"`
	Change        int64   `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
}

type NewsItem struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	Time    string `json:"time"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

type Account struct {
	AccountNo       string  `json:"accountNo"`
	TotalDeposit    int64   `json:"totalDeposit"`
	TotalEvaluation int64   `json:"totalEvaluation"`
	TotalProfit     int64   `json:"totalProfit"`
	ProfitPercent   float64 `json:"profitPercent"`
}

type Holding struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	AvgPrice      int64   `json:"avgPrice"`
	CurrentPrice  int64   `json:"currentPrice"`
	Profit        int64   `json:"profit"`
	ProfitPercent float64 `json:"profitPercent"`
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// PriceType follows the Korean exchange order-type codes.
type PriceType string

const (
	PriceLimit  PriceType = "00"
	PriceMarket PriceType = "03"
)

// OrderReq is a broker order. Tag carries a short reason such as 손절.
type OrderReq struct {
	Side       Side
	Code       string
	Quantity   int
	Price      int64
	PriceType  PriceType
	Tag        string
	StrategyID string
}

type OrderResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderNo string `json:"order_no"`
}

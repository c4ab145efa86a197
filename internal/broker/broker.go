// Package broker holds what the broker backends share. The backends live in
// the mock, kiwoom and kite subpackages; brokerobs decorates any of them.
package broker

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"invest-dashboard/internal/types"
)

// Modes accepted in Params.Mode.
const (
	ModeDryRun = "DRY_RUN"
	ModeLive   = "LIVE"
)

var (
	ErrNotConnected  = errors.New("broker not connected")
	ErrMissingCreds  = errors.New("missing broker credentials")
	ErrInvalidOrder  = errors.New("invalid order")
	ErrOrderRejected = errors.New("order rejected by broker")
)

// Params configures a real backend.
type Params struct {
	Mode        string
	BaseURL     string
	AppKey      string
	AppSecret   string
	AccessToken string
	AccountNo   string
	Exchange    string
	Timeout     time.Duration
}

func (p Params) DryRun() bool { return p.Mode != ModeLive }

// MaskAccount hides all but the last four digits. Short or empty numbers get
// a placeholder tail.
func MaskAccount(no string) string {
	if len(no) < 4 {
		return "********1234"
	}
	return "********" + no[len(no)-4:]
}

// Validate checks an order before it reaches a backend.
func Validate(req types.OrderReq) error {
	if req.Side != types.SideBuy && req.Side != types.SideSell {
		return fmt.Errorf("%w: side must be buy or sell, got %q", ErrInvalidOrder, req.Side)
	}
	if strings.TrimSpace(req.Code) == "" {
		return fmt.Errorf("%w: stock code required", ErrInvalidOrder)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}
	if req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidOrder)
	}
	return nil
}

// PriceTypeFor maps a zero price to a market order and anything else to a
// limit order.
func PriceTypeFor(price int64) types.PriceType {
	if price == 0 {
		return types.PriceMarket
	}
	return types.PriceLimit
}

var simSeq atomic.Int64

// SimulatedOrder is the response for orders that never leave the process
// in DRY_RUN mode.
func SimulatedOrder(req types.OrderReq) types.OrderResp {
	n := time.Now().UnixNano() + simSeq.Add(1)
	return types.OrderResp{
		Success: true,
		Message: fmt.Sprintf("dry-run: %s %d shares of %s", req.Side, req.Quantity, req.Code),
		OrderNo: fmt.Sprintf("SIM-%d", n),
	}
}

// ProfitPercent is profit over cost in percent, rounded to two places.
func ProfitPercent(profit, cost decimal.Decimal) float64 {
	if cost.IsZero() {
		return 0
	}
	f, _ := profit.Div(cost).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return f
}

// HoldingFrom fills profit and profit percent from quantity and prices.
func HoldingFrom(code, name string, qty int, avg, current int64) types.Holding {
	q := decimal.NewFromInt(int64(qty))
	cost := decimal.NewFromInt(avg).Mul(q)
	profit := decimal.NewFromInt(current).Sub(decimal.NewFromInt(avg)).Mul(q)
	return types.Holding{
		Code:          code,
		Name:          name,
		Quantity:      qty,
		AvgPrice:      avg,
		CurrentPrice:  current,
		Profit:        profit.IntPart(),
		ProfitPercent: ProfitPercent(profit, cost),
	}
}

package kite

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"invest-dashboard/internal/broker"
	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/types"
)

// Client adapts Zerodha Kite Connect to the dashboard's broker contract.
// Rupee amounts are rounded to whole units.
type Client struct {
	p    broker.Params
	kite *kiteconnect.Client

	mu        sync.Mutex
	connected bool
}

var _ interfaces.Broker = (*Client)(nil)

func New(p broker.Params) *Client {
	if p.Exchange == "" {
		p.Exchange = kiteconnect.ExchangeNSE
	}
	kc := kiteconnect.New(p.AppKey)
	kc.SetAccessToken(p.AccessToken)
	if p.BaseURL != "" {
		kc.SetBaseURI(p.BaseURL)
	}
	if p.Timeout > 0 {
		kc.SetHTTPClient(&http.Client{Timeout: p.Timeout})
	}
	return &Client{p: p, kite: kc}
}

func (c *Client) Name() string { return "KITE" }

// Connect verifies the access token against the user profile.
func (c *Client) Connect(ctx context.Context) error {
	if c.p.AppKey == "" || c.p.AccessToken == "" {
		return fmt.Errorf("kite: %w", broker.ErrMissingCreds)
	}
	profile, err := c.kite.GetUserProfile()
	if err != nil {
		return fmt.Errorf("kite profile: %w", err)
	}
	c.mu.Lock()
	c.connected = true
	if c.p.AccountNo == "" {
		c.p.AccountNo = profile.UserID
	}
	c.mu.Unlock()
	return nil
}

func (c *Client) Disconnect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func rupees(v float64) int64 {
	return decimal.NewFromFloat(v).Round(0).IntPart()
}

func (c *Client) Holdings(ctx context.Context) ([]types.Holding, error) {
	hs, err := c.kite.GetHoldings()
	if err != nil {
		return nil, fmt.Errorf("kite holdings: %w", err)
	}
	out := make([]types.Holding, 0, len(hs))
	for _, h := range hs {
		cost := decimal.NewFromFloat(h.AveragePrice).Mul(decimal.NewFromInt(int64(h.Quantity)))
		pnl := decimal.NewFromFloat(h.PnL)
		out = append(out, types.Holding{
			Code:          h.Tradingsymbol,
			Name:          h.Tradingsymbol,
			Quantity:      h.Quantity,
			AvgPrice:      rupees(h.AveragePrice),
			CurrentPrice:  rupees(h.LastPrice),
			Profit:        pnl.Round(0).IntPart(),
			ProfitPercent: broker.ProfitPercent(pnl, cost),
		})
	}
	return out, nil
}

// Account combines equity margins with holdings valuation.
func (c *Client) Account(ctx context.Context) (types.Account, error) {
	margins, err := c.kite.GetUserMargins()
	if err != nil {
		return types.Account{}, fmt.Errorf("kite margins: %w", err)
	}
	hs, err := c.kite.GetHoldings()
	if err != nil {
		return types.Account{}, fmt.Errorf("kite holdings: %w", err)
	}

	value, cost, pnl := decimal.Zero, decimal.Zero, decimal.Zero
	for _, h := range hs {
		q := decimal.NewFromInt(int64(h.Quantity))
		value = value.Add(decimal.NewFromFloat(h.LastPrice).Mul(q))
		cost = cost.Add(decimal.NewFromFloat(h.AveragePrice).Mul(q))
		pnl = pnl.Add(decimal.NewFromFloat(h.PnL))
	}

	c.mu.Lock()
	accountNo := c.p.AccountNo
	c.mu.Unlock()
	return types.Account{
		AccountNo:       broker.MaskAccount(accountNo),
		TotalDeposit:    rupees(margins.Equity.Available.Cash),
		TotalEvaluation: value.Round(0).IntPart(),
		TotalProfit:     pnl.Round(0).IntPart(),
		ProfitPercent:   broker.ProfitPercent(pnl, cost),
	}, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if err := broker.Validate(req); err != nil {
		return types.OrderResp{}, err
	}
	if c.p.DryRun() {
		return broker.SimulatedOrder(req), nil
	}

	params := kiteconnect.OrderParams{
		Exchange:        c.p.Exchange,
		Tradingsymbol:   req.Code,
		Validity:        kiteconnect.ValidityDay,
		Product:         kiteconnect.ProductCNC,
		OrderType:       kiteconnect.OrderTypeMarket,
		TransactionType: kiteconnect.TransactionTypeBuy,
		Quantity:        req.Quantity,
		Tag:             req.Tag,
	}
	if req.Side == types.SideSell {
		params.TransactionType = kiteconnect.TransactionTypeSell
	}
	if req.PriceType == types.PriceLimit {
		params.OrderType = kiteconnect.OrderTypeLimit
		params.Price = float64(req.Price)
	}

	resp, err := c.kite.PlaceOrder(kiteconnect.VarietyRegular, params)
	if err != nil {
		return types.OrderResp{Success: false, Message: err.Error()}, fmt.Errorf("kite order: %w", err)
	}
	return types.OrderResp{
		Success: true,
		Message: fmt.Sprintf("%s %d %s placed", params.TransactionType, req.Quantity, req.Code),
		OrderNo: resp.OrderID,
	}, nil
}

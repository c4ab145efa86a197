package kiwoom

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"invest-dashboard/internal/broker"
	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/types"
)

const (
	tokenPath   = "/oauth2/token"
	accountPath = "/api/dostk/acnt"
	orderPath   = "/api/dostk/ordr"

	apiBalance = "kt00018"
	apiBuy     = "kt10000"
	apiSell    = "kt10001"

	tradeMarket = "3"
	tradeLimit  = "0"
)

// Client talks to the Kiwoom REST API. Orders are simulated unless the
// mode is LIVE.
type Client struct {
	p    broker.Params
	http *resty.Client
	now  func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

var _ interfaces.Broker = (*Client)(nil)

func New(p broker.Params) *Client {
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	if p.Exchange == "" {
		p.Exchange = "KRX"
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(p.BaseURL, "/")).
		SetTimeout(p.Timeout).
		SetHeader("Content-Type", "application/json;charset=UTF-8")
	return &Client{p: p, http: c, now: time.Now}
}

func (c *Client) Name() string { return "KIWOOM" }

type tokenResp struct {
	Token      string `json:"token"`
	ExpiresDt  string `json:"expires_dt"`
	ReturnCode int    `json:"return_code"`
	ReturnMsg  string `json:"return_msg"`
}

// Connect issues an access token.
func (c *Client) Connect(ctx context.Context) error {
	if c.p.AppKey == "" || c.p.AppSecret == "" {
		return fmt.Errorf("kiwoom: %w", broker.ErrMissingCreds)
	}

	var out tokenResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"grant_type": "client_credentials",
			"appkey":     c.p.AppKey,
			"secretkey":  c.p.AppSecret,
		}).
		SetResult(&out).
		Post(tokenPath)
	if err != nil {
		return fmt.Errorf("kiwoom token: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("kiwoom token: http %d: %s", resp.StatusCode(), resp.String())
	}
	if out.ReturnCode != 0 || out.Token == "" {
		return fmt.Errorf("kiwoom token: %w: %s", broker.ErrOrderRejected, out.ReturnMsg)
	}

	expires, err := time.ParseInLocation("20060102150405", out.ExpiresDt, time.FixedZone("KST", 9*60*60))
	if err != nil {
		expires = c.now().Add(12 * time.Hour)
	}

	c.mu.Lock()
	c.token, c.expires = out.Token, expires
	c.mu.Unlock()
	return nil
}

func (c *Client) Disconnect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expires = time.Time{}
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != "" && c.now().Before(c.expires)
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	if !c.Connected() {
		if err := c.Connect(ctx); err != nil {
			return "", err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

type envelope struct {
	ReturnCode int    `json:"return_code"`
	ReturnMsg  string `json:"return_msg"`
}

// call posts body to path with the given api-id and decodes the reply into out.
func (c *Client) call(ctx context.Context, path, apiID string, body any, out any) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("api-id", apiID).
		SetHeader("cont-yn", "N").
		SetBody(body).
		SetResult(out).
		Post(path)
	if err != nil {
		return fmt.Errorf("kiwoom %s: %w", apiID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("kiwoom %s: http %d: %s", apiID, resp.StatusCode(), resp.String())
	}
	return nil
}

type balanceResp struct {
	envelope
	TotalPurchase   string `json:"tot_pur_amt"`
	TotalEvaluation string `json:"tot_evlt_amt"`
	TotalProfit     string `json:"tot_evlt_pl"`
	TotalRate       string `json:"tot_prft_rt"`
	DepositAssets   string `json:"prsm_dpst_aset_amt"`
	Items           []struct {
		Code     string `json:"stk_cd"`
		Name     string `json:"stk_nm"`
		Quantity string `json:"rmnd_qty"`
		AvgPrice string `json:"pur_pric"`
		Current  string `json:"cur_prc"`
		Profit   string `json:"evltv_prft"`
		Rate     string `json:"prft_rt"`
	} `json:"acnt_evlt_remn_indv_tot"`
}

func (c *Client) balance(ctx context.Context) (balanceResp, error) {
	var out balanceResp
	err := c.call(ctx, accountPath, apiBalance, map[string]string{
		"qry_tp":       "1",
		"dmst_stex_tp": c.p.Exchange,
	}, &out)
	if err != nil {
		return out, err
	}
	if out.ReturnCode != 0 {
		return out, fmt.Errorf("kiwoom %s: %w: %s", apiBalance, broker.ErrOrderRejected, out.ReturnMsg)
	}
	return out, nil
}

func (c *Client) Account(ctx context.Context) (types.Account, error) {
	b, err := c.balance(ctx)
	if err != nil {
		return types.Account{}, err
	}
	return types.Account{
		AccountNo:       broker.MaskAccount(c.p.AccountNo),
		TotalDeposit:    amount(b.DepositAssets),
		TotalEvaluation: amount(b.TotalEvaluation),
		TotalProfit:     amount(b.TotalProfit),
		ProfitPercent:   rate(b.TotalRate),
	}, nil
}

func (c *Client) Holdings(ctx context.Context) ([]types.Holding, error) {
	b, err := c.balance(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Holding, 0, len(b.Items))
	for _, it := range b.Items {
		out = append(out, types.Holding{
			Code:          strings.TrimPrefix(strings.TrimSpace(it.Code), "A"),
			Name:          strings.TrimSpace(it.Name),
			Quantity:      int(amount(it.Quantity)),
			AvgPrice:      amount(it.AvgPrice),
			CurrentPrice:  abs(amount(it.Current)),
			Profit:        amount(it.Profit),
			ProfitPercent: rate(it.Rate),
		})
	}
	return out, nil
}

type orderResp struct {
	envelope
	OrderNo string `json:"ord_no"`
}

func (c *Client) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if err := broker.Validate(req); err != nil {
		return types.OrderResp{}, err
	}
	if c.p.DryRun() {
		return broker.SimulatedOrder(req), nil
	}

	apiID := apiBuy
	if req.Side == types.SideSell {
		apiID = apiSell
	}
	trade, price := tradeLimit, strconv.FormatInt(req.Price, 10)
	if req.PriceType == types.PriceMarket {
		trade, price = tradeMarket, ""
	}

	var out orderResp
	err := c.call(ctx, orderPath, apiID, map[string]string{
		"dmst_stex_tp": c.p.Exchange,
		"stk_cd":       req.Code,
		"ord_qty":      strconv.Itoa(req.Quantity),
		"ord_uv":       price,
		"trde_tp":      trade,
		"cond_uv":      "",
	}, &out)
	if err != nil {
		return types.OrderResp{}, err
	}
	if out.ReturnCode != 0 {
		return types.OrderResp{Success: false, Message: out.ReturnMsg},
			fmt.Errorf("kiwoom %s: %w: %s", apiID, broker.ErrOrderRejected, out.ReturnMsg)
	}
	return types.OrderResp{Success: true, Message: out.ReturnMsg, OrderNo: out.OrderNo}, nil
}

// amount parses Kiwoom's zero-padded signed integers ("-000000012345").
func amount(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func rate(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}


package trade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/types"
)

// Sell reasons.
const (
	ReasonLossCut    = "손절"
	ReasonProfitTake = "익절"
)

const stopTimeout = 5 * time.Second

type Status struct {
	Running          bool   `json:"running"`
	ActiveStrategies int    `json:"activeStrategies"`
	TotalStrategies  int    `json:"totalStrategies"`
	LastRun          string `json:"lastRun,omitempty"`
}

// AutoTrader evaluates enabled strategies on a fixed interval while the
// market is open.
type AutoTrader struct {
	broker     interfaces.Broker
	strategies *StrategyStore
	history    History
	interval   time.Duration
	now        func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	lastRun time.Time
}

func NewAutoTrader(b interfaces.Broker, s *StrategyStore, h History, interval time.Duration) *AutoTrader {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if h == nil {
		h = NewMemoryHistory()
	}
	return &AutoTrader{broker: b, strategies: s, history: h, interval: interval, now: time.Now}
}

// Start schedules the evaluation loop. It reports false when already running.
func (a *AutoTrader) Start(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cron != nil {
		return false, nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	spec := fmt.Sprintf("@every %ds", int(a.interval/time.Second))
	if _, err := c.AddFunc(spec, func() {
		if err := a.RunOnce(runCtx); err != nil {
			logger.ErrorWithErr(runCtx, "Auto-trade cycle failed", err)
		}
	}); err != nil {
		cancel()
		return false, fmt.Errorf("schedule auto-trade: %w", err)
	}
	c.Start()
	a.cron, a.cancel = c, cancel

	logger.Info(ctx, "Auto-trade started", "interval", a.interval.String())
	return true, nil
}

// Stop halts the schedule and waits briefly for a running cycle to finish.
func (a *AutoTrader) Stop(ctx context.Context) {
	a.mu.Lock()
	c, cancel := a.cron, a.cancel
	a.cron, a.cancel = nil, nil
	a.mu.Unlock()
	if c == nil {
		return
	}

	cancel()
	select {
	case <-c.Stop().Done():
	case <-time.After(stopTimeout):
		logger.Warn(ctx, "Auto-trade cycle still running after stop timeout")
	}
	logger.Info(ctx, "Auto-trade stopped")
}

func (a *AutoTrader) Status() Status {
	all := a.strategies.List()
	st := Status{TotalStrategies: len(all)}
	for _, s := range all {
		if s.Enabled {
			st.ActiveStrategies++
		}
	}
	a.mu.Lock()
	st.Running = a.cron != nil
	if !a.lastRun.IsZero() {
		st.LastRun = a.lastRun.In(market.KST).Format("2006-01-02 15:04:05")
	}
	a.mu.Unlock()
	return st
}

// RunOnce performs one evaluation cycle. Outside market hours it does nothing.
func (a *AutoTrader) RunOnce(ctx context.Context) error {
	now := a.now()
	if !market.IsOpen(now) {
		logger.Debug(ctx, "Market closed, skipping auto-trade cycle", "time", now.In(market.KST).Format("15:04"))
		return nil
	}

	var enabled []Strategy
	for _, s := range a.strategies.List() {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	timer := logger.StartOperation(ctx, "auto_trade_cycle", "strategies", len(enabled))
	ctx = timer.GetContext()

	holdings, err := a.broker.Holdings(ctx)
	if err != nil {
		timer.EndWithError(err)
		return fmt.Errorf("fetch holdings: %w", err)
	}
	byCode := make(map[string]types.Holding, len(holdings))
	for _, h := range holdings {
		byCode[h.Code] = h
	}

	orders := 0
	for _, s := range enabled {
		h, held := byCode[s.StockCode]
		if !held {
			if a.shouldBuy(s) {
				logger.Info(ctx, "Buy conditions met", "strategy", s.ID, "code", s.StockCode)
			}
			continue
		}
		reason, sell := SellReason(s, h)
		if !sell {
			continue
		}
		if err := a.sell(ctx, s, h, reason); err != nil {
			logger.ErrorWithErr(ctx, "Auto-trade sell failed", err, "strategy", s.ID, "code", s.StockCode)
			continue
		}
		orders++
	}

	a.mu.Lock()
	a.lastRun = now
	a.mu.Unlock()
	timer.End("orders", orders)
	return nil
}

// shouldBuy evaluates the buy conditions of s.
// TODO: evaluate rsi_below/ma_cross_up against indicator.Engine output and
// size the order from MaxAmount and a live quote.
func (a *AutoTrader) shouldBuy(s Strategy) bool {
	return false
}

// SellReason applies the loss-cut and profit-take thresholds to a holding.
func SellReason(s Strategy, h types.Holding) (string, bool) {
	switch {
	case h.ProfitPercent <= s.LossCutPercent:
		return ReasonLossCut, true
	case h.ProfitPercent >= s.ProfitTakePercent:
		return ReasonProfitTake, true
	}
	return "", false
}

// sell liquidates the whole position at market.
func (a *AutoTrader) sell(ctx context.Context, s Strategy, h types.Holding, reason string) error {
	logger.Warn(ctx, "Sell rule triggered",
		"strategy", s.ID,
		"code", h.Code,
		"reason", reason,
		"profit_percent", h.ProfitPercent,
		"loss_cut", s.LossCutPercent,
		"profit_take", s.ProfitTakePercent,
	)

	resp, err := a.broker.PlaceOrder(ctx, types.OrderReq{
		Side:       types.SideSell,
		Code:       h.Code,
		Quantity:   h.Quantity,
		PriceType:  types.PriceMarket,
		Tag:        reason,
		StrategyID: s.ID,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("order not accepted: %s", resp.Message)
	}

	rec := NewRecord(a.now(), types.SideSell, s, h.Quantity, h.CurrentPrice,
		fmt.Sprintf("%s (%.2f%%)", reason, h.ProfitPercent))
	if err := a.history.Record(ctx, rec); err != nil {
		logger.ErrorWithErr(ctx, "Failed to record trade", err, "code", h.Code)
	}
	return nil
}

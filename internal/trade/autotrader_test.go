package trade

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"invest-dashboard/internal/broker/mock"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/types"
)

// Monday 10:00 KST.
var sessionTime = time.Date(2026, 10, 19, 10, 0, 0, 0, market.KST)

func newTestTrader(t *testing.T, now time.Time) (*AutoTrader, *mock.Broker, *StrategyStore, *MemoryHistory) {
	t.Helper()
	store, err := OpenStrategies(filepath.Join(t.TempDir(), "strategies.json"))
	if err != nil {
		t.Fatal(err)
	}
	b := mock.New("")
	h := NewMemoryHistory()
	a := NewAutoTrader(b, store, h, time.Second)
	a.now = func() time.Time { return now }
	return a, b, store, h
}

func TestSellReason(t *testing.T) {
	s := DefaultStrategy()
	tests := []struct {
		pct    float64
		reason string
		sell   bool
	}{
		{-3.5, ReasonLossCut, true},
		{-3, ReasonLossCut, true},
		{0, "", false},
		{4.99, "", false},
		{5, ReasonProfitTake, true},
		{12, ReasonProfitTake, true},
	}
	for _, tt := range tests {
		reason, sell := SellReason(s, types.Holding{ProfitPercent: tt.pct})
		if reason != tt.reason || sell != tt.sell {
			t.Errorf("SellReason(%v) = %q, %v; want %q, %v", tt.pct, reason, sell, tt.reason, tt.sell)
		}
	}
}

func TestRunOnceSellsTriggeredHoldings(t *testing.T) {
	a, b, store, h := newTestTrader(t, sessionTime)
	ctx := context.Background()

	// 233740 is up 8.24% in the mock account.
	if _, err := store.Toggle("default_1"); err != nil {
		t.Fatal(err)
	}
	// 000660 is up 5.19%, below this threshold.
	quiet, err := store.Create(Strategy{Name: "hynix", StockCode: "000660", LossCutPercent: -3, ProfitTakePercent: 10})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Toggle(quiet.ID); err != nil {
		t.Fatal(err)
	}
	// Enabled but not held.
	unheld, _ := store.Create(Strategy{Name: "naver", StockCode: "035420", LossCutPercent: -3, ProfitTakePercent: 5})
	store.Toggle(unheld.ID)

	if err := a.RunOnce(ctx); err != nil {
		t.Fatal(err)
	}

	orders := b.Orders()
	if len(orders) != 1 {
		t.Fatalf("orders = %+v, want one sell", orders)
	}
	o := orders[0]
	if o.Side != types.SideSell || o.Code != "233740" || o.Quantity != 100 || o.PriceType != types.PriceMarket {
		t.Errorf("order = %+v", o)
	}
	if o.Tag != ReasonProfitTake || o.StrategyID != "default_1" {
		t.Errorf("order tag = %q strategy = %q", o.Tag, o.StrategyID)
	}

	recs, _ := h.Recent(ctx, 10)
	if len(recs) != 1 {
		t.Fatalf("history = %+v", recs)
	}
	if recs[0].Reason != "익절 (8.24%)" || recs[0].Price != 9200 || recs[0].ID != "trade_20261019100000" {
		t.Errorf("record = %+v", recs[0])
	}

	st := a.Status()
	if st.ActiveStrategies != 3 || st.TotalStrategies != 3 || st.Running {
		t.Errorf("Status() = %+v", st)
	}
	if st.LastRun != "2026-10-19 10:00:00" {
		t.Errorf("LastRun = %q", st.LastRun)
	}
}

func TestRunOnceIdleOutsideSession(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(2026, 10, 19, 8, 59, 0, 0, market.KST),
		time.Date(2026, 10, 19, 15, 31, 0, 0, market.KST),
		time.Date(2026, 10, 18, 11, 0, 0, 0, market.KST),
	} {
		a, b, store, _ := newTestTrader(t, now)
		store.Toggle("default_1")
		if err := a.RunOnce(context.Background()); err != nil {
			t.Fatal(err)
		}
		if n := len(b.Orders()); n != 0 {
			t.Errorf("%v: %d orders placed outside the session", now, n)
		}
	}
}

type failingBroker struct{ *mock.Broker }

func (failingBroker) Holdings(ctx context.Context) ([]types.Holding, error) {
	return nil, errors.New("upstream down")
}

func TestRunOnceHoldingsError(t *testing.T) {
	store, _ := OpenStrategies(filepath.Join(t.TempDir(), "s.json"))
	store.Toggle("default_1")
	a := NewAutoTrader(failingBroker{mock.New("")}, store, nil, time.Second)
	a.now = func() time.Time { return sessionTime }
	if err := a.RunOnce(context.Background()); err == nil {
		t.Error("expected holdings error")
	}
}

func TestStartStop(t *testing.T) {
	a, _, _, _ := newTestTrader(t, time.Date(2026, 10, 18, 11, 0, 0, 0, market.KST))
	ctx := context.Background()

	started, err := a.Start(ctx)
	if err != nil || !started {
		t.Fatalf("Start() = %v, %v", started, err)
	}
	if again, _ := a.Start(ctx); again {
		t.Error("second Start() should report already running")
	}
	if !a.Status().Running {
		t.Error("Status().Running = false after Start")
	}
	a.Stop(ctx)
	if a.Status().Running {
		t.Error("Status().Running = true after Stop")
	}
	a.Stop(ctx)
}

package mock

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"invest-dashboard/internal/broker"
	"invest-dashboard/internal/types"
)

func TestAccount(t *testing.T) {
	tests := []struct {
		accountNo string
		want      string
	}{
		{"", "********1234"},
		{"8012345611", "********5611"},
	}
	for _, tt := range tests {
		acc, err := New(tt.accountNo).Account(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if acc.AccountNo != tt.want {
			t.Errorf("AccountNo = %q, want %q", acc.AccountNo, tt.want)
		}
		if acc.TotalDeposit != 5000000 || acc.TotalEvaluation != 15250000 || acc.TotalProfit != 1250000 || acc.ProfitPercent != 8.93 {
			t.Errorf("account = %+v", acc)
		}
	}
}

func TestHoldings(t *testing.T) {
	hs, err := New("").Holdings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []types.Holding{
		{Code: "233740", Name: "KODEX 코스닥150 레버리지", Quantity: 100, AvgPrice: 8500, CurrentPrice: 9200, Profit: 70000, ProfitPercent: 8.24},
		{Code: "005930", Name: "삼성전자", Quantity: 50, AvgPrice: 72000, CurrentPrice: 75000, Profit: 150000, ProfitPercent: 4.17},
		{Code: "000660", Name: "SK하이닉스", Quantity: 30, AvgPrice: 135000, CurrentPrice: 142000, Profit: 210000, ProfitPercent: 5.19},
	}
	if len(hs) != len(want) {
		t.Fatalf("holdings = %d", len(hs))
	}
	for i := range want {
		if hs[i] != want[i] {
			t.Errorf("holding %d = %+v, want %+v", i, hs[i], want[i])
		}
	}
}

func TestPlaceOrder(t *testing.T) {
	b := New("")
	resp, err := b.PlaceOrder(context.Background(), types.OrderReq{Side: types.SideBuy, Code: "005930", Quantity: 3, PriceType: types.PriceMarket})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Message != "Mock order: buy 3 shares of 005930" {
		t.Errorf("resp = %+v", resp)
	}
	if !regexp.MustCompile(`^MOCK[0-9A-F]{8}$`).MatchString(resp.OrderNo) {
		t.Errorf("order no = %q", resp.OrderNo)
	}
	if len(b.Orders()) != 1 {
		t.Errorf("orders = %d", len(b.Orders()))
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	b := New("")
	_, err := b.PlaceOrder(context.Background(), types.OrderReq{Side: "hold", Code: "005930", Quantity: 1})
	if !errors.Is(err, broker.ErrInvalidOrder) {
		t.Errorf("err = %v", err)
	}
	_, err = b.PlaceOrder(context.Background(), types.OrderReq{Side: types.SideSell, Code: "005930", Quantity: 0})
	if !errors.Is(err, broker.ErrInvalidOrder) {
		t.Errorf("err = %v", err)
	}
}

func TestConnectState(t *testing.T) {
	b := New("")
	if b.Connected() {
		t.Fatal("new broker should start disconnected")
	}
	_ = b.Connect(context.Background())
	if !b.Connected() {
		t.Error("expected connected")
	}
	b.Disconnect(context.Background())
	if b.Connected() {
		t.Error("expected disconnected")
	}
}

package trade

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"invest-dashboard/internal/market"
	"invest-dashboard/internal/types"
)

func TestNewRecord(t *testing.T) {
	now := time.Date(2026, 10, 19, 1, 2, 3, 0, time.UTC)
	r := NewRecord(now, types.SideSell, DefaultStrategy(), 100, 9200, "익절 (8.24%)")
	if r.ID != "trade_20261019100203" {
		t.Errorf("ID = %q", r.ID)
	}
	if r.Timestamp != "2026-10-19 10:02:03" {
		t.Errorf("Timestamp = %q", r.Timestamp)
	}
	if r.OrderType != "sell" || r.StrategyID != "default_1" || r.StockName != "KODEX 코스닥150 레버리지" {
		t.Errorf("record = %+v", r)
	}
}

func exerciseHistory(t *testing.T, h History) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 10, 0, 0, 0, market.KST)
	for i := 0; i < 3; i++ {
		r := NewRecord(base.Add(time.Duration(i)*time.Minute), types.SideSell, DefaultStrategy(), 10+i, 9000, "손절")
		if err := h.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := h.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) = %d records", len(got))
	}
	if got[0].Quantity != 12 || got[1].Quantity != 11 {
		t.Errorf("order = %d, %d; want newest first", got[0].Quantity, got[1].Quantity)
	}

	all, err := h.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("Recent(0) = %d records, want 3", len(all))
	}
	if all[2].Reason != "손절" || all[2].StrategyID != "default_1" {
		t.Errorf("oldest = %+v", all[2])
	}
}

func TestSQLiteHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trades.db")
	h, err := OpenSQLiteHistory(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	exerciseHistory(t, h)
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLiteHistory(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("after reopen %d records, want 3", len(got))
	}
}

func TestMemoryHistory(t *testing.T) {
	exerciseHistory(t, NewMemoryHistory())
}

// Package eod turns a day's order log into a per-symbol CSV summary.
package eod

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/tradelog"
)

var header = []string{"code", "buy_qty", "buy_avg", "sell_qty", "sell_avg", "realized_pnl", "gross_buy_value", "gross_sell_value"}

type aggRow struct {
	Code      string
	BuyQty    int
	BuyValue  decimal.Decimal
	SellQty   int
	SellValue decimal.Decimal
}

func (r *aggRow) avg(value decimal.Decimal, qty int) decimal.Decimal {
	if qty == 0 {
		return decimal.Zero
	}
	return value.Div(decimal.NewFromInt(int64(qty)))
}

// realized is the P&L on the quantity that was both bought and sold.
func (r *aggRow) realized() decimal.Decimal {
	matched := min(r.BuyQty, r.SellQty)
	if matched == 0 {
		return decimal.Zero
	}
	spread := r.avg(r.SellValue, r.SellQty).Sub(r.avg(r.BuyValue, r.BuyQty))
	return spread.Mul(decimal.NewFromInt(int64(matched)))
}

type Summarizer struct {
	log *tradelog.Log
	now func() time.Time
}

var _ interfaces.EodSummarizer = (*Summarizer)(nil)

func NewSummarizer(log *tradelog.Log) *Summarizer {
	return &Summarizer{log: log, now: time.Now}
}

// CSVPath is where the summary for the KST date of t is written.
func (s *Summarizer) CSVPath(t time.Time) string {
	return filepath.Join(s.log.Dir(), "eod", t.In(market.KST).Format("2006-01-02")+".csv")
}

// SummarizeDay aggregates successful orders per code. It returns "" without
// writing anything when the day has no successful orders.
func (s *Summarizer) SummarizeDay(ctx context.Context, t time.Time) (string, error) {
	entries, err := s.log.ReadDay(t)
	if err != nil {
		return "", err
	}

	aggs := map[string]*aggRow{}
	for _, e := range entries {
		if !e.Success || e.Quantity <= 0 {
			continue
		}
		row := aggs[e.Code]
		if row == nil {
			row = &aggRow{Code: e.Code}
			aggs[e.Code] = row
		}
		value := decimal.NewFromInt(e.Price).Mul(decimal.NewFromInt(int64(e.Quantity)))
		switch e.Side {
		case "buy":
			row.BuyQty += e.Quantity
			row.BuyValue = row.BuyValue.Add(value)
		case "sell":
			row.SellQty += e.Quantity
			row.SellValue = row.SellValue.Add(value)
		}
	}
	if len(aggs) == 0 {
		return "", nil
	}

	codes := make([]string, 0, len(aggs))
	for k := range aggs {
		codes = append(codes, k)
	}
	sort.Strings(codes)

	outPath := s.CSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return "", err
	}
	totalBuy, totalSell, totalPnL := decimal.Zero, decimal.Zero, decimal.Zero
	for _, code := range codes {
		r := aggs[code]
		pnl := r.realized()
		rec := []string{
			r.Code,
			strconv.Itoa(r.BuyQty),
			r.avg(r.BuyValue, r.BuyQty).StringFixed(2),
			strconv.Itoa(r.SellQty),
			r.avg(r.SellValue, r.SellQty).StringFixed(2),
			pnl.StringFixed(0),
			r.BuyValue.StringFixed(0),
			r.SellValue.StringFixed(0),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalBuy = totalBuy.Add(r.BuyValue)
		totalSell = totalSell.Add(r.SellValue)
		totalPnL = totalPnL.Add(pnl)
	}
	if err := w.Write([]string{"TOTAL", "", "", "", "", totalPnL.StringFixed(0), totalBuy.StringFixed(0), totalSell.StringFixed(0)}); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return outPath, nil
}

func (s *Summarizer) SummarizeToday(ctx context.Context) (string, error) {
	return s.SummarizeDay(ctx, s.now())
}

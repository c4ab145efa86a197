// Package eodobs times the end-of-day job and records which trading day it
// summarized.
package eodobs

import (
	"context"
	"time"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/market"
)

type timedSummarizer struct {
	next interfaces.EodSummarizer
	now  func() time.Time
}

var _ interfaces.EodSummarizer = (*timedSummarizer)(nil)

func Wrap(next interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &timedSummarizer{next: next, now: time.Now}
}

func (ts *timedSummarizer) SummarizeDay(ctx context.Context, t time.Time) (string, error) {
	return ts.run(ctx, "eod.SummarizeDay", t, func(ctx context.Context) (string, error) {
		return ts.next.SummarizeDay(ctx, t)
	})
}

func (ts *timedSummarizer) SummarizeToday(ctx context.Context) (string, error) {
	return ts.run(ctx, "eod.SummarizeToday", ts.now(), ts.next.SummarizeToday)
}

func (ts *timedSummarizer) run(ctx context.Context, op string, day time.Time, fn func(context.Context) (string, error)) (string, error) {
	tradeDay := day.In(market.KST).Format("2006-01-02")
	timer := logger.StartOperation(ctx, op, "trade_day", tradeDay)

	csvPath, err := fn(timer.GetContext())
	if err != nil {
		timer.EndWithError(err)
		return "", err
	}
	if csvPath == "" {
		timer.End("orders", false)
		logger.Info(ctx, "No filled orders, EOD summary skipped", "trade_day", tradeDay)
		return "", nil
	}
	timer.End("orders", true, "csv_path", csvPath)
	logger.Info(ctx, "EOD summary written", "trade_day", tradeDay, "csv_path", csvPath)
	return csvPath, nil
}

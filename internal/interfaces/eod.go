package interfaces

import (
	"context"
	"time"
)

// EodSummarizer writes the end-of-day order summary for a trading day.
type EodSummarizer interface {
	// SummarizeDay returns the CSV path, or "" when no orders were logged.
	SummarizeDay(ctx context.Context, t time.Time) (csvPath string, err error)
	SummarizeToday(ctx context.Context) (csvPath string, err error)
}

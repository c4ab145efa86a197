package eodobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"invest-dashboard/internal/market"
)

type stubSummarizer struct {
	path    string
	err     error
	lastDay time.Time
	today   int
}

func (s *stubSummarizer) SummarizeDay(_ context.Context, t time.Time) (string, error) {
	s.lastDay = t
	return s.path, s.err
}

func (s *stubSummarizer) SummarizeToday(context.Context) (string, error) {
	s.today++
	return s.path, s.err
}

func TestWrapPassesResultsThrough(t *testing.T) {
	stub := &stubSummarizer{path: "logs/eod/2026-10-19.csv"}
	s := Wrap(stub)
	day := time.Date(2026, 10, 19, 15, 40, 0, 0, market.KST)

	p, err := s.SummarizeDay(context.Background(), day)
	if err != nil || p != stub.path {
		t.Fatalf("SummarizeDay = %q, %v", p, err)
	}
	if !stub.lastDay.Equal(day) {
		t.Errorf("day = %v, want %v", stub.lastDay, day)
	}

	if p, err := s.SummarizeToday(context.Background()); err != nil || p != stub.path || stub.today != 1 {
		t.Errorf("SummarizeToday = %q, %v (calls %d)", p, err, stub.today)
	}
}

func TestWrapEmptyDay(t *testing.T) {
	s := Wrap(&stubSummarizer{})
	p, err := s.SummarizeToday(context.Background())
	if err != nil || p != "" {
		t.Errorf("SummarizeToday = %q, %v, want empty path", p, err)
	}
}

func TestWrapReturnsError(t *testing.T) {
	boom := errors.New("disk full")
	s := Wrap(&stubSummarizer{path: "ignored", err: boom})
	p, err := s.SummarizeDay(context.Background(), time.Now())
	if !errors.Is(err, boom) || p != "" {
		t.Errorf("SummarizeDay = %q, %v", p, err)
	}
}

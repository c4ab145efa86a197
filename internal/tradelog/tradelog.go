// Package tradelog appends every broker order to a per-day JSONL file and
// compresses old days.
package tradelog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"invest-dashboard/internal/market"
)

const timeLayout = "2006-01-02 15:04:05"

// Entry is one order as written to the log.
type Entry struct {
	Time       string `json:"time"`
	Broker     string `json:"broker"`
	Code       string `json:"code"`
	Side       string `json:"side"`
	Quantity   int    `json:"quantity"`
	Price      int64  `json:"price"`
	PriceType  string `json:"price_type"`
	OrderNo    string `json:"order_no,omitempty"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Reason     string `json:"reason,omitempty"`
	StrategyID string `json:"strategy_id,omitempty"`
}

// Log writes entries under dir, one file per KST trading day.
type Log struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func New(dir string) *Log {
	if dir == "" {
		dir = "logs"
	}
	return &Log{dir: dir, now: time.Now}
}

func (l *Log) Dir() string { return l.dir }

// DayFile is the log path for the KST date of t.
func (l *Log) DayFile(t time.Time) string {
	return filepath.Join(l.dir, t.In(market.KST).Format("2006-01-02")+".txt")
}

// Append stamps e with the current KST time and writes it as one JSON line.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().In(market.KST)
	e.Time = now.Format(timeLayout)
	p := l.DayFile(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadDay returns the entries logged on the KST date of t. A day without a
// file has no entries. Malformed lines are skipped.
func (l *Log) ReadDay(t time.Time) ([]Entry, error) {
	f, err := os.Open(l.DayFile(t))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// CompressOlder gzips day files last modified more than retentionDays ago and
// removes the originals. Files that fail to compress are left in place.
func (l *Log) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := l.now().AddDate(0, 0, -retentionDays)

	l.mu.Lock()
	defer l.mu.Unlock()
	return filepath.WalkDir(l.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err == nil {
			_ = os.Remove(p)
		}
		return nil
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

package tradelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadDay(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	// 23:30 UTC is already the next day in KST
	at := time.Date(2026, 3, 3, 23, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return at }

	if err := l.Append(Entry{Code: "005930", Side: "buy", Quantity: 10, Price: 75000, OrderNo: "MOCK1", Success: true}); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(Entry{Code: "005930", Side: "sell", Quantity: 5, Price: 76000, OrderNo: "MOCK2", Success: true}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "2026-03-04.txt")); err != nil {
		t.Fatalf("expected KST-dated file: %v", err)
	}

	entries, err := l.ReadDay(at)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Time != "2026-03-04 08:30:00" || entries[1].Side != "sell" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestReadDayMissingFile(t *testing.T) {
	entries, err := New(t.TempDir()).ReadDay(time.Now())
	if err != nil || entries != nil {
		t.Errorf("entries = %v, err = %v", entries, err)
	}
}

func TestReadDaySkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	day := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	content := "not json\n{\"code\":\"000660\",\"side\":\"buy\",\"quantity\":1}\n"
	if err := os.WriteFile(l.DayFile(day), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := l.ReadDay(day)
	if err != nil || len(entries) != 1 || entries[0].Code != "000660" {
		t.Errorf("entries = %+v, err = %v", entries, err)
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	oldFile := filepath.Join(dir, "2026-01-01.txt")
	newFile := filepath.Join(dir, "2026-03-04.txt")
	for _, p := range []string{oldFile, newFile} {
		if err := os.WriteFile(p, []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatal(err)
	}

	if err := l.CompressOlder(7); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(oldFile + ".gz"); err != nil {
		t.Errorf("old file not compressed: %v", err)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Errorf("old original should be removed")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Errorf("recent file should remain: %v", err)
	}
}

func TestCompressOlderDisabled(t *testing.T) {
	if err := New(t.TempDir()).CompressOlder(0); err != nil {
		t.Fatal(err)
	}
}

package quotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"invest-dashboard/internal/market"
	"invest-dashboard/internal/types"
)

var errNoRows = errors.New("no daily bars in response")

// parseNumber reads Naver's comma-grouped numbers. Blank or invalid text is 0.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseSiseJSON decodes the siseJson payload: a single-quoted array whose
// first row names the columns. Missing or non-numeric cells become NaN.
// Bars are returned oldest first, trimmed to the last days entries.
func ParseSiseJSON(body []byte, days int) ([]types.Bar, error) {
	text := strings.NewReplacer("\n", "", "\r", "", "\t", "", "'", `"`).Replace(strings.TrimSpace(string(body)))

	var rows [][]any
	if err := json.Unmarshal([]byte(text), &rows); err != nil {
		return nil, fmt.Errorf("parse daily bars: %w", err)
	}
	if len(rows) < 2 {
		return nil, errNoRows
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		if s, ok := h.(string); ok {
			cols[strings.TrimSpace(s)] = i
		}
	}
	dateIdx, ok := cols["날짜"]
	if !ok {
		return nil, errors.New("parse daily bars: missing date column")
	}

	cell := func(row []any, name string) float64 {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return math.NaN()
		}
		switch v := row[i].(type) {
		case float64:
			return v
		case string:
			f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
			if err != nil {
				return math.NaN()
			}
			return f
		}
		return math.NaN()
	}

	bars := make([]types.Bar, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if dateIdx >= len(row) {
			continue
		}
		d, err := time.ParseInLocation("20060102", strings.TrimSpace(fmt.Sprint(row[dateIdx])), market.KST)
		if err != nil {
			continue
		}
		bars = append(bars, types.Bar{
			Date:   d,
			Open:   cell(row, "시가"),
			High:   cell(row, "고가"),
			Low:    cell(row, "저가"),
			Close:  cell(row, "종가"),
			Volume: cell(row, "거래량"),
		})
	}
	if len(bars) == 0 {
		return nil, errNoRows
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

package market

import "time"

// KST is the exchange time zone.
var KST = time.FixedZone("KST", 9*60*60)

const (
	OpenTime  = "09:00"
	CloseTime = "15:30"
)

const (
	StatusOpen      = "Market Open"
	StatusPreMarket = "Pre-market"
	StatusClosed    = "Market Closed"
	StatusWeekend   = "Weekend"
)

type Session struct {
	IsOpen      bool   `json:"isOpen"`
	Status      string `json:"status"`
	CurrentTime string `json:"currentTime"`
	OpenTime    string `json:"openTime"`
	CloseTime   string `json:"closeTime"`
}

// Clock reports the regular-session state at now. Holidays are not tracked.
func Clock(now time.Time) Session {
	now = now.In(KST)
	s := Session{
		CurrentTime: now.Format("2006-01-02 15:04:05"),
		OpenTime:    OpenTime,
		CloseTime:   CloseTime,
		Status:      StatusClosed,
	}

	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		s.Status = StatusWeekend
		return s
	}

	y, m, d := now.Date()
	open := time.Date(y, m, d, 9, 0, 0, 0, KST)
	closing := time.Date(y, m, d, 15, 30, 0, 0, KST)
	switch {
	case now.Before(open):
		s.Status = StatusPreMarket
	case !now.After(closing):
		s.IsOpen = true
		s.Status = StatusOpen
	}
	return s
}

// IsOpen reports whether the regular session is running at now.
func IsOpen(now time.Time) bool {
	return Clock(now).IsOpen
}

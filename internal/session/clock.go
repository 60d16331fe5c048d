package session

import (
	"fmt"
	"time"

	"momentum-trading-bot/internal/types"
)

// Session boundaries in minutes after midnight, reference-zone local time.
// Intervals are half-open: [preOpen, regOpen) pre-market, [regOpen, regClose)
// regular, [regClose, postClose) post-market, else closed.
const (
	preOpenMinute   = 4 * 60
	regOpenMinute   = 9*60 + 30
	regCloseMinute  = 16 * 60
	postCloseMinute = 20 * 60
)

// Clock classifies wall-clock time into a trading-session state and computes
// sleep/wake targets. It has no mutable state: classification is a pure
// function of the timestamp and the holiday calendar.
type Clock struct {
	loc      *time.Location
	holidays map[string]struct{}
	wakeLead time.Duration
}

// NewClock builds a clock for the given reference timezone and holiday list
// (dates in YYYY-MM-DD). wakeLead is how far before the open the scheduler
// should wake the host, typically 5 minutes.
func NewClock(timezone string, holidays []string, wakeLead time.Duration) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	hs := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		if _, err := time.ParseInLocation(types.DateFormat, h, loc); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", h, err)
		}
		hs[h] = struct{}{}
	}
	return &Clock{loc: loc, holidays: hs, wakeLead: wakeLead}, nil
}

// Classify returns the session state for the given instant. Weekend/holiday
// wins over time-of-day.
func (c *Clock) Classify(now time.Time) types.SessionState {
	local := now.In(c.loc)
	if !c.isTradingDay(local) {
		return types.SessionClosed
	}
	minute := local.Hour()*60 + local.Minute()
	switch {
	case minute >= preOpenMinute && minute < regOpenMinute:
		return types.SessionPreMarket
	case minute >= regOpenMinute && minute < regCloseMinute:
		return types.SessionRegular
	case minute >= regCloseMinute && minute < postCloseMinute:
		return types.SessionPostMarket
	default:
		return types.SessionClosed
	}
}

// NextOpen returns the first regular-session open strictly after now.
func (c *Clock) NextOpen(now time.Time) time.Time {
	local := now.In(c.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
	for i := 0; i < 366; i++ {
		open := day.Add(time.Duration(regOpenMinute) * time.Minute)
		if c.isTradingDay(day) && open.After(local) {
			return open
		}
		day = day.AddDate(0, 0, 1)
	}
	// Unreachable with a sane holiday calendar.
	return day.Add(time.Duration(regOpenMinute) * time.Minute)
}

// NextWake returns when a closed-session sleeper should wake: wakeLead before
// the next open.
func (c *Clock) NextWake(now time.Time) time.Time {
	return c.NextOpen(now).Add(-c.wakeLead)
}

// UntilNextEvent returns the duration until the next session-state transition
// or the pre-open wake point, whichever comes sooner.
func (c *Clock) UntilNextEvent(now time.Time) time.Duration {
	local := now.In(c.loc)
	best := c.NextWake(local).Sub(local)

	if c.isTradingDay(local) {
		minute := local.Hour()*60 + local.Minute()
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
		for _, b := range []int{preOpenMinute, regOpenMinute, regCloseMinute, postCloseMinute} {
			if minute < b {
				if d := midnight.Add(time.Duration(b) * time.Minute).Sub(local); d < best {
					best = d
				}
				break
			}
		}
	}
	if best < 0 {
		best = 0
	}
	return best
}

// UntilRegularClose returns the time remaining to today's 16:00 close. The
// second return is false when now is outside the regular session.
func (c *Clock) UntilRegularClose(now time.Time) (time.Duration, bool) {
	if c.Classify(now) != types.SessionRegular {
		return 0, false
	}
	local := now.In(c.loc)
	close := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc).
		Add(time.Duration(regCloseMinute) * time.Minute)
	return close.Sub(local), true
}

// TradingDay returns the trading-day key for the given instant.
func (c *Clock) TradingDay(now time.Time) string {
	return now.In(c.loc).Format(types.DateFormat)
}

// Location exposes the reference timezone.
func (c *Clock) Location() *time.Location { return c.loc }

// IsHoliday reports whether the given date key is in the holiday calendar.
func (c *Clock) IsHoliday(date string) bool {
	_, ok := c.holidays[date]
	return ok
}

func (c *Clock) isTradingDay(local time.Time) bool {
	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.IsHoliday(local.Format(types.DateFormat))
}

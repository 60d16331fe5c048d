package session

import (
	"context"
	"testing"
	"time"

	"momentum-trading-bot/internal/types"
)

func newTestClock(t *testing.T, holidays ...string) *Clock {
	t.Helper()
	c, err := NewClock("America/New_York", holidays, 5*time.Minute)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	return c
}

// Thursday 2026-08-20 is a regular trading day.
func tradingDayAt(c *Clock, hour, minute int) time.Time {
	return time.Date(2026, 8, 20, hour, minute, 0, 0, c.Location())
}

func TestClassifyBoundaries(t *testing.T) {
	c := newTestClock(t)

	cases := []struct {
		hour, minute int
		want         types.SessionState
	}{
		{3, 59, types.SessionClosed},
		{4, 0, types.SessionPreMarket},
		{9, 29, types.SessionPreMarket},
		{9, 30, types.SessionRegular},
		{12, 0, types.SessionRegular},
		{15, 59, types.SessionRegular},
		{16, 0, types.SessionPostMarket},
		{19, 59, types.SessionPostMarket},
		{20, 0, types.SessionClosed},
		{23, 30, types.SessionClosed},
	}
	for _, tc := range cases {
		got := c.Classify(tradingDayAt(c, tc.hour, tc.minute))
		if got != tc.want {
			t.Errorf("Classify(%02d:%02d) = %v, want %v", tc.hour, tc.minute, got, tc.want)
		}
	}
}

func TestClassifyWeekend(t *testing.T) {
	c := newTestClock(t)
	// Saturday midday.
	sat := time.Date(2026, 8, 22, 12, 0, 0, 0, c.Location())
	if got := c.Classify(sat); got != types.SessionClosed {
		t.Errorf("Classify(saturday noon) = %v, want CLOSED", got)
	}
}

func TestClassifyHoliday(t *testing.T) {
	c := newTestClock(t, "2026-08-20")
	if got := c.Classify(tradingDayAt(c, 12, 0)); got != types.SessionClosed {
		t.Errorf("Classify(holiday noon) = %v, want CLOSED", got)
	}
}

func TestNextOpenSameDay(t *testing.T) {
	c := newTestClock(t)
	open := c.NextOpen(tradingDayAt(c, 6, 0))
	want := tradingDayAt(c, 9, 30)
	if !open.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", open, want)
	}
}

func TestNextOpenSkipsWeekendAndHoliday(t *testing.T) {
	// Friday 2026-08-21 after close; Monday 2026-08-24 is a holiday.
	c := newTestClock(t, "2026-08-24")
	fri := time.Date(2026, 8, 21, 17, 0, 0, 0, c.Location())
	open := c.NextOpen(fri)
	want := time.Date(2026, 8, 25, 9, 30, 0, 0, c.Location())
	if !open.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", open, want)
	}
}

func TestNextWakeIsFiveMinutesBeforeOpen(t *testing.T) {
	c := newTestClock(t)
	now := tradingDayAt(c, 21, 0)
	wake := c.NextWake(now)
	open := c.NextOpen(now)
	if got := open.Sub(wake); got != 5*time.Minute {
		t.Errorf("wake lead = %v, want 5m", got)
	}
}

func TestUntilNextEventPrefersSoonerBoundary(t *testing.T) {
	c := newTestClock(t)
	// 03:30 on a trading day: 04:00 boundary (30m) beats wake at 09:25.
	d := c.UntilNextEvent(tradingDayAt(c, 3, 30))
	if d != 30*time.Minute {
		t.Errorf("UntilNextEvent(03:30) = %v, want 30m", d)
	}
	// 09:00: wake point 09:25 (25m) beats the 09:30 boundary.
	d = c.UntilNextEvent(tradingDayAt(c, 9, 0))
	if d != 25*time.Minute {
		t.Errorf("UntilNextEvent(09:00) = %v, want 25m", d)
	}
}

func TestUntilRegularClose(t *testing.T) {
	c := newTestClock(t)

	d, ok := c.UntilRegularClose(tradingDayAt(c, 15, 52))
	if !ok {
		t.Fatal("expected ok inside regular session")
	}
	if d != 8*time.Minute {
		t.Errorf("UntilRegularClose(15:52) = %v, want 8m", d)
	}

	if _, ok := c.UntilRegularClose(tradingDayAt(c, 17, 0)); ok {
		t.Error("expected not ok outside regular session")
	}
}

func TestClassifyIsPure(t *testing.T) {
	c := newTestClock(t)
	at := tradingDayAt(c, 10, 15)
	first := c.Classify(at)
	for i := 0; i < 5; i++ {
		if got := c.Classify(at); got != first {
			t.Fatalf("Classify not stable: %v vs %v", got, first)
		}
	}
}

func TestSleeperImmediateTarget(t *testing.T) {
	s := NewSleeper(time.Second)
	if err := s.SleepUntil(context.Background(), time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("expected nil for past target, got %v", err)
	}
}

func TestSleeperCancel(t *testing.T) {
	s := NewSleeper(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := s.SleepUntil(ctx, time.Now().Add(time.Hour))
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

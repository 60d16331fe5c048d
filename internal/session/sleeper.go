package session

import (
	"context"
	"time"

	"momentum-trading-bot/internal/logger"
)

// Sleeper blocks until a wake target with bounded poll intervals, so an
// external shutdown signal is honored within one poll even during a long
// overnight sleep. Nothing else runs while closed: no connectivity probes, no
// data fetches.
type Sleeper struct {
	poll time.Duration
}

// NewSleeper builds a sleeper with the given maximum poll interval. Intervals
// above 60 seconds are clamped so cancellation latency stays bounded.
func NewSleeper(poll time.Duration) *Sleeper {
	if poll <= 0 || poll > 60*time.Second {
		poll = 60 * time.Second
	}
	return &Sleeper{poll: poll}
}

// SleepUntil blocks until target or context cancellation, waking at most
// every poll interval to re-check both.
func (s *Sleeper) SleepUntil(ctx context.Context, target time.Time) error {
	logger.Debug(ctx, "Sleeping until wake target", "target", target, "poll", s.poll.String())
	for {
		remaining := time.Until(target)
		if remaining <= 0 {
			return nil
		}
		d := remaining
		if d > s.poll {
			d = s.poll
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

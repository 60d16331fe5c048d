// Package watchlist is the keyed day-store for scan results: one watchlist
// per trading date, written once by the pre-open scan (overwritten on manual
// rescan), read by decision-making consumers throughout the day.
package watchlist

import (
	"context"
	"errors"

	"momentum-trading-bot/internal/types"
)

// ErrNotFound is returned when no watchlist exists for a date. Before the
// day's scan has completed this is the expected answer for "today"; callers
// fall back to the configured static list instead of blocking.
var ErrNotFound = errors.New("watchlist not found")

// Store is the keyed (date -> Watchlist) store. Implementations must be safe
// for concurrent readers with a single writer, and Put must publish
// atomically: a reader sees either the previous complete watchlist or the new
// one, never a partial write.
type Store interface {
	Get(ctx context.Context, date string) (*types.Watchlist, error)
	// Put stores the watchlist under its scan date. A second Put for the
	// same date overwrites.
	Put(ctx context.Context, wl *types.Watchlist) error
	// PurgeBefore removes watchlists with scan dates strictly before the
	// given date and returns how many were removed. Maintenance only; it
	// never touches the current day.
	PurgeBefore(ctx context.Context, date string) (int, error)
	Close() error
}

// StaticFallback builds a bare watchlist from the configured static universe,
// used when the day's scan has not published yet. Entries carry no ranking or
// indicators; the regime defaults to neutral.
func StaticFallback(date string, symbols []string) *types.Watchlist {
	entries := make([]types.MomentumEntry, 0, len(symbols))
	for i, sym := range symbols {
		entries = append(entries, types.MomentumEntry{
			Symbol:    sym,
			Direction: types.DirectionGainer,
			Rank:      i + 1,
		})
	}
	return &types.Watchlist{ScanDate: date, Entries: entries, Regime: types.RegimeNeutral}
}

func cloneWatchlist(wl *types.Watchlist) *types.Watchlist {
	cp := &types.Watchlist{ScanDate: wl.ScanDate, Regime: wl.Regime}
	cp.Entries = make([]types.MomentumEntry, len(wl.Entries))
	copy(cp.Entries, wl.Entries)
	for i := range cp.Entries {
		if wl.Entries[i].Indicators == nil {
			continue
		}
		inds := make(map[string]float64, len(wl.Entries[i].Indicators))
		for k, v := range wl.Entries[i].Indicators {
			inds[k] = v
		}
		cp.Entries[i].Indicators = inds
	}
	return cp
}

package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"momentum-trading-bot/internal/annotate"
	"momentum-trading-bot/internal/interfaces"
	"momentum-trading-bot/internal/logger"
	"momentum-trading-bot/internal/metrics"
	"momentum-trading-bot/internal/types"
	"momentum-trading-bot/internal/watchlist"
)

// Config is everything the daily scan needs to know.
type Config struct {
	TopNPerSide int
	MinHistory  int
	Filter      FilterConfig
}

// Scanner runs the once-daily pre-open momentum scan: filter the raw
// universe, rank it, annotate the survivors, label the regime, and publish
// the watchlist. Re-running for the same date overwrites the previous
// watchlist, which is how a manual rescan works.
type Scanner struct {
	cfg       Config
	feed      interfaces.BarFeed
	annotator *annotate.Annotator
	store     watchlist.Store
}

func New(cfg Config, feed interfaces.BarFeed, annotator *annotate.Annotator, store watchlist.Store) *Scanner {
	return &Scanner{cfg: cfg, feed: feed, annotator: annotator, store: store}
}

var _ interfaces.Scanner = (*Scanner)(nil)

// Scan builds and publishes the watchlist for the given trading day.
func (s *Scanner) Scan(ctx context.Context, date string) (*types.Watchlist, error) {
	scanID := uuid.NewString()
	op := logger.StartOperation(ctx, "scan.Daily", "scan_id", scanID, "date", date)
	ctx = op.GetContext()

	bars, err := s.feed.UniverseBars(ctx, date)
	if err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("fetch universe bars: %w", err)
	}
	metrics.ScanUniverseSize.Set(float64(len(bars)))

	symbols := make([]string, 0, len(bars))
	for sym := range bars {
		symbols = append(symbols, sym)
	}
	caps, err := s.feed.MarketCaps(ctx, symbols)
	if err != nil {
		// Market cap is an optional floor; a missing source narrows
		// nothing rather than failing the scan.
		logger.Warn(ctx, "Market cap source unavailable, skipping cap floor", "scan_id", scanID, "error", err)
		caps = nil
	}

	filtered := Filter(bars, caps, s.cfg.Filter)
	logger.Info(ctx, "Universe filtered", "scan_id", scanID, "raw", len(bars), "retained", len(filtered))

	prevCloses, err := s.feed.PrevCloses(ctx, keysOf(filtered))
	if err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("fetch prior closes: %w", err)
	}

	ranked := Rank(filtered, prevCloses, s.cfg.TopNPerSide)

	entries := make([]types.MomentumEntry, 0, len(ranked))
	for _, entry := range ranked {
		history, err := s.feed.History(ctx, entry.Symbol, s.cfg.MinHistory)
		if err != nil {
			logger.Warn(ctx, "History fetch failed, excluding symbol", "scan_id", scanID, "symbol", entry.Symbol, "error", err)
			metrics.ScanExclusions.WithLabelValues("history_fetch").Inc()
			continue
		}
		annotated, err := s.annotator.Annotate(entry, history)
		if err != nil {
			if errors.Is(err, annotate.ErrInsufficientHistory) {
				logger.Warn(ctx, "Insufficient history, excluding symbol", "scan_id", scanID, "symbol", entry.Symbol, "bars", len(history))
				metrics.ScanExclusions.WithLabelValues("insufficient_history").Inc()
			} else {
				logger.Warn(ctx, "Annotation failed, excluding symbol", "scan_id", scanID, "symbol", entry.Symbol, "error", err)
				metrics.ScanExclusions.WithLabelValues("bad_data").Inc()
			}
			continue
		}
		entries = append(entries, annotated)
	}
	entries = rerank(entries)

	indexChanges, err := s.feed.IndexChanges(ctx)
	if err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("fetch index changes: %w", err)
	}

	wl := &types.Watchlist{
		ScanDate: date,
		Entries:  entries,
		Regime:   DetectRegime(indexChanges),
	}
	if err := s.store.Put(ctx, wl); err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("publish watchlist: %w", err)
	}

	metrics.WatchlistSize.Set(float64(len(entries)))
	metrics.ScansTotal.Inc()
	op.End("entries", len(entries), "regime", string(wl.Regime))
	logger.Info(ctx, "Watchlist published",
		"scan_id", scanID,
		"date", date,
		"entries", len(entries),
		"gainers", len(wl.Gainers()),
		"losers", len(wl.Losers()),
		"regime", string(wl.Regime),
	)
	return wl, nil
}

// rerank renumbers cohort ranks after annotation exclusions so ranks stay
// dense and 1-based. Relative order is already correct.
func rerank(entries []types.MomentumEntry) []types.MomentumEntry {
	g, l := 0, 0
	for i := range entries {
		if entries[i].Direction == types.DirectionGainer {
			g++
			entries[i].Rank = g
		} else {
			l++
			entries[i].Rank = l
		}
	}
	return entries
}

func keysOf(m map[string]types.DailyBar) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

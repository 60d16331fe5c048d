package scanobs

import (
	"context"
	"time"

	"momentum-trading-bot/internal/interfaces"
	"momentum-trading-bot/internal/logger"
	"momentum-trading-bot/internal/metrics"
	"momentum-trading-bot/internal/trace"
	"momentum-trading-bot/internal/types"
)

type observableScanner struct {
	scanner interfaces.Scanner
}

var _ interfaces.Scanner = (*observableScanner)(nil)

func Wrap(s interfaces.Scanner) interfaces.Scanner {
	return &observableScanner{
		scanner: s,
	}
}

func (os *observableScanner) Scan(ctx context.Context, date string) (*types.Watchlist, error) {
	ctx, span := trace.StartSpan(ctx, "scanner.Scan")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting daily momentum scan",
		"date", date,
	)

	wl, err := os.scanner.Scan(ctx, date)
	elapsed := time.Since(start)
	metrics.ScanDuration.Observe(elapsed.Seconds())
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Daily momentum scan failed", err,
			"date", date,
			"duration_ms", elapsed.Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Daily momentum scan completed",
		"date", date,
		"entries", len(wl.Entries),
		"regime", string(wl.Regime),
		"duration_ms", elapsed.Milliseconds(),
	)

	return wl, nil
}

package interfaces

import (
	"context"

	"momentum-trading-bot/internal/types"
)

// Scanner runs the once-daily momentum scan and publishes the watchlist.
type Scanner interface {
	Scan(ctx context.Context, date string) (*types.Watchlist, error)
}

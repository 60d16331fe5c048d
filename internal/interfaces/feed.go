package interfaces

import (
	"context"

	"momentum-trading-bot/internal/types"
)

// BarFeed supplies the raw daily bars the pre-open scan works from.
type BarFeed interface {
	// UniverseBars returns the latest completed daily bar for every symbol
	// in the scan universe.
	UniverseBars(ctx context.Context, date string) (map[string]types.DailyBar, error)
	// PrevCloses returns each symbol's prior-day close.
	PrevCloses(ctx context.Context, symbols []string) (map[string]float64, error)
	// History returns up to n daily bars for one symbol, oldest first.
	History(ctx context.Context, symbol string, n int) ([]types.DailyBar, error)
	// IndexChanges returns the day's percent change for each reference
	// index used by regime detection.
	IndexChanges(ctx context.Context) (map[string]float64, error)
	// MarketCaps returns market capitalization per symbol where known.
	// Missing symbols are simply absent from the map.
	MarketCaps(ctx context.Context, symbols []string) (map[string]float64, error)
}

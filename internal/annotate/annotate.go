// Package annotate attaches a fixed technical-indicator snapshot to momentum
// entries. The indicator math lives in internal/ta; this package's job is to
// validate the input history and refuse to publish a partially-annotated
// entry, because partial technical data can masquerade as a valid signal.
package annotate

import (
	"errors"
	"fmt"
	"math"

	"momentum-trading-bot/internal/ta"
	"momentum-trading-bot/internal/types"
)

// ErrInsufficientHistory is returned when a symbol has fewer bars than the
// configured minimum. The caller must exclude the symbol from the watchlist,
// never zero-fill.
var ErrInsufficientHistory = errors.New("insufficient bar history")

// Config selects the indicator windows. Zero values fall back to the
// defaults the scanner config carries.
type Config struct {
	MinHistory int
	SMAWindow  int
	RSIPeriod  int
	BBWindow   int
	BBStdDev   float64
	ATRPeriod  int
}

// Annotator computes indicator snapshots from daily bar history.
type Annotator struct {
	cfg Config
}

func New(cfg Config) *Annotator {
	if cfg.MinHistory <= 0 {
		cfg.MinHistory = 20
	}
	return &Annotator{cfg: cfg}
}

// Annotate fills entry.Indicators from history (oldest bar first). The entry
// itself is returned unchanged on error.
func (a *Annotator) Annotate(entry types.MomentumEntry, history []types.DailyBar) (types.MomentumEntry, error) {
	if len(history) < a.cfg.MinHistory {
		return entry, fmt.Errorf("%w: %s has %d bars, need %d",
			ErrInsufficientHistory, entry.Symbol, len(history), a.cfg.MinHistory)
	}

	closes := make([]float64, len(history))
	highs := make([]float64, len(history))
	lows := make([]float64, len(history))
	for i, b := range history {
		if err := validateBar(b); err != nil {
			return entry, fmt.Errorf("degenerate bar for %s on %s: %w", entry.Symbol, b.Date, err)
		}
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	mid, up, low := ta.Bollinger(closes, a.cfg.BBWindow, a.cfg.BBStdDev)
	inds := map[string]float64{
		fmt.Sprintf("SMA%d", a.cfg.SMAWindow): ta.SMA(closes, a.cfg.SMAWindow),
		"RSI":    ta.RSI(closes, a.cfg.RSIPeriod),
		"BB_MID": mid,
		"BB_UP":  up,
		"BB_LOW": low,
		"ATR":    ta.ATR(highs, lows, closes, a.cfg.ATRPeriod),
	}
	for name, v := range inds {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return entry, fmt.Errorf("indicator %s for %s is not finite", name, entry.Symbol)
		}
	}

	entry.Indicators = inds
	return entry, nil
}

func validateBar(b types.DailyBar) error {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("non-positive or non-finite price")
		}
	}
	if b.Volume < 0 || math.IsNaN(b.Volume) {
		return errors.New("invalid volume")
	}
	if b.High < b.Low {
		return errors.New("high below low")
	}
	return nil
}

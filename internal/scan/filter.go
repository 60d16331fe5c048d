package scan

import (
	"math"

	"momentum-trading-bot/internal/types"
)

// FilterConfig holds the liquidity/quality thresholds for the raw universe.
type FilterConfig struct {
	MinPrice     float64
	MinVolume    float64
	MinMarketCap float64
}

// Filter retains only bars meeting the liquidity thresholds. Symbols with
// missing or zero volume, or a non-positive price, are dropped silently:
// data-quality gaps are expected and must never abort the scan. marketCaps is
// optional; symbols absent from it skip the market-cap floor.
func Filter(bars map[string]types.DailyBar, marketCaps map[string]float64, cfg FilterConfig) map[string]types.DailyBar {
	out := make(map[string]types.DailyBar, len(bars))
	for sym, bar := range bars {
		if bar.Close <= 0 || math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) {
			continue
		}
		if bar.Volume <= 0 || math.IsNaN(bar.Volume) {
			continue
		}
		if bar.Close < cfg.MinPrice {
			continue
		}
		if bar.Volume < cfg.MinVolume {
			continue
		}
		if cfg.MinMarketCap > 0 && marketCaps != nil {
			if cap, ok := marketCaps[sym]; ok && cap < cfg.MinMarketCap {
				continue
			}
		}
		out[sym] = bar
	}
	return out
}

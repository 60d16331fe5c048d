package scan

import (
	"math"
	"sort"

	"momentum-trading-bot/internal/ta"
	"momentum-trading-bot/internal/types"
)

// Rank partitions the filtered universe into gainer and loser cohorts ranked
// by absolute percent change, descending, ties broken by symbol ascending so
// two runs over the same bars produce identical orderings. Symbols with zero
// change or no prior close are excluded. Returns gainers first then losers,
// each cohort rank ascending, at most topNPerSide each.
func Rank(filtered map[string]types.DailyBar, prevCloses map[string]float64, topNPerSide int) []types.MomentumEntry {
	gainers := make([]types.MomentumEntry, 0, len(filtered))
	losers := make([]types.MomentumEntry, 0, len(filtered))

	for sym, bar := range filtered {
		prev, ok := prevCloses[sym]
		if !ok {
			continue
		}
		chg := ta.ChangePct(prev, bar.Close)
		if math.IsNaN(chg) || chg == 0 {
			continue
		}
		e := types.MomentumEntry{Symbol: sym, ChangePct: chg, Bar: bar}
		if chg > 0 {
			e.Direction = types.DirectionGainer
			gainers = append(gainers, e)
		} else {
			e.Direction = types.DirectionLoser
			losers = append(losers, e)
		}
	}

	rankCohort(gainers)
	rankCohort(losers)
	if len(gainers) > topNPerSide {
		gainers = gainers[:topNPerSide]
	}
	if len(losers) > topNPerSide {
		losers = losers[:topNPerSide]
	}
	return append(gainers, losers...)
}

func rankCohort(entries []types.MomentumEntry) {
	sort.Slice(entries, func(i, j int) bool {
		ai, aj := math.Abs(entries[i].ChangePct), math.Abs(entries[j].ChangePct)
		if ai != aj {
			return ai > aj
		}
		return entries[i].Symbol < entries[j].Symbol
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// RegimeThresholdPct is the mean reference-index move beyond which the market
// is labeled directional rather than neutral.
const RegimeThresholdPct = 0.1

// DetectRegime labels the broad market from reference-index daily changes.
// Pure and independent of the per-symbol ranking.
func DetectRegime(indexChanges map[string]float64) types.Regime {
	if len(indexChanges) == 0 {
		return types.RegimeNeutral
	}
	sum := 0.0
	for _, chg := range indexChanges {
		sum += chg
	}
	mean := sum / float64(len(indexChanges))
	switch {
	case mean > RegimeThresholdPct:
		return types.RegimeBullish
	case mean < -RegimeThresholdPct:
		return types.RegimeBearish
	default:
		return types.RegimeNeutral
	}
}

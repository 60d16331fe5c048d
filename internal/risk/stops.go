package risk

import (
	"math"

	"momentum-trading-bot/internal/types"
)

// StopConfig selects how a default protective stop is derived when a proposal
// does not carry one.
type StopConfig struct {
	Mode    string  // "PCT" or "ATR"
	Pct     float64 // stop distance as percent of price (PCT mode)
	ATRMult float64 // ATR multiplier (ATR mode)
	MinTick float64 // minimum price increment for derived limit prices
}

type stopPolicy struct {
	mode    string
	pct     float64
	atrMult float64
	minTick float64
}

func newStopPolicy(cfg StopConfig) *stopPolicy {
	return &stopPolicy{
		mode:    cfg.Mode,
		pct:     cfg.Pct,
		atrMult: cfg.ATRMult,
		minTick: cfg.MinTick,
	}
}

// distance returns the per-share stop distance used for risk-cap sizing. An
// explicit stop on the proposal wins; otherwise fall back to the configured
// volatility-based default.
func (sp *stopPolicy) distance(p types.OrderProposal) float64 {
	if p.StopPrice > 0 {
		return math.Abs(p.Price - p.StopPrice)
	}
	if sp.mode == "ATR" && p.ATR > 0 {
		return sp.atrMult * p.ATR
	}
	return p.Price * sp.pct / 100.0
}

func (sp *stopPolicy) roundToTick(price float64) float64 {
	if sp.minTick <= 0 {
		return price
	}
	return math.Round(price/sp.minTick) * sp.minTick
}

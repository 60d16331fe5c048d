// Package risk is the execution gate: every proposal from the decision-maker
// passes through an ordered chain of checks before it may reach the broker.
// Each rule either rewrites the proposal and continues, or terminates with a
// tagged decision; the first terminal rule wins.
package risk

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"momentum-trading-bot/internal/interfaces"
	"momentum-trading-bot/internal/logger"
	"momentum-trading-bot/internal/session"
	"momentum-trading-bot/internal/types"
)

// Policy holds the quantitative thresholds. The month definition and baseline
// choice are policy, not code: the source systems disagree on both, so they
// stay configurable.
type Policy struct {
	DrawdownHaltPct        float64       // e.g. -6: halt new risk at -6% month PnL
	PerTradeRiskPct        float64       // e.g. 2: risk budget per trade as % of equity
	MarginBufferPct        float64       // e.g. 30: buying power % reserved from new longs
	HardFloorPct           float64       // e.g. 20: buying power % of baseline below which nothing trades
	FlattenCutoff          time.Duration // e.g. 10m before the 16:00 close
	ExtendedLimitOffsetPct float64       // e.g. 0.5: limit price offset in extended sessions
}

// Governor evaluates proposals against account state. Evaluations are
// serialized: two concurrent approvals could jointly breach the margin buffer
// if they read the same account snapshot.
type Governor struct {
	mu     sync.Mutex
	policy Policy
	stops  *stopPolicy
	clock  *session.Clock
	nowFn  func() time.Time
}

var _ interfaces.Governor = (*Governor)(nil)

func New(policy Policy, stops StopConfig, clock *session.Clock) *Governor {
	return &Governor{
		policy: policy,
		stops:  newStopPolicy(stops),
		clock:  clock,
		nowFn:  time.Now,
	}
}

type evalState struct {
	proposal types.OrderProposal
	account  types.AccountState
	session  types.SessionState
	monthPnL float64
	closing  bool
	now      time.Time
}

type rule struct {
	name  string
	apply func(g *Governor, st *evalState) *types.Decision
}

// Ordered decision pipeline; first terminal result wins. Conversion and
// resize steps rewrite st.proposal and continue.
var rules = []rule{
	{"drawdown_brake", (*Governor).drawdownBrake},
	{"per_trade_risk_cap", (*Governor).perTradeRiskCap},
	{"margin_buffer", (*Governor).marginBuffer},
	{"hard_floor", (*Governor).hardFloor},
	{"session_order_type", (*Governor).sessionOrderType},
	{"flatten_window", (*Governor).flattenWindow},
}

// Evaluate runs the proposal through the rule chain. A Reject is a normal
// control-flow outcome, not an error; the reason tag tells the decision-maker
// whether it is a sizing problem or a structural halt.
func (g *Governor) Evaluate(ctx context.Context, p types.OrderProposal, account types.AccountState, sess types.SessionState, monthPnLPct float64) types.Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := &evalState{
		proposal: p,
		account:  account,
		session:  sess,
		monthPnL: monthPnLPct,
		closing:  isClosing(p, account),
		now:      g.nowFn(),
	}

	for _, r := range rules {
		if d := r.apply(g, st); d != nil {
			logger.RiskDecision(ctx, p.Symbol, false, string(d.Reason),
				"rule", r.name,
				"detail", d.Detail,
				"closing", st.closing,
				"session", sess.String(),
			)
			return *d
		}
	}

	resized := st.proposal.Quantity != p.Quantity
	logger.RiskDecision(ctx, p.Symbol, true, "",
		"quantity", st.proposal.Quantity,
		"resized", resized,
		"order_type", string(st.proposal.OrderType),
		"closing", st.closing,
		"session", sess.String(),
	)
	return types.Approve(st.proposal)
}

// drawdownBrake halts all new risk for the rest of the month once the
// cumulative loss threshold is hit. Closing trades stay allowed.
func (g *Governor) drawdownBrake(st *evalState) *types.Decision {
	if st.closing {
		return nil
	}
	if st.monthPnL <= g.policy.DrawdownHaltPct {
		d := types.Reject(st.proposal, types.ReasonDrawdownHalt,
			fmt.Sprintf("month pnl %.2f%% breaches halt threshold %.2f%%", st.monthPnL, g.policy.DrawdownHaltPct))
		return &d
	}
	return nil
}

// perTradeRiskCap sizes the proposal so the loss at the stop stays within the
// per-trade risk budget. Oversized but directionally-correct orders are
// resized down, not rejected; rejection happens only when even one share
// exceeds the budget.
func (g *Governor) perTradeRiskCap(st *evalState) *types.Decision {
	if st.closing {
		return nil
	}
	riskAmount := st.account.Equity * g.policy.PerTradeRiskPct / 100.0
	stopDist := g.stops.distance(st.proposal)
	if stopDist <= 0 || math.IsNaN(stopDist) {
		d := types.Reject(st.proposal, types.ReasonRiskCapExceeded,
			"no usable stop distance to size against")
		return &d
	}
	capQty := int(riskAmount / stopDist)
	if st.proposal.Quantity <= capQty {
		return nil
	}
	if capQty < 1 {
		d := types.Reject(st.proposal, types.ReasonRiskCapExceeded,
			fmt.Sprintf("risk budget %.2f cannot cover one share at stop distance %.2f", riskAmount, stopDist))
		return &d
	}
	st.proposal.Quantity = capQty
	return nil
}

// marginBuffer keeps a reserved fraction of buying power away from new long
// exposure. Shorts are exempt here; they were already sized by the risk cap.
func (g *Governor) marginBuffer(st *evalState) *types.Decision {
	if st.closing || st.proposal.Side != types.Buy {
		return nil
	}
	baseline := st.account.BuyingPowerBaseline
	if baseline <= 0 {
		baseline = st.account.BuyingPower
	}
	cost := st.proposal.Price * float64(st.proposal.Quantity)
	remaining := st.account.BuyingPower - cost
	reserve := baseline * g.policy.MarginBufferPct / 100.0
	if remaining < reserve {
		d := types.Reject(st.proposal, types.ReasonMarginBuffer,
			fmt.Sprintf("order would leave %.2f buying power, reserve is %.2f", remaining, reserve))
		return &d
	}
	return nil
}

// hardFloor is the absolute stop: once buying power is below the floor
// fraction of its baseline, nothing is approved and nothing is resized. A
// broker snapshot without a baseline leaves the floor unverifiable, so
// nothing trades until the binding reports one.
func (g *Governor) hardFloor(st *evalState) *types.Decision {
	baseline := st.account.BuyingPowerBaseline
	if baseline <= 0 {
		d := types.Reject(st.proposal, types.ReasonHardFloor,
			"buying power baseline unavailable, floor cannot be verified")
		return &d
	}
	floor := baseline * g.policy.HardFloorPct / 100.0
	if st.account.BuyingPower < floor {
		d := types.Reject(st.proposal, types.ReasonHardFloor,
			fmt.Sprintf("buying power %.2f below floor %.2f", st.account.BuyingPower, floor))
		return &d
	}
	return nil
}

// sessionOrderType converts market orders to limit orders in extended
// sessions; pre- and post-market never accept market orders.
func (g *Governor) sessionOrderType(st *evalState) *types.Decision {
	if !st.session.Extended() || st.proposal.OrderType != types.Market {
		return nil
	}
	offset := g.policy.ExtendedLimitOffsetPct / 100.0
	var limit float64
	if st.proposal.Side == types.Buy {
		limit = st.proposal.Price * (1 + offset)
	} else {
		limit = st.proposal.Price * (1 - offset)
	}
	st.proposal.OrderType = types.Limit
	st.proposal.LimitPrice = g.stops.roundToTick(limit)
	return nil
}

// flattenWindow blocks new risk in the trailing minutes before the regular
// close. Closing proposals pass through the window untouched.
func (g *Governor) flattenWindow(st *evalState) *types.Decision {
	if st.closing {
		return nil
	}
	remaining, ok := g.clock.UntilRegularClose(st.now)
	if !ok {
		return nil
	}
	if remaining <= g.policy.FlattenCutoff {
		d := types.Reject(st.proposal, types.ReasonFlattenWindow,
			fmt.Sprintf("%.0fs to close, new risk blocked inside %.0fs cutoff", remaining.Seconds(), g.policy.FlattenCutoff.Seconds()))
		return &d
	}
	return nil
}

// isClosing reports whether the proposal reduces or flattens an existing
// position: a sell against a long, or a buy against a short, for no more than
// the open quantity. Anything else is new risk, including a sell with no
// position (a short entry).
func isClosing(p types.OrderProposal, account types.AccountState) bool {
	pos, ok := account.OpenPositions[p.Symbol]
	if !ok || pos.Quantity <= 0 {
		return false
	}
	switch {
	case p.Side == types.Sell && pos.Side == types.SideLong:
		return p.Quantity <= pos.Quantity
	case p.Side == types.Buy && pos.Side == types.SideShort:
		return p.Quantity <= pos.Quantity
	default:
		return false
	}
}

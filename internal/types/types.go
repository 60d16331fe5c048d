package types

// DateFormat is the canonical key format for anything keyed by trading day.
const DateFormat = "2006-01-02"

// SessionState is the time-of-day trading phase.
type SessionState int

const (
	SessionClosed SessionState = iota
	SessionPreMarket
	SessionRegular
	SessionPostMarket
)

func (s SessionState) String() string {
	switch s {
	case SessionPreMarket:
		return "PRE_MARKET"
	case SessionRegular:
		return "REGULAR"
	case SessionPostMarket:
		return "POST_MARKET"
	default:
		return "CLOSED"
	}
}

// Extended reports whether the session trades outside regular hours.
func (s SessionState) Extended() bool {
	return s == SessionPreMarket || s == SessionPostMarket
}

// Regime is the coarse directional bias of the broader market.
type Regime string

const (
	RegimeBullish Regime = "BULLISH"
	RegimeBearish Regime = "BEARISH"
	RegimeNeutral Regime = "NEUTRAL"
)

// Direction marks which momentum cohort an entry belongs to.
type Direction string

const (
	DirectionGainer Direction = "GAINER"
	DirectionLoser  Direction = "LOSER"
)

// DailyBar is one symbol's OHLCV for a single trading day. Immutable once
// ingested for a given (symbol, date).
type DailyBar struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// MomentumEntry is one ranked candidate in a day's watchlist. Rank is 1-based
// within its direction cohort.
type MomentumEntry struct {
	Symbol     string             `json:"symbol"`
	Direction  Direction          `json:"direction"`
	Rank       int                `json:"rank"`
	ChangePct  float64            `json:"change_pct"`
	Bar        DailyBar           `json:"bar"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
}

// Watchlist is the day's ranked candidate set plus market regime. Entries are
// ordered gainers first by rank, then losers by rank, and are immutable once
// the scan publishes them.
type Watchlist struct {
	ScanDate string          `json:"scan_date"`
	Entries  []MomentumEntry `json:"entries"`
	Regime   Regime          `json:"regime"`
}

func (w *Watchlist) Gainers() []MomentumEntry { return w.byDirection(DirectionGainer) }
func (w *Watchlist) Losers() []MomentumEntry  { return w.byDirection(DirectionLoser) }

func (w *Watchlist) byDirection(d Direction) []MomentumEntry {
	out := make([]MomentumEntry, 0, len(w.Entries))
	for _, e := range w.Entries {
		if e.Direction == d {
			out = append(out, e)
		}
	}
	return out
}

// PositionSide is the direction of an open position.
type PositionSide string

const (
	SideLong  PositionSide = "LONG"
	SideShort PositionSide = "SHORT"
)

// Position is one open holding as reported by the broker.
type Position struct {
	Symbol           string       `json:"symbol"`
	Quantity         int          `json:"quantity"`
	Side             PositionSide `json:"side"`
	EntryPrice       float64      `json:"entry_price"`
	UnrealizedPnLPct float64      `json:"unrealized_pnl_pct"`
}

// AccountState is a point-in-time broker snapshot. It is fetched fresh before
// each risk decision and never reused past that decision.
type AccountState struct {
	Equity              float64             `json:"equity"`
	Cash                float64             `json:"cash"`
	BuyingPower         float64             `json:"buying_power"`
	BuyingPowerBaseline float64             `json:"buying_power_baseline"`
	OpenPositions       map[string]Position `json:"open_positions"`
}

// OrderSide is the action side of a proposal.
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OrderType is the execution style of a proposal.
type OrderType string

const (
	Market OrderType = "MARKET"
	Limit  OrderType = "LIMIT"
)

// OrderProposal is what the decision-maker wants to do. The risk governor may
// rewrite quantity, order type, and limit price before it is submitted.
type OrderProposal struct {
	Symbol     string    `json:"symbol"`
	Side       OrderSide `json:"side"`
	Quantity   int       `json:"quantity"`
	OrderType  OrderType `json:"order_type"`
	LimitPrice float64   `json:"limit_price,omitempty"`
	// Price is the current market quote the proposal was built against.
	Price float64 `json:"price"`
	// StopPrice is the intended protective stop. Zero means "use the
	// configured default stop" when sizing.
	StopPrice float64 `json:"stop_price,omitempty"`
	// ATR lets ATR-mode default stops size off the symbol's volatility.
	ATR float64 `json:"atr,omitempty"`
}

// RejectReason is the machine-readable tag on a rejection, so the
// decision-maker can tell a sizing problem from a structural halt.
type RejectReason string

const (
	ReasonDrawdownHalt    RejectReason = "DRAWDOWN_HALT"
	ReasonRiskCapExceeded RejectReason = "RISK_CAP_EXCEEDED_UNRESIZABLE"
	ReasonMarginBuffer    RejectReason = "MARGIN_BUFFER"
	ReasonHardFloor       RejectReason = "HARD_FLOOR"
	ReasonFlattenWindow   RejectReason = "FLATTEN_WINDOW"
)

// Decision is the risk governor's verdict on a proposal.
type Decision struct {
	Approved bool          `json:"approved"`
	Proposal OrderProposal `json:"proposal"`
	Reason   RejectReason  `json:"reason,omitempty"`
	Detail   string        `json:"detail,omitempty"`
}

// Approve builds an approving decision carrying the (possibly rewritten)
// proposal.
func Approve(p OrderProposal) Decision {
	return Decision{Approved: true, Proposal: p}
}

// Reject builds a rejection with its reason tag.
func Reject(p OrderProposal, reason RejectReason, detail string) Decision {
	return Decision{Approved: false, Proposal: p, Reason: reason, Detail: detail}
}

// OrderAck is the broker's acknowledgement of a submitted order.
type OrderAck struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

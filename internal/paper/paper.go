// Package paper holds dry-run stand-ins for the external collaborators: a
// broker that acknowledges orders without sending them anywhere and a bar
// feed serving fixture data. Live bindings are supplied by the host process.
package paper

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"momentum-trading-bot/internal/interfaces"
	"momentum-trading-bot/internal/logger"
	"momentum-trading-bot/internal/types"
)

// Broker is an in-memory brokerage: fixed account snapshot, orders accepted
// and journaled but never routed.
type Broker struct {
	mu      sync.Mutex
	account types.AccountState
	pnlPct  float64
	orders  []types.OrderProposal
}

var _ interfaces.Broker = (*Broker)(nil)

func NewBroker(account types.AccountState) *Broker {
	return &Broker{account: account}
}

// SetMonthPnLPct adjusts the reported month PnL, for exercising the drawdown
// brake in dry runs.
func (b *Broker) SetMonthPnLPct(v float64) {
	b.mu.Lock()
	b.pnlPct = v
	b.mu.Unlock()
}

func (b *Broker) Account(_ context.Context) (types.AccountState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account, nil
}

func (b *Broker) MonthPnLPct(_ context.Context) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pnlPct, nil
}

func (b *Broker) PlaceOrder(ctx context.Context, p types.OrderProposal) (types.OrderAck, error) {
	b.mu.Lock()
	b.orders = append(b.orders, p)
	b.mu.Unlock()
	logger.Debug(ctx, "Paper order accepted", "symbol", p.Symbol, "side", string(p.Side), "qty", p.Quantity)
	return types.OrderAck{OrderID: uuid.NewString(), Status: "ACCEPTED"}, nil
}

// Orders returns everything placed so far.
func (b *Broker) Orders() []types.OrderProposal {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.OrderProposal, len(b.orders))
	copy(out, b.orders)
	return out
}

// Feed serves daily bars from in-memory fixtures.
type Feed struct {
	Bars       map[string]types.DailyBar
	Prev       map[string]float64
	Histories  map[string][]types.DailyBar
	Indices    map[string]float64
	Caps       map[string]float64
}

var _ interfaces.BarFeed = (*Feed)(nil)

func (f *Feed) UniverseBars(_ context.Context, _ string) (map[string]types.DailyBar, error) {
	return f.Bars, nil
}

func (f *Feed) PrevCloses(_ context.Context, _ []string) (map[string]float64, error) {
	return f.Prev, nil
}

func (f *Feed) History(_ context.Context, symbol string, n int) ([]types.DailyBar, error) {
	h, ok := f.Histories[symbol]
	if !ok {
		return nil, fmt.Errorf("no history fixture for %s", symbol)
	}
	if len(h) > n {
		h = h[len(h)-n:]
	}
	return h, nil
}

func (f *Feed) IndexChanges(_ context.Context) (map[string]float64, error) {
	return f.Indices, nil
}

func (f *Feed) MarketCaps(_ context.Context, _ []string) (map[string]float64, error) {
	return f.Caps, nil
}

// Decider proposes nothing. It is the fallback when no decision-maker is
// wired, mirroring a HOLD-only policy.
type Decider struct{}

var _ interfaces.Decider = (*Decider)(nil)

func NewDecider() *Decider { return &Decider{} }

func (d *Decider) Propose(ctx context.Context, wl *types.Watchlist, _ types.AccountState) ([]types.OrderProposal, error) {
	logger.Debug(ctx, "Noop decider called - proposing nothing", "watchlist_entries", len(wl.Entries))
	return nil, nil
}

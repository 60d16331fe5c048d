package risk

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"momentum-trading-bot/internal/logger"
	"momentum-trading-bot/internal/session"
	"momentum-trading-bot/internal/types"
)

func TestMain(m *testing.M) {
	_ = logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}

func testPolicy() Policy {
	return Policy{
		DrawdownHaltPct:        -6,
		PerTradeRiskPct:        2,
		MarginBufferPct:        30,
		HardFloorPct:           20,
		FlattenCutoff:          10 * time.Minute,
		ExtendedLimitOffsetPct: 0.5,
	}
}

// Thursday 2026-08-20 is a regular trading day.
func newTestGovernor(t *testing.T, hour, minute int) *Governor {
	t.Helper()
	clock, err := session.NewClock("America/New_York", nil, 5*time.Minute)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	g := New(testPolicy(), StopConfig{Mode: "PCT", Pct: 2, MinTick: 0.01}, clock)
	g.nowFn = func() time.Time {
		return time.Date(2026, 8, 20, hour, minute, 0, 0, clock.Location())
	}
	return g
}

func healthyAccount() types.AccountState {
	return types.AccountState{
		Equity:              100_000,
		Cash:                100_000,
		BuyingPower:         200_000,
		BuyingPowerBaseline: 200_000,
		OpenPositions:       map[string]types.Position{},
	}
}

func longPosition(sym string, qty int) map[string]types.Position {
	return map[string]types.Position{
		sym: {Symbol: sym, Quantity: qty, Side: types.SideLong, EntryPrice: 90},
	}
}

func TestDrawdownHaltBlocksNewRisk(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 98}

	d := g.Evaluate(context.Background(), p, healthyAccount(), types.SessionRegular, -6.0)
	if d.Approved {
		t.Fatal("expected rejection at halt threshold")
	}
	if d.Reason != types.ReasonDrawdownHalt {
		t.Errorf("reason = %s, want DRAWDOWN_HALT", d.Reason)
	}
}

func TestDrawdownHaltAllowsClosing(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	acct := healthyAccount()
	acct.OpenPositions = longPosition("AAPL", 50)
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 50, OrderType: types.Market, Price: 100}

	d := g.Evaluate(context.Background(), p, acct, types.SessionRegular, -8.5)
	if !d.Approved {
		t.Fatalf("closing trade should pass the halt: %s %s", d.Reason, d.Detail)
	}
}

func TestRiskCapResizesOversizedOrder(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	// Equity 100k at 2% risk is a 2000 budget; stop distance 2 caps at 1000
	// shares. But 1000 shares at 100 would eat the margin buffer, so give the
	// account headroom.
	acct := healthyAccount()
	acct.BuyingPower = 500_000
	acct.BuyingPowerBaseline = 500_000
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 2000, OrderType: types.Market, Price: 100, StopPrice: 98}

	d := g.Evaluate(context.Background(), p, acct, types.SessionRegular, 0)
	if !d.Approved {
		t.Fatalf("expected resized approval, got %s: %s", d.Reason, d.Detail)
	}
	if d.Proposal.Quantity != 1000 {
		t.Errorf("quantity = %d, want 1000", d.Proposal.Quantity)
	}
}

func TestRiskCapKeepsCompliantQuantity(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 500, OrderType: types.Market, Price: 100, StopPrice: 98}

	d := g.Evaluate(context.Background(), p, healthyAccount(), types.SessionRegular, 0)
	if !d.Approved {
		t.Fatalf("expected approval, got %s: %s", d.Reason, d.Detail)
	}
	if d.Proposal.Quantity != 500 {
		t.Errorf("quantity = %d, want 500 untouched", d.Proposal.Quantity)
	}
}

func TestRiskCapRejectsWhenOneShareExceedsBudget(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	acct := healthyAccount()
	acct.Equity = 100
	// Budget is 2; stop distance is 2500.
	p := types.OrderProposal{Symbol: "BRK", Side: types.Buy, Quantity: 1, OrderType: types.Market, Price: 5000, StopPrice: 2500}

	d := g.Evaluate(context.Background(), p, acct, types.SessionRegular, 0)
	if d.Approved {
		t.Fatal("expected rejection when cap is below one share")
	}
	if d.Reason != types.ReasonRiskCapExceeded {
		t.Errorf("reason = %s, want RISK_CAP_EXCEEDED_UNRESIZABLE", d.Reason)
	}
}

func TestRiskCapDefaultStopDistance(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	// No explicit stop: PCT mode at 2% of 100 gives distance 2, same 1000 cap.
	acct := healthyAccount()
	acct.BuyingPower = 500_000
	acct.BuyingPowerBaseline = 500_000
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 2000, OrderType: types.Market, Price: 100}

	d := g.Evaluate(context.Background(), p, acct, types.SessionRegular, 0)
	if !d.Approved || d.Proposal.Quantity != 1000 {
		t.Fatalf("default stop sizing: approved=%v qty=%d, want approved qty 1000", d.Approved, d.Proposal.Quantity)
	}
}

func TestMarginBufferRejectsLong(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	acct := healthyAccount()
	acct.BuyingPower = 25_000
	acct.BuyingPowerBaseline = 100_000
	// Reserve is 30k of the 100k baseline; even a small long cannot clear it.
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 98}

	d := g.Evaluate(context.Background(), p, acct, types.SessionRegular, 0)
	if d.Approved {
		t.Fatal("expected margin buffer rejection")
	}
	if d.Reason != types.ReasonMarginBuffer {
		t.Errorf("reason = %s, want MARGIN_BUFFER", d.Reason)
	}
}

func TestMarginBufferDoesNotApplyToSells(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	acct := healthyAccount()
	acct.BuyingPower = 25_000
	acct.BuyingPowerBaseline = 100_000
	// Short entry at the same buying power passes the buffer (floor is 20k).
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 102}

	d := g.Evaluate(context.Background(), p, acct, types.SessionRegular, 0)
	if !d.Approved {
		t.Fatalf("sell should bypass the margin buffer, got %s: %s", d.Reason, d.Detail)
	}
}

func TestHardFloorBlocksEverything(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	acct := healthyAccount()
	acct.BuyingPower = 15_000
	acct.BuyingPowerBaseline = 100_000

	// Short entry reaches the floor rule directly (the margin buffer only
	// gates longs).
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 102}
	d := g.Evaluate(context.Background(), p, acct, types.SessionRegular, 0)
	if d.Approved || d.Reason != types.ReasonHardFloor {
		t.Fatalf("short entry below floor: approved=%v reason=%s, want HARD_FLOOR", d.Approved, d.Reason)
	}

	// The floor holds even for closing trades.
	acct.OpenPositions = longPosition("AAPL", 50)
	closing := types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 50, OrderType: types.Market, Price: 100}
	d = g.Evaluate(context.Background(), closing, acct, types.SessionRegular, 0)
	if d.Approved || d.Reason != types.ReasonHardFloor {
		t.Fatalf("closing trade below floor: approved=%v reason=%s, want HARD_FLOOR", d.Approved, d.Reason)
	}
}

func TestHardFloorRejectsMissingBaseline(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	acct := healthyAccount()
	acct.BuyingPowerBaseline = 0

	p := types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 102}
	d := g.Evaluate(context.Background(), p, acct, types.SessionRegular, 0)
	if d.Approved || d.Reason != types.ReasonHardFloor {
		t.Fatalf("missing baseline: approved=%v reason=%s, want HARD_FLOOR", d.Approved, d.Reason)
	}
}

func TestExtendedSessionConvertsMarketToLimit(t *testing.T) {
	g := newTestGovernor(t, 8, 0)

	buy := types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 98}
	d := g.Evaluate(context.Background(), buy, healthyAccount(), types.SessionPreMarket, 0)
	if !d.Approved {
		t.Fatalf("expected approval, got %s: %s", d.Reason, d.Detail)
	}
	if d.Proposal.OrderType != types.Limit {
		t.Errorf("order type = %s, want LIMIT", d.Proposal.OrderType)
	}
	if math.Abs(d.Proposal.LimitPrice-100.50) > 1e-9 {
		t.Errorf("buy limit = %.4f, want 100.50", d.Proposal.LimitPrice)
	}

	sell := types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 102}
	d = g.Evaluate(context.Background(), sell, healthyAccount(), types.SessionPostMarket, 0)
	if !d.Approved {
		t.Fatalf("expected approval, got %s: %s", d.Reason, d.Detail)
	}
	if math.Abs(d.Proposal.LimitPrice-99.50) > 1e-9 {
		t.Errorf("sell limit = %.4f, want 99.50", d.Proposal.LimitPrice)
	}
}

func TestRegularSessionKeepsMarketOrders(t *testing.T) {
	g := newTestGovernor(t, 10, 0)
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 98}

	d := g.Evaluate(context.Background(), p, healthyAccount(), types.SessionRegular, 0)
	if !d.Approved || d.Proposal.OrderType != types.Market {
		t.Fatalf("approved=%v type=%s, want approved MARKET", d.Approved, d.Proposal.OrderType)
	}
}

func TestFlattenWindowBlocksNewRisk(t *testing.T) {
	// 15:52 with a 10 minute cutoff: inside the window.
	g := newTestGovernor(t, 15, 52)
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 98}

	d := g.Evaluate(context.Background(), p, healthyAccount(), types.SessionRegular, 0)
	if d.Approved {
		t.Fatal("expected flatten window rejection")
	}
	if d.Reason != types.ReasonFlattenWindow {
		t.Errorf("reason = %s, want FLATTEN_WINDOW", d.Reason)
	}
}

func TestFlattenWindowAllowsClosing(t *testing.T) {
	g := newTestGovernor(t, 15, 52)
	acct := healthyAccount()
	acct.OpenPositions = longPosition("AAPL", 50)
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 50, OrderType: types.Market, Price: 100}

	d := g.Evaluate(context.Background(), p, acct, types.SessionRegular, 0)
	if !d.Approved {
		t.Fatalf("closing trade should pass the window, got %s: %s", d.Reason, d.Detail)
	}
}

func TestFlattenWindowOpenBeforeCutoff(t *testing.T) {
	// 15:49 leaves 11 minutes, outside the 10 minute cutoff.
	g := newTestGovernor(t, 15, 49)
	p := types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 10, OrderType: types.Market, Price: 100, StopPrice: 98}

	d := g.Evaluate(context.Background(), p, healthyAccount(), types.SessionRegular, 0)
	if !d.Approved {
		t.Fatalf("expected approval before the cutoff, got %s: %s", d.Reason, d.Detail)
	}
}

func TestIsClosing(t *testing.T) {
	acct := healthyAccount()
	acct.OpenPositions = longPosition("AAPL", 50)

	cases := []struct {
		name string
		p    types.OrderProposal
		want bool
	}{
		{"sell against long", types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 50}, true},
		{"partial sell against long", types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 20}, true},
		{"oversell flips to new risk", types.OrderProposal{Symbol: "AAPL", Side: types.Sell, Quantity: 80}, false},
		{"add to long", types.OrderProposal{Symbol: "AAPL", Side: types.Buy, Quantity: 10}, false},
		{"sell with no position", types.OrderProposal{Symbol: "MSFT", Side: types.Sell, Quantity: 10}, false},
	}
	for _, tc := range cases {
		if got := isClosing(tc.p, acct); got != tc.want {
			t.Errorf("%s: isClosing = %v, want %v", tc.name, got, tc.want)
		}
	}

	short := healthyAccount()
	short.OpenPositions = map[string]types.Position{
		"TSLA": {Symbol: "TSLA", Quantity: 30, Side: types.SideShort},
	}
	if !isClosing(types.OrderProposal{Symbol: "TSLA", Side: types.Buy, Quantity: 30}, short) {
		t.Error("buy against short should be closing")
	}
}

package engine

import (
	"context"
	"errors"
	"time"

	"momentum-trading-bot/internal/interfaces"
	"momentum-trading-bot/internal/logger"
	"momentum-trading-bot/internal/metrics"
	"momentum-trading-bot/internal/session"
	"momentum-trading-bot/internal/store"
	"momentum-trading-bot/internal/tradelog"
	"momentum-trading-bot/internal/types"
	"momentum-trading-bot/internal/watchlist"
)

// Engine drives the single-threaded cooperative loop: sleep while closed,
// scan once pre-open, evaluate decision-maker proposals during the trading
// window. The sleeper is the only suspension point and honors shutdown within
// one poll interval.
type engine struct {
	cfg      *store.Config
	clock    *session.Clock
	sleeper  *session.Sleeper
	scanner  interfaces.Scanner
	wlStore  watchlist.Store
	brk      interfaces.Broker
	decider  interfaces.Decider
	governor interfaces.Governor

	lastScanDate  string
	lastPurgeDate string
}

// Run loops until the context is canceled.
func (e *engine) Run(ctx context.Context) error {
	for {
		if err := e.Cycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.ErrorWithErr(ctx, "Cycle failed, continuing", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Cycle performs one loop iteration: exactly one of sleep, scan, or a single
// decision pass.
func (e *engine) Cycle(ctx context.Context) error {
	now := time.Now()
	state := e.clock.Classify(now)
	today := e.clock.TradingDay(now)

	switch state {
	case types.SessionClosed:
		// Retention purge is maintenance work; do it while nothing
		// trades, then sleep to 5 minutes before the next open. No
		// connectivity checks happen here: probing a collaborator
		// while guaranteed-closed only produces false failures.
		e.purgeOld(ctx, now)
		wake := e.clock.NextWake(now)
		logger.Info(ctx, "Market closed, sleeping", "wake", wake.Format(time.RFC3339))
		return e.sleeper.SleepUntil(ctx, wake)

	case types.SessionPreMarket:
		if e.lastScanDate != today {
			if _, err := e.scanner.Scan(ctx, today); err != nil {
				logger.ErrorWithErr(ctx, "Pre-open scan failed, will retry next cycle", err, "date", today)
				return e.pace(ctx)
			}
			e.lastScanDate = today
		}
		return e.pace(ctx)

	default: // REGULAR, POST_MARKET
		if err := e.step(ctx, state, today); err != nil {
			return err
		}
		return e.pace(ctx)
	}
}

// step runs one decision-maker turn: fresh account state, the day's
// watchlist (or the static fallback), proposals, and the risk gate.
func (e *engine) step(ctx context.Context, state types.SessionState, today string) error {
	account, err := e.fetchAccount(ctx)
	if err != nil {
		// No trading decision is made on stale or absent account data.
		// Fatal for the cycle, never for the process.
		logger.Warn(ctx, "Account fetch exhausted retries, skipping cycle", "error", err.Error())
		return nil
	}
	metrics.Equity.Set(account.Equity)

	monthPnL, err := e.brk.MonthPnLPct(ctx)
	if err != nil {
		logger.Warn(ctx, "Month PnL unavailable, skipping cycle", "error", err.Error())
		return nil
	}

	wl, err := e.wlStore.Get(ctx, today)
	switch {
	case err == nil:
		metrics.WatchlistReads.WithLabelValues("hit").Inc()
	case errors.Is(err, watchlist.ErrNotFound):
		metrics.WatchlistReads.WithLabelValues("miss").Inc()
		logger.Warn(ctx, "Watchlist miss, using static fallback", "date", today, "fallback_size", len(e.cfg.Universe.Static))
		wl = watchlist.StaticFallback(today, e.cfg.Universe.Static)
	default:
		metrics.WatchlistReads.WithLabelValues("error").Inc()
		logger.ErrorWithErr(ctx, "Watchlist read failed, using static fallback", err, "date", today)
		wl = watchlist.StaticFallback(today, e.cfg.Universe.Static)
	}

	proposals, err := e.decider.Propose(ctx, wl, account)
	if err != nil {
		logger.ErrorWithErr(ctx, "Decision-maker failed, skipping cycle", err)
		return nil
	}

	for _, p := range proposals {
		d := e.governor.Evaluate(ctx, p, account, state, monthPnL)
		_ = tradelog.AppendDecision(tradelog.DecisionEntry{
			Symbol:       p.Symbol,
			Side:         string(p.Side),
			Approved:     d.Approved,
			RejectReason: string(d.Reason),
			Detail:       d.Detail,
			Qty:          d.Proposal.Quantity,
			Price:        p.Price,
			Session:      state.String(),
			MonthPnLPct:  monthPnL,
		})
		if !d.Approved {
			continue
		}

		ack, err := e.brk.PlaceOrder(ctx, d.Proposal)
		if err != nil {
			logger.ErrorWithErr(ctx, "Order submission failed", err, "symbol", p.Symbol, "side", string(p.Side))
			continue
		}
		metrics.OrdersTotal.WithLabelValues(string(d.Proposal.Side)).Inc()
		logger.Trade(ctx, d.Proposal.Symbol, string(d.Proposal.Side), d.Proposal.Quantity, d.Proposal.Price, ack.OrderID,
			"order_type", string(d.Proposal.OrderType),
		)
		_ = tradelog.Append(tradelog.Entry{
			Symbol:    d.Proposal.Symbol,
			Side:      string(d.Proposal.Side),
			Qty:       d.Proposal.Quantity,
			Price:     d.Proposal.Price,
			OrderID:   ack.OrderID,
			OrderType: string(d.Proposal.OrderType),
		})

		// An accepted order consumes buying power before the broker
		// reports it. Debit locally so the rest of this pass is judged
		// against what is actually left; two orders that each clear the
		// margin buffer alone must not clear it jointly.
		account.BuyingPower -= d.Proposal.Price * float64(d.Proposal.Quantity)
		if account.BuyingPower < 0 {
			account.BuyingPower = 0
		}
	}
	return nil
}

func (e *engine) purgeOld(ctx context.Context, now time.Time) {
	today := e.clock.TradingDay(now)
	if e.lastPurgeDate == today {
		return
	}
	cutoff := now.In(e.clock.Location()).AddDate(0, 0, -e.cfg.Watchlist.RetentionDays).Format(types.DateFormat)
	n, err := e.wlStore.PurgeBefore(ctx, cutoff)
	if err != nil {
		logger.Warn(ctx, "Watchlist purge failed", "cutoff", cutoff, "error", err.Error())
		return
	}
	e.lastPurgeDate = today
	if n > 0 {
		logger.Info(ctx, "Purged expired watchlists", "cutoff", cutoff, "purged", n)
	}
}

// pace sleeps one poll interval, interruptibly.
func (e *engine) pace(ctx context.Context) error {
	return e.sleeper.SleepUntil(ctx, time.Now().Add(time.Duration(e.cfg.PollSeconds)*time.Second))
}

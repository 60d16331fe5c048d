package interfaces

import (
	"context"

	"momentum-trading-bot/internal/types"
)

// Broker is the external brokerage surface this core depends on. Account is
// the only call the trading loop blocks on over the network; it must be
// wrapped with a timeout by the caller.
type Broker interface {
	Account(ctx context.Context) (types.AccountState, error)
	// MonthPnLPct reports cumulative account PnL for the configured month
	// window, as a percentage of starting equity.
	MonthPnLPct(ctx context.Context) (float64, error)
	PlaceOrder(ctx context.Context, p types.OrderProposal) (types.OrderAck, error)
}

package interfaces

import (
	"context"

	"momentum-trading-bot/internal/types"
)

// Decider is the external decision-maker. It reads the day's watchlist and
// the fresh account snapshot and proposes orders; it never submits them
// itself.
type Decider interface {
	Propose(ctx context.Context, wl *types.Watchlist, account types.AccountState) ([]types.OrderProposal, error)
}

package interfaces

import (
	"context"

	"momentum-trading-bot/internal/types"
)

// Governor gates every proposal against account risk policy before it can
// reach the broker.
type Governor interface {
	Evaluate(ctx context.Context, p types.OrderProposal, account types.AccountState, session types.SessionState, monthPnLPct float64) types.Decision
}

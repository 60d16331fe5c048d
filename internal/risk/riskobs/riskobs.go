package riskobs

import (
	"context"

	"momentum-trading-bot/internal/interfaces"
	"momentum-trading-bot/internal/metrics"
	"momentum-trading-bot/internal/trace"
	"momentum-trading-bot/internal/types"
)

type observableGovernor struct {
	governor interfaces.Governor
}

var _ interfaces.Governor = (*observableGovernor)(nil)

func Wrap(g interfaces.Governor) interfaces.Governor {
	return &observableGovernor{
		governor: g,
	}
}

func (og *observableGovernor) Evaluate(ctx context.Context, p types.OrderProposal, account types.AccountState, sess types.SessionState, monthPnLPct float64) types.Decision {
	ctx, span := trace.StartSpan(ctx, "governor.Evaluate")
	defer span.End()

	d := og.governor.Evaluate(ctx, p, account, sess, monthPnLPct)

	if d.Approved {
		metrics.RiskDecisions.WithLabelValues("approve", "").Inc()
	} else {
		metrics.RiskDecisions.WithLabelValues("reject", string(d.Reason)).Inc()
	}
	return d
}

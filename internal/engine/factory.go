package engine

import (
	"context"

	"momentum-trading-bot/internal/interfaces"
	"momentum-trading-bot/internal/session"
	"momentum-trading-bot/internal/store"
	"momentum-trading-bot/internal/watchlist"
)

// Runner is the loop surface the host process drives.
type Runner interface {
	Run(ctx context.Context) error
	Cycle(ctx context.Context) error
}

func New(cfg *store.Config, clock *session.Clock, sleeper *session.Sleeper, scanner interfaces.Scanner, wlStore watchlist.Store, brk interfaces.Broker, decider interfaces.Decider, governor interfaces.Governor) Runner {
	return &engine{
		cfg:      cfg,
		clock:    clock,
		sleeper:  sleeper,
		scanner:  scanner,
		wlStore:  wlStore,
		brk:      brk,
		decider:  decider,
		governor: governor,
	}
}

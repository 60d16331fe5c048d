package watchlist

import (
	"context"

	"momentum-trading-bot/internal/types"
)

// LayeredStore puts an in-memory store in front of a durable one. Writes go
// through to the durable layer first, then memory, so the durable layer is
// never behind what readers have seen. Reads that miss memory are backfilled
// from the durable layer.
type LayeredStore struct {
	mem     *MemoryStore
	durable Store
}

var _ Store = (*LayeredStore)(nil)

func NewLayeredStore(durable Store) *LayeredStore {
	return &LayeredStore{mem: NewMemoryStore(), durable: durable}
}

func (l *LayeredStore) Get(ctx context.Context, date string) (*types.Watchlist, error) {
	if wl, err := l.mem.Get(ctx, date); err == nil {
		return wl, nil
	}
	wl, err := l.durable.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	_ = l.mem.Put(ctx, wl)
	return wl, nil
}

func (l *LayeredStore) Put(ctx context.Context, wl *types.Watchlist) error {
	if err := l.durable.Put(ctx, wl); err != nil {
		return err
	}
	return l.mem.Put(ctx, wl)
}

func (l *LayeredStore) PurgeBefore(ctx context.Context, date string) (int, error) {
	_, _ = l.mem.PurgeBefore(ctx, date)
	return l.durable.PurgeBefore(ctx, date)
}

func (l *LayeredStore) Close() error { return l.durable.Close() }

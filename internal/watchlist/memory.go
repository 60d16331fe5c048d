package watchlist

import (
	"context"
	"sync"

	"momentum-trading-bot/internal/types"
)

// MemoryStore keeps watchlists in process memory. The write path swaps in a
// private copy under the lock, so readers never observe a half-written
// watchlist; reads hand out copies so published entries stay immutable.
type MemoryStore struct {
	mu   sync.RWMutex
	days map[string]*types.Watchlist
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: make(map[string]*types.Watchlist)}
}

func (m *MemoryStore) Get(_ context.Context, date string) (*types.Watchlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wl, ok := m.days[date]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneWatchlist(wl), nil
}

func (m *MemoryStore) Put(_ context.Context, wl *types.Watchlist) error {
	cp := cloneWatchlist(wl)
	m.mu.Lock()
	m.days[cp.ScanDate] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) PurgeBefore(_ context.Context, date string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for d := range m.days {
		if d < date {
			delete(m.days, d)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Close() error { return nil }

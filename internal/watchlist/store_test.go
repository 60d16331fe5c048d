package watchlist

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"momentum-trading-bot/internal/types"
)

func sampleWatchlist(date string) *types.Watchlist {
	return &types.Watchlist{
		ScanDate: date,
		Regime:   types.RegimeBullish,
		Entries: []types.MomentumEntry{
			{Symbol: "AAPL", Direction: types.DirectionGainer, Rank: 1, ChangePct: 4.2,
				Indicators: map[string]float64{"RSI": 61.5, "ATR": 3.1}},
			{Symbol: "XYZ", Direction: types.DirectionLoser, Rank: 1, ChangePct: -5.0},
		},
	}
}

func TestMemoryPutGetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	wl := sampleWatchlist("2026-08-20")

	if err := s.Put(ctx, wl); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "2026-08-20")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, wl) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, wl)
	}
}

func TestMemoryGetMiss(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "2026-08-20")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryPutOverwritesSameDate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := sampleWatchlist("2026-08-20")
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second := sampleWatchlist("2026-08-20")
	second.Regime = types.RegimeBearish
	second.Entries = second.Entries[:1]
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("rescan Put: %v", err)
	}

	got, err := s.Get(ctx, "2026-08-20")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Regime != types.RegimeBearish || len(got.Entries) != 1 {
		t.Fatalf("overwrite did not replace: %+v", got)
	}
}

func TestMemoryPublishedEntriesImmutable(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	wl := sampleWatchlist("2026-08-20")
	if err := s.Put(ctx, wl); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Mutating the caller's copy must not affect the published list.
	wl.Entries[0].Symbol = "MUTATED"
	got, _ := s.Get(ctx, "2026-08-20")
	if got.Entries[0].Symbol != "AAPL" {
		t.Error("published watchlist was mutated through the caller's slice")
	}

	// Nor may mutating a read copy.
	got.Entries[1].Symbol = "ALSO_MUTATED"
	again, _ := s.Get(ctx, "2026-08-20")
	if again.Entries[1].Symbol != "XYZ" {
		t.Error("published watchlist was mutated through a reader's copy")
	}
}

func TestMemoryPurgeBeforeKeepsCurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, d := range []string{"2026-07-01", "2026-07-15", "2026-08-20"} {
		if err := s.Put(ctx, sampleWatchlist(d)); err != nil {
			t.Fatalf("Put %s: %v", d, err)
		}
	}

	n, err := s.PurgeBefore(ctx, "2026-07-21")
	if err != nil {
		t.Fatalf("PurgeBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("purged %d, want 2", n)
	}
	if _, err := s.Get(ctx, "2026-08-20"); err != nil {
		t.Errorf("current day must survive purge: %v", err)
	}
	if _, err := s.Get(ctx, "2026-07-01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected purged date to miss, got %v", err)
	}
}

func TestMemoryConcurrentReadersSingleWriter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.Put(ctx, sampleWatchlist("2026-08-20"))
		}
		close(done)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				wl, err := s.Get(ctx, "2026-08-20")
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if err != nil {
					t.Errorf("Get: %v", err)
					return
				}
				// Never a half-written list: always both entries.
				if len(wl.Entries) != 2 {
					t.Errorf("observed partial watchlist: %d entries", len(wl.Entries))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestLayeredBackfillsMemory(t *testing.T) {
	durable := NewMemoryStore()
	ctx := context.Background()
	if err := durable.Put(ctx, sampleWatchlist("2026-08-20")); err != nil {
		t.Fatalf("seed durable: %v", err)
	}

	layered := NewLayeredStore(durable)
	got, err := layered.Get(ctx, "2026-08-20")
	if err != nil {
		t.Fatalf("Get through layered: %v", err)
	}
	if got.ScanDate != "2026-08-20" {
		t.Fatalf("unexpected watchlist: %+v", got)
	}

	// Now cached in the memory layer.
	if _, err := layered.mem.Get(ctx, "2026-08-20"); err != nil {
		t.Errorf("expected memory backfill, got %v", err)
	}
}

func TestLayeredWriteThrough(t *testing.T) {
	durable := NewMemoryStore()
	layered := NewLayeredStore(durable)
	ctx := context.Background()

	if err := layered.Put(ctx, sampleWatchlist("2026-08-20")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := durable.Get(ctx, "2026-08-20"); err != nil {
		t.Errorf("expected durable copy, got %v", err)
	}
}

func TestStaticFallback(t *testing.T) {
	wl := StaticFallback("2026-08-20", []string{"AAPL", "MSFT"})
	if wl.ScanDate != "2026-08-20" {
		t.Errorf("scan date = %s", wl.ScanDate)
	}
	if len(wl.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(wl.Entries))
	}
	if wl.Regime != types.RegimeNeutral {
		t.Errorf("regime = %v, want NEUTRAL", wl.Regime)
	}
	if wl.Entries[0].Symbol != "AAPL" || wl.Entries[0].Rank != 1 {
		t.Errorf("unexpected first entry: %+v", wl.Entries[0])
	}
}

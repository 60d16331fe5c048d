package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"momentum-trading-bot/internal/types"
)

// RedisStore keeps watchlists in Redis, one key per scan date. SET replaces
// the whole value in one command, which gives the atomic-publish guarantee
// for free. A TTL slightly past the retention window backstops PurgeBefore.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

var _ Store = (*RedisStore)(nil)

type RedisConfig struct {
	Addr          string
	DB            int
	Prefix        string
	RetentionDays int
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "watchlist"
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		// One extra day so the TTL never races the purge job.
		retention: time.Duration(cfg.RetentionDays+1) * 24 * time.Hour,
	}, nil
}

func (r *RedisStore) key(date string) string {
	return r.prefix + ":" + date
}

func (r *RedisStore) Get(ctx context.Context, date string) (*types.Watchlist, error) {
	raw, err := r.client.Get(ctx, r.key(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", date, err)
	}
	var wl types.Watchlist
	if err := json.Unmarshal(raw, &wl); err != nil {
		return nil, fmt.Errorf("decode watchlist %s: %w", date, err)
	}
	return &wl, nil
}

func (r *RedisStore) Put(ctx context.Context, wl *types.Watchlist) error {
	raw, err := json.Marshal(wl)
	if err != nil {
		return fmt.Errorf("encode watchlist %s: %w", wl.ScanDate, err)
	}
	if err := r.client.Set(ctx, r.key(wl.ScanDate), raw, r.retention).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", wl.ScanDate, err)
	}
	return nil
}

func (r *RedisStore) PurgeBefore(ctx context.Context, date string) (int, error) {
	var (
		cursor uint64
		purged int
	)
	cutoff := r.key(date)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+":*", 100).Result()
		if err != nil {
			return purged, fmt.Errorf("redis scan: %w", err)
		}
		for _, k := range keys {
			// Keys share the prefix, so lexical compare on the full
			// key matches lexical compare on the date.
			if k < cutoff {
				if err := r.client.Del(ctx, k).Err(); err != nil {
					return purged, fmt.Errorf("redis del %s: %w", k, err)
				}
				purged++
			}
		}
		cursor = next
		if cursor == 0 {
			return purged, nil
		}
	}
}

func (r *RedisStore) Close() error { return r.client.Close() }

package engine

import (
	"context"
	"fmt"
	"time"

	"momentum-trading-bot/internal/logger"
	"momentum-trading-bot/internal/metrics"
	"momentum-trading-bot/internal/types"
)

// fetchAccount gets a fresh account snapshot with a per-attempt timeout and
// bounded backoff retries. On exhaustion the caller skips the cycle; the
// snapshot is never reused across decisions.
func (e *engine) fetchAccount(ctx context.Context) (types.AccountState, error) {
	timeout := time.Duration(e.cfg.Account.FetchTimeoutSeconds) * time.Second
	backoff := time.Duration(e.cfg.Account.FetchBackoffSeconds) * time.Second
	attempts := e.cfg.Account.FetchRetries

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return types.AccountState{}, ctx.Err()
			case <-time.After(backoff * time.Duration(i)):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		account, err := e.brk.Account(attemptCtx)
		cancel()
		if err == nil {
			return account, nil
		}
		lastErr = err
		metrics.AccountFetchFailures.Inc()
		logger.Warn(ctx, "Account fetch attempt failed",
			"attempt", i+1,
			"max_attempts", attempts,
			"error", err.Error(),
		)
	}
	return types.AccountState{}, fmt.Errorf("account fetch failed after %d attempts: %w", attempts, lastErr)
}

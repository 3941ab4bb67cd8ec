package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
)

const (
	defaultConflictRetries = 5
	conflictRetryBase      = 10 * time.Millisecond
)

func isVersionConflict(err error) bool {
	return errors.Is(err, subscription.ErrVersionConflict) || errors.Is(err, payment.ErrVersionConflict)
}

// withConflictRetry re-runs fn while it fails with a version conflict. fn must re-read
// everything it writes, so each attempt recomputes from the latest committed state.
func withConflictRetry(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = defaultConflictRetries
	}

	backoff := retry.NewExponential(conflictRetryBase)
	backoff = retry.WithJitterPercent(25, backoff)
	backoff = retry.WithMaxRetries(uint64(attempts-1), backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if isVersionConflict(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

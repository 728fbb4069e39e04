package youtube

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/danbi-analytics/channel-collector-go/pkg/logger"
)

const maxAttempts = 3

// Variable so tests can collapse the backoff.
var retryDelay = 2 * time.Second

// withRetry runs a fetch with bounded linear backoff. Not-found and
// quota-exceeded are final answers, never retried.
func withRetry(ctx context.Context, operation string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || IsNotFound(err) || IsQuotaExceeded(err) {
			return err
		}

		if attempt < maxAttempts {
			logger.Log.Warn("api call failed, retrying",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			select {
			case <-time.After(time.Duration(attempt) * retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

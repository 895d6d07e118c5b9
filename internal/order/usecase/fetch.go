package usecase

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
)

type OrderLister interface {
	ListOrders(ctx context.Context, token, path string) ([]domain.Order, error)
}

// Backoff before attempt 2, 3, ...; later attempts reuse the last value.
var defaultBackoffs = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}

// retryingFetcher retries list reads that failed to reach the backend. Any
// other failure, and any failure of a write, is returned as is.
type retryingFetcher struct {
	lister      OrderLister
	logger      *zap.Logger
	maxAttempts int
	backoffs    []time.Duration
}

func newRetryingFetcher(lister OrderLister, logger *zap.Logger, maxAttempts int) *retryingFetcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &retryingFetcher{
		lister:      lister,
		logger:      logger,
		maxAttempts: maxAttempts,
		backoffs:    defaultBackoffs,
	}
}

func (f *retryingFetcher) fetch(ctx context.Context, token, path string) ([]domain.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		orders, err := f.lister.ListOrders(ctx, token, path)
		if err == nil {
			return orders, nil
		}
		if _, ok := apperrors.IsNetworkError(err); !ok {
			return nil, err
		}

		lastErr = err
		if attempt == f.maxAttempts {
			break
		}

		wait := f.backoff(attempt)
		f.logger.Warn("backend unreachable, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", f.maxAttempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, apperrors.NewNetworkError("request cancelled while retrying", ctx.Err())
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

// backoff returns the wait after the given failed attempt with +-20% jitter.
func (f *retryingFetcher) backoff(attempt int) time.Duration {
	if len(f.backoffs) == 0 {
		return 0
	}
	idx := attempt - 1
	if idx >= len(f.backoffs) {
		idx = len(f.backoffs) - 1
	}
	base := f.backoffs[idx]
	if base <= 0 {
		return 0
	}
	jitter := time.Duration((rand.Float64()*0.4 - 0.2) * float64(base))
	return base + jitter
}

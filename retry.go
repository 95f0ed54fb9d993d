package i8n

import (
	"context"
	"errors"
	"time"
)

// RetryConfig controls how failed backend calls are retried.
type RetryConfig struct {
	MaxRetries int           // Retries after the first attempt
	BaseDelay  time.Duration // Delay before the first retry, doubled each time
	MaxDelay   time.Duration // Upper bound of a single delay, zero keeps BaseDelay
}

// DefaultRetryConfig returns the retry settings used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// backoff returns the delay before retry number attempt (0-based).
func (c RetryConfig) backoff(attempt int) time.Duration {
	delay := c.BaseDelay
	for i := 0; i < attempt && delay < c.MaxDelay; i++ {
		delay *= 2
	}
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// WithRetry calls fn until it succeeds, fails with an error IsRetryable
// rejects, or the retries are exhausted. The last error is returned.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt >= cfg.MaxRetries {
			return zero, err
		}

		if err := sleep(ctx, cfg.backoff(attempt)); err != nil {
			return zero, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetryable reports whether err is a BackendError marked retryable.
// Context errors never are.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var backendErr *BackendError
	return errors.As(err, &backendErr) && backendErr.Retryable
}

// authenticate forwards to b when it is a RemoteClient.
func authenticate(ctx context.Context, b Backend) error {
	if client, ok := b.(RemoteClient); ok {
		return client.Authenticate(ctx)
	}
	return nil
}

// RetryableBackend retries the calls of a Backend. Authenticate is
// retried too and forwarded when the wrapped backend is a RemoteClient.
type RetryableBackend struct {
	backend Backend
	config  RetryConfig
}

// NewRetryableBackend wraps backend with cfg.
func NewRetryableBackend(backend Backend, cfg RetryConfig) *RetryableBackend {
	return &RetryableBackend{
		backend: backend,
		config:  cfg,
	}
}

// Authenticate implements RemoteClient.
func (b *RetryableBackend) Authenticate(ctx context.Context) error {
	_, err := WithRetry(ctx, b.config, func() (struct{}, error) {
		return struct{}{}, authenticate(ctx, b.backend)
	})
	return err
}

// Translate implements Backend.
func (b *RetryableBackend) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	return WithRetry(ctx, b.config, func() (string, error) {
		return b.backend.Translate(ctx, req)
	})
}

var _ RemoteClient = (*RetryableBackend)(nil)

package i8n

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum backend calls per minute (default: 60)
	BurstSize         int // Calls allowed back to back (default: RequestsPerMinute)
}

// RateLimiter is a token bucket shared by every caller of a backend.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perToken time.Duration // refill time of one token
	last     time.Time
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}

	l := &RateLimiter{
		tokens:   float64(burst),
		capacity: float64(burst),
		perToken: time.Minute / time.Duration(rpm),
		now:      time.Now,
	}
	l.last = l.now()
	return l
}

// TryAcquire takes a token if one is available.
func (l *RateLimiter) TryAcquire() bool {
	return l.reserve() == 0
}

// Wait blocks until a token is taken or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay := l.reserve()
		if delay == 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token and returns zero, or returns how long until the
// next token is due.
func (l *RateLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if elapsed := now.Sub(l.last); elapsed > 0 {
		l.tokens += float64(elapsed) / float64(l.perToken)
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
	}
	l.last = now

	if l.tokens >= 1 {
		l.tokens--
		return 0
	}
	return time.Duration((1 - l.tokens) * float64(l.perToken))
}

// RateLimitedBackend bounds the rate of Translate calls to a backend.
// Authenticate is forwarded without consuming tokens.
type RateLimitedBackend struct {
	backend Backend
	limiter *RateLimiter
}

// NewRateLimitedBackend wraps backend with its own limiter.
func NewRateLimitedBackend(backend Backend, cfg RateLimitConfig) *RateLimitedBackend {
	return &RateLimitedBackend{
		backend: backend,
		limiter: NewRateLimiter(cfg),
	}
}

// Authenticate implements RemoteClient.
func (b *RateLimitedBackend) Authenticate(ctx context.Context) error {
	return authenticate(ctx, b.backend)
}

// Translate implements Backend.
func (b *RateLimitedBackend) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", &BackendError{
			Op:      "translate",
			Message: "rate limit wait cancelled",
			Cause:   err,
		}
	}
	return b.backend.Translate(ctx, req)
}

var _ RemoteClient = (*RateLimitedBackend)(nil)

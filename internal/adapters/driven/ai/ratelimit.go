package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

// DefaultBackoff applies when a 429 response carries no Retry-After.
const DefaultBackoff = 30 * time.Second

// RateLimiter throttles provider calls with a token bucket and honours
// backoff periods reported by 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained calls.
// Burst is at least one.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by Backoff.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// Backoff delays all further calls by d, or DefaultBackoff when d is zero.
func (r *RateLimiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(d); until.After(r.retryAt) {
		r.retryAt = until
	}
}

// Allow reports whether a request can be made immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// observe starts a backoff when err is a 429 from the provider.
func (r *RateLimiter) observe(err error) {
	if !errors.Is(err, domain.ErrRateLimited) {
		return
	}
	var se *domain.StatusError
	if errors.As(err, &se) {
		r.Backoff(se.RetryAfter)
		return
	}
	r.Backoff(0)
}

// limitedEmbedding throttles an embedding service.
type limitedEmbedding struct {
	driven.EmbeddingService
	limiter *RateLimiter
}

// NewLimitedEmbeddingService wraps svc so every Embed waits on limiter.
func NewLimitedEmbeddingService(svc driven.EmbeddingService, limiter *RateLimiter) driven.EmbeddingService {
	return &limitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

func (l *limitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, domain.TransportError("embed", err)
	}
	vec, err := l.EmbeddingService.Embed(ctx, text)
	l.limiter.observe(err)
	return vec, err
}

// limitedLLM throttles an LLM service.
type limitedLLM struct {
	driven.LLMService
	limiter *RateLimiter
}

// NewLimitedLLMService wraps svc so every Complete waits on limiter.
func NewLimitedLLMService(svc driven.LLMService, limiter *RateLimiter) driven.LLMService {
	return &limitedLLM{LLMService: svc, limiter: limiter}
}

func (l *limitedLLM) Complete(ctx context.Context, system, user string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", domain.TransportError("complete", err)
	}
	out, err := l.LLMService.Complete(ctx, system, user)
	l.limiter.observe(err)
	return out, err
}

package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter rate-limits storage requests per container root. Blob stores
// throttle aggressive clients; one limiter per container keeps a busy
// source from starving the destination.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the container's limiter clears a request
func (l *Limiter) Wait(ctx context.Context, container string) error {
	return l.getLimiter(container).Wait(ctx)
}

// Allow checks if a request is allowed without waiting
func (l *Limiter) Allow(container string) bool {
	return l.getLimiter(container).Allow()
}

// getLimiter returns the rate limiter for a container
func (l *Limiter) getLimiter(container string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[container]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[container]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[container] = limiter

	return limiter
}

// SetContainerRate sets a custom rate limit for a specific container
func (l *Limiter) SetContainerRate(container string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[container] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

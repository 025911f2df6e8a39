package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/faucet/ports"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter implements fixed-window per-key rate limiting in memory.
// Used for single-instance deployments without Redis and in tests.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]window
	length  time.Duration
	quotas  Quotas
}

// NewMemoryLimiter creates a new in-memory rate limiter
func NewMemoryLimiter(length time.Duration, quotas Quotas) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]window),
		length:  length,
		quotas:  quotas,
	}
}

// Allow reports whether the key may perform another request in the scope
func (l *MemoryLimiter) Allow(ctx context.Context, scope, key string) (bool, error) {
	quota, ok := l.quotas[scope]
	if !ok || quota <= 0 {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	mapKey := scope + ":" + key

	w, exists := l.windows[mapKey]
	if !exists || now.After(w.resetAt) {
		w = window{count: 0, resetAt: now.Add(l.length)}
	}
	w.count++
	l.windows[mapKey] = w

	return w.count <= quota, nil
}

var _ ports.RateLimiter = (*MemoryLimiter)(nil)

// Package ratelimit admission-controls request bursts per identity
// with a fixed-window counter. Window state lives in a TTL cache and
// may be evicted under pressure; loss degrades to "no limiting" for
// that identity, never to a false rejection.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/coachly/coachd/core"
)

// Config holds the fixed-window parameters.
type Config struct {
	// WindowSeconds is the window length.
	WindowSeconds int

	// MaxRequests is the number of requests allowed per window.
	MaxRequests int
}

// window is the per-identity counter state.
type window struct {
	start time.Time
	count int
}

// Limiter is a fixed-window rate limiter keyed by identity.
//
// The check-then-increment transition is atomic per identity (keyed
// mutex), so two concurrent requests never both take the last slot.
// On backing-store failure the limiter fails closed with
// core.ErrRateLimiterUnavailable.
type Limiter struct {
	cache *ristretto.Cache
	cfg   Config

	mu  sync.Map // identity key -> *sync.Mutex
	now func() time.Time
}

// New creates a Limiter.
func New(cfg Config) (*Limiter, error) {
	if cfg.WindowSeconds <= 0 || cfg.MaxRequests <= 0 {
		return nil, errors.New("ratelimit: window and max requests must be positive")
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1e4,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("ratelimit: create cache: %w", err)
	}

	return &Limiter{
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}, nil
}

// Allow reports whether the identity may proceed, consuming one slot
// of the current window when it may.
func (l *Limiter) Allow(key string) (bool, error) {
	mu := l.keyMutex(key)
	mu.Lock()
	defer mu.Unlock()

	now := l.now()
	windowLen := time.Duration(l.cfg.WindowSeconds) * time.Second

	w := &window{start: now}
	if v, ok := l.cache.Get(key); ok {
		cached, ok := v.(*window)
		if !ok {
			return false, fmt.Errorf("%w: corrupt window state", core.ErrRateLimiterUnavailable)
		}
		if now.Sub(cached.start) < windowLen {
			w = cached
		}
	}

	if w.count >= l.cfg.MaxRequests {
		return false, nil
	}
	w.count++

	ttl := windowLen - now.Sub(w.start)
	l.cache.SetWithTTL(key, w, 1, ttl)
	// Flush the cache's set buffer so the next Allow observes this
	// window; ristretto applies sets asynchronously otherwise.
	l.cache.Wait()

	return true, nil
}

// Close releases the cache.
func (l *Limiter) Close() {
	l.cache.Close()
}

func (l *Limiter) keyMutex(key string) *sync.Mutex {
	v, _ := l.mu.LoadOrStore(key, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Package ratelimit bounds the rate of SOAP actions sent to a single
// renderer target (the soap client's optional Limiter), so repeated actions
// against an unreachable or flaky device are refused once the bucket is
// empty. Encoder probing is not rate-limited.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type target struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TargetLimiter rate-limits actions keyed by renderer URL (or any other
// per-target string) rather than per-client-IP.
type TargetLimiter struct {
	mu      sync.Mutex
	targets map[string]*target
	rate    rate.Limit
	burst   int
}

func NewTargetLimiter(ctx context.Context, rps, burst int) *TargetLimiter {
	l := &TargetLimiter{
		targets: make(map[string]*target),
		rate:    rate.Limit(rps),
		burst:   burst,
	}

	go func() {
		cleanupFrequency := 1 * time.Minute

		ticker := time.NewTicker(cleanupFrequency)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.cleanup()
			}
		}
	}()

	return l
}

func (l *TargetLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.targets[key]
	if !ok {
		t = &target{limiter: rate.NewLimiter(l.rate, l.burst), lastSeen: time.Now().UTC()}
		l.targets[key] = t
		return t.limiter
	}

	t.lastSeen = time.Now().UTC()
	return t.limiter
}

func (l *TargetLimiter) cleanup() {
	inactiveLimit := 3 * time.Minute

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, t := range l.targets {
		if time.Since(t.lastSeen) > inactiveLimit {
			delete(l.targets, key)
		}
	}
}

// Allow reports whether an action against key may proceed now.
func (l *TargetLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Wait blocks until an action against key is permitted or ctx is done.
func (l *TargetLimiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

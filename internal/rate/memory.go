package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter: fixed window en memoria, para correr sin redis.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string]*window
	Max    int64
	Window time.Duration
}

type window struct {
	start time.Time
	count int64
}

func NewMemoryLimiter(max int, windowDur time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   map[string]*window{},
		Max:    int64(max),
		Window: windowDur,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)

	w, ok := l.hits[key]
	if !ok || w.start.Before(winStart) {
		w = &window{start: winStart}
		l.hits[key] = w
	}
	w.count++

	// limpieza oportunista de ventanas viejas
	if len(l.hits) > 4096 {
		for k, v := range l.hits {
			if v.start.Before(winStart) {
				delete(l.hits, k)
			}
		}
	}

	allowed := w.count <= l.Max
	remaining := l.Max - w.count
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: w.count,
		WindowTTL:   w.start.Add(l.Window).Sub(now),
	}
	if !allowed {
		res.RetryAfter = res.WindowTTL
	}
	return res, nil
}

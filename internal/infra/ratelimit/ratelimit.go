package ratelimit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// PerKey is a token-bucket limiter per client key (usually an IP). Buckets
// live in a bounded LRU and expire ttl after they were created.
type PerKey struct {
	mu       sync.Mutex
	visitors *lru.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func NewPerKey(limit, burst, cacheSize int, ttl time.Duration) *PerKey {
	return &PerKey{
		visitors: lru.NewLRU[string, *rate.Limiter](cacheSize, nil, ttl),
		limit:    rate.Limit(limit),
		burst:    burst,
	}
}

func (p *PerKey) Allow(key string) bool {
	p.mu.Lock()
	lim, ok := p.visitors.Get(key)
	if !ok {
		lim = rate.NewLimiter(p.limit, p.burst)
		p.visitors.Add(key, lim)
	}
	p.mu.Unlock()

	return lim.Allow()
}

package middleware

import (
	"sync"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"golang.org/x/time/rate"
)

const (
	visitorIdleTimeout = 10 * time.Minute
	sweepEvery         = 1000
)

var limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps a token bucket per client address. Visitors idle for
// visitorIdleTimeout are dropped every sweepEvery lookups.
type IPRateLimiter struct {
	ips       map[string]*visitor
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
	lookups   int
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{ips: make(map[string]*visitor), rateLimit: r, burstRate: b, now: time.Now}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	i.lookups++
	if i.lookups%sweepEvery == 0 {
		i.sweep(now)
	}

	v, exists := i.ips[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.ips[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (i *IPRateLimiter) sweep(now time.Time) {
	for ip, v := range i.ips {
		if now.Sub(v.lastSeen) > visitorIdleTimeout {
			delete(i.ips, ip)
		}
	}
}

//TODO: move the per-IP limiters to redis once more than one instance serves traffic

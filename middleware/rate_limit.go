package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cppla/membership/utils"
)

const limiterIdleTTL = 5 * time.Minute

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

type ipLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	limiters  map[string]*rateLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiters(perMinute int) *ipLimiters {
	perMinute = max(perMinute, 1)
	return &ipLimiters{
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     max(perMinute/2, 1),
		limiters:  map[string]*rateLimiter{},
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// RateLimitMiddleware applies a per client IP token bucket refilled at perMinute tokens a minute.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	l := newIPLimiters(perMinute)

	return func(ctx *gin.Context) {
		if !l.get(ctx.ClientIP()).Allow() {
			utils.ErrorKind(ctx, http.StatusTooManyRequests, 42901, "RATE_LIMITED", "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func (l *ipLimiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	// idle entries are dropped at most once per TTL
	if now.Sub(l.lastSweep) >= limiterIdleTTL {
		for k, rl := range l.limiters {
			if now.After(rl.expires) {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	if rl, ok := l.limiters[key]; ok {
		rl.expires = now.Add(limiterIdleTTL)
		return rl.limiter
	}
	rl := &rateLimiter{
		limiter: rate.NewLimiter(l.limit, l.burst),
		expires: now.Add(limiterIdleTTL),
	}
	l.limiters[key] = rl
	return rl.limiter
}

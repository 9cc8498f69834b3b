package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/minglehq/mingle/config"
	"github.com/minglehq/mingle/utils"
)

// Idle buckets are dropped after this long so the map cannot grow without
// bound under churning client IPs.
const bucketIdleTTL = 5 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	buckets   = map[string]*clientBucket{}
	bucketsMu sync.Mutex
)

// RateLimitMiddleware enforces a per-IP token bucket sized from
// RATE_LIMIT_PER_MINUTE. Applied to the auth group and every mutation group.
func RateLimitMiddleware() gin.HandlerFunc {
	perMinute := config.Get().RateLimitPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	return func(ctx *gin.Context) {
		if !bucketFor(ctx.ClientIP(), limit, burst).Allow() {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func bucketFor(ip string, limit rate.Limit, burst int) *rate.Limiter {
	bucketsMu.Lock()
	defer bucketsMu.Unlock()

	now := time.Now()
	for key, b := range buckets {
		if now.Sub(b.lastSeen) > bucketIdleTTL {
			delete(buckets, key)
		}
	}

	b, ok := buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(limit, burst)}
		buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter
}

package middlewares

import (
	"net/http"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/muingY/gif-compressor-backend/tool"
)

// limiterIdle is how long a client's limiter survives without requests.
const limiterIdle = 10 * time.Minute

// RateLimit allows each client IP perSec requests per second with the given burst.
// perSec <= 0 disables limiting.
func RateLimit(perSec float64, burst int) gin.HandlerFunc {
	if perSec <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if burst < 1 {
		burst = 1
	}

	var mu sync.Mutex
	limiters := ttlworker.NewCache[string, *rate.Limiter](limiterIdle)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter := limiters.Get(ip)
		if limiter == nil {
			limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
		// refresh the idle timer on every hit
		limiters.Set(ip, limiter)
		return limiter
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiterFor(ip).Allow() {
			tool.DefaultLogger.Warnf("[RateLimit] Too many requests from %s", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, tool.FastReturnError("too many requests"))
			return
		}
		c.Next()
	}
}

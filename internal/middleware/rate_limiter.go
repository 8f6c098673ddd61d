package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const msgRateLimited = "Muitas requisições. Aguarde um momento e tente novamente."

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
}

type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(config.Rate, config.Burst),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter.Allow() {
			abortRateLimited(c)
			return
		}
		c.Next()
	}
}

// IPRateLimiter keeps one limiter per client IP. Idle limiters expire.
type IPRateLimiter struct {
	config   RateLimiterConfig
	mu       sync.Mutex
	limiters *gocache.Cache
}

// NewLoginRateLimiter allows perMinute attempts per IP, with the same burst.
func NewLoginRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return NewIPRateLimiter(RateLimiterConfig{
		Rate:  rate.Every(time.Minute / time.Duration(perMinute)),
		Burst: perMinute,
	}, 10*time.Minute)
}

func NewIPRateLimiter(config RateLimiterConfig, idle time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		config:   config,
		limiters: gocache.New(idle, idle),
	}
}

func (rl *IPRateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.limiters.Get(ip); ok {
		l := v.(*rate.Limiter)
		rl.limiters.SetDefault(ip, l)
		return l
	}
	l := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	rl.limiters.SetDefault(ip, l)
	return l
}

// Allow consumes one token for ip.
func (rl *IPRateLimiter) Allow(ip string) bool {
	return rl.limiter(ip).Allow()
}

func (rl *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			abortRateLimited(c)
			return
		}
		c.Next()
	}
}

func abortRateLimited(c *gin.Context) {
	c.Header("Retry-After", "60")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
		Code:    http.StatusTooManyRequests,
		Message: msgRateLimited,
		TraceID: c.GetString(ContextRequestID),
	})
}

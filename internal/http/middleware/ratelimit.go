package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yungbote/myu-chat-backend/internal/http/response"
	"github.com/yungbote/myu-chat-backend/internal/observability"
)

// RateLimitConfig allows Max requests per Window for each client IP, with
// the full allowance available as a burst.
type RateLimitConfig struct {
	Scope   string
	Max     int
	Window  time.Duration
	Message string
}

var (
	GlobalRateLimit = RateLimitConfig{
		Scope:   "global",
		Max:     100,
		Window:  15 * time.Minute,
		Message: "Quá nhiều requests từ IP này, vui lòng thử lại sau 15 phút",
	}
	ChatRateLimit = RateLimitConfig{
		Scope:   "chat",
		Max:     20,
		Window:  time.Minute,
		Message: "Bạn đang gửi tin nhắn quá nhanh, vui lòng chờ 1 phút",
	}
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	cfg      RateLimitConfig
	limit    rate.Limit
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
	lastGC   time.Time
}

func newIPLimiter(cfg RateLimitConfig, now func() time.Time) *ipLimiter {
	return &ipLimiter{
		cfg:      cfg,
		limit:    rate.Every(cfg.Window / time.Duration(cfg.Max)),
		visitors: map[string]*visitor{},
		now:      now,
		lastGC:   now(),
	}
}

func (l *ipLimiter) reserve(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastGC) > l.cfg.Window {
		// An idle visitor's bucket has refilled completely.
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.cfg.Window {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.cfg.Max)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// RateLimit rejects clients over the allowance with 429. Max <= 0 disables it.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return rateLimitWithClock(cfg, time.Now)
}

func rateLimitWithClock(cfg RateLimitConfig, now func() time.Time) gin.HandlerFunc {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := newIPLimiter(cfg, now)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		ok, retryAfter := l.reserve(c.ClientIP())
		c.Header("RateLimit-Limit", strconv.Itoa(cfg.Max))
		if !ok {
			observability.Current().IncRateLimited(cfg.Scope)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			response.AbortWithError(c, http.StatusTooManyRequests, "rate_limited", errors.New(cfg.Message))
			return
		}
		c.Next()
	}
}

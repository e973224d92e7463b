package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/noah-isme/campus-connect-api/internal/service"
	"github.com/noah-isme/campus-connect-api/pkg/config"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
	"github.com/noah-isme/campus-connect-api/pkg/response"
)

// Messages returned when a route group exhausts its budget.
const (
	RateLimitAPIMessage  = "Too many requests. Please try again later."
	RateLimitAIMessage   = "Too many AI queries. Please slow down."
	RateLimitAuthMessage = "Too many login attempts. Try again later."
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP for a route group.
type RateLimiter struct {
	group   string
	rule    config.RateLimitRule
	every   rate.Limit
	message string
	metrics *service.MetricsService
	now     func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter allows rule.Max requests per rule.Window for each IP.
func NewRateLimiter(group string, rule config.RateLimitRule, message string, metrics *service.MetricsService) *RateLimiter {
	if message == "" {
		message = RateLimitAPIMessage
	}
	l := &RateLimiter{
		group:    group,
		rule:     rule,
		message:  message,
		metrics:  metrics,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
	if rule.Max > 0 && rule.Window > 0 {
		l.every = rate.Every(rule.Window / time.Duration(rule.Max))
	}
	return l
}

// Handler enforces the budget. A limiter without a budget lets everything through.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rule.Max <= 0 || l.every == 0 {
			c.Next()
			return
		}

		now := l.now()
		v := l.visitor(c.ClientIP(), now)
		c.Header("RateLimit-Limit", strconv.Itoa(l.rule.Max))

		if !v.limiter.AllowN(now, 1) {
			l.metrics.RecordRateLimited(l.group)
			retry := time.Duration(float64(time.Second) / float64(l.every))
			c.Header("RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			response.AbortError(c, appErrors.Clone(appErrors.ErrRateLimited, l.message))
			return
		}

		c.Header("RateLimit-Remaining", strconv.Itoa(int(v.limiter.TokensAt(now))))
		c.Next()
	}
}

func (l *RateLimiter) visitor(ip string, now time.Time) *visitor {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.rule.Max)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v
}

// Sweep forgets visitors idle for longer than three windows, or a minute at least.
// It returns the number removed.
func (l *RateLimiter) Sweep() int {
	idle := l.rule.Window * 3
	if idle < time.Minute {
		idle = time.Minute
	}
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// Run sweeps idle visitors every interval until ctx is done.
func (l *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

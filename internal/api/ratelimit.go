package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// AttemptLimiter decides whether another attempt for key is allowed.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// NewRedisLimiter counts attempts in Redis so every server instance shares the window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) AttemptLimiter {
	return &redisLimiter{client: client, limit: int64(limit), window: window}
}

type redisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func (rl *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	key = "rate_limit:" + key
	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		return true, 0, err
	}
	// First attempt opens the window. A counter without a TTL never resets, so drop it.
	if count == 1 {
		if err := rl.client.Expire(ctx, key, rl.window).Err(); err != nil {
			rl.client.Del(ctx, key)
			return true, 0, err
		}
	}
	if count <= rl.limit {
		return true, 0, nil
	}

	ttl, err := rl.client.TTL(ctx, key).Result()
	if err != nil {
		return false, rl.window, nil
	}
	if ttl < 0 {
		// Expiry missing (-1); restart the window. A failure here is retried on the next denied attempt.
		rl.client.Expire(ctx, key, rl.window)
		ttl = rl.window
	}
	return false, ttl, nil
}

// NewLocalLimiter keeps one token bucket per key in process memory.
// limit attempts are allowed in a burst, refilled evenly over window.
func NewLocalLimiter(limit int, window time.Duration) AttemptLimiter {
	if limit < 1 {
		limit = 1
	}
	return &localLimiter{
		limit:    limit,
		every:    rate.Every(window / time.Duration(limit)),
		window:   window,
		limiters: map[string]*localEntry{},
		now:      time.Now,
	}
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type localLimiter struct {
	mu       sync.Mutex
	limit    int
	every    rate.Limit
	window   time.Duration
	limiters map[string]*localEntry
	now      func() time.Time
}

const localSweepThreshold = 1024

func (l *localLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.limiters) >= localSweepThreshold {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.window {
				delete(l.limiters, k)
			}
		}
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.every, l.limit)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

// RateLimitMiddleware limits requests per client IP under the given scope.
// Limiter backend errors let the request through.
func RateLimitMiddleware(limiter AttemptLimiter, scope string, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", scope, c.ClientIP())
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", "scope", scope, "err", err)
			c.Next()
			return
		}
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
			abortWithError(c, http.StatusTooManyRequests, fmt.Sprintf("Too many attempts, retry in %d seconds", seconds))
			return
		}
		c.Next()
	}
}

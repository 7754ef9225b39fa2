package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/octobees/business-directory/internal/config"
)

const limiterIdleTTL = 30 * time.Minute

func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error { return next(c) }
}

func tooManyRequests(c echo.Context, retryAfter time.Duration) error {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "Too many requests, please try again later"})
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter applies an in-memory token bucket per client IP.
func IPRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return passthrough
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := time.Now()

			mu.Lock()
			for key, v := range visitors {
				if now.Sub(v.lastSeen) > limiterIdleTTL {
					delete(visitors, key)
				}
			}
			v, ok := visitors[ip]
			if !ok {
				v = &visitor{limiter: rate.NewLimiter(rate.Every(perRequest), cfg.Requests)}
				visitors[ip] = v
			}
			v.lastSeen = now
			allowed := v.limiter.AllowN(now, 1)
			mu.Unlock()

			if !allowed {
				return tooManyRequests(c, perRequest)
			}
			return next(c)
		}
	}
}

var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	local per_token_ms = interval_ms / capacity
	local elapsed = math.max(0, now_ms - last_refill)
	local refill = math.floor(elapsed / per_token_ms)
	if refill > 0 then
		tokens = math.min(capacity, tokens + refill)
		last_refill = last_refill + (refill * per_token_ms)
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, per_token_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, math.floor(retry_after_ms) }
`)

// RedisRateLimiter applies a token bucket per client IP shared by every API
// instance. Redis failures let the request through.
func RedisRateLimiter(cfg config.RateLimitConfig, rdb redis.Scripter, prefix string, logger *slog.Logger) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 || rdb == nil {
		return passthrough
	}
	if logger == nil {
		logger = slog.Default()
	}
	ttl := int64(math.Ceil((cfg.Interval * 2).Seconds()))
	if ttl < 1 {
		ttl = 1
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := prefix + ":ip:" + c.RealIP()
			ctx := c.Request().Context()

			vals, err := tokenBucketScript.Run(ctx, rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Requests,
				cfg.Interval.Milliseconds(),
				ttl,
			).Int64Slice()
			if err != nil || len(vals) != 2 {
				logger.WarnContext(ctx, "rate limiter unavailable", slog.String("key", key), slog.Any("error", err))
				return next(c)
			}

			if vals[0] != 1 {
				return tooManyRequests(c, time.Duration(vals[1])*time.Millisecond)
			}
			return next(c)
		}
	}
}

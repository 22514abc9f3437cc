package middleware

import (
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/wontwopunch/shiptour-v2/internal/config"
)

// NewTokenBucket returns a Redis-backed token bucket limiter keyed by
// client IP.  Applied to the login endpoint to slow credential
// guessing against the single admin account.  When rate limiting is
// disabled or Redis is unavailable the middleware is a pass-through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    limiterScript := redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local refill_tokens = tonumber(ARGV[3])
        local interval_ms = tonumber(ARGV[4])
        local ttl_seconds = tonumber(ARGV[5])

        local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
        local tokens = tonumber(state[1])
        local last_refill = tonumber(state[2])

        if tokens == nil or last_refill == nil then
            tokens = capacity
            last_refill = now_ms
        end

        if interval_ms > 0 and refill_tokens > 0 then
            local elapsed = math.max(0, now_ms - last_refill)
            local intervals = math.floor(elapsed / interval_ms)
            if intervals > 0 then
                tokens = math.min(capacity, tokens + (intervals * refill_tokens))
                last_refill = last_refill + (intervals * interval_ms)
            end
        end

        local allowed = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        end

        redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
        redis.call('EXPIRE', key, ttl_seconds)
        return allowed
    `)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := fmt.Sprintf("ratelimit:login:%s", c.RealIP())
            nowMs := time.Now().UnixMilli()
            ttl := int64(cfg.Interval/time.Second) * 2
            if ttl < 60 {
                ttl = 60
            }
            allowed, err := limiterScript.Run(c.Request().Context(), rdb,
                []string{key},
                nowMs, cfg.Capacity, cfg.Refill, cfg.Interval.Milliseconds(), ttl,
            ).Int()
            if err != nil {
                // limiter trouble must not take the login path down
                return next(c)
            }
            if allowed != 1 {
                return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many attempts"})
            }
            return next(c)
        }
    }
}

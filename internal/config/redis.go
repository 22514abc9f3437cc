package config

// Redis backs the status-view response cache and the login rate
// limiter.  Connection parameters come from environment variables.
// If the connection fails at startup the constructor returns nil and
// callers degrade gracefully: caching and rate limiting are simply
// disabled.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment
// variables:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (takes precedence when set)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
//
// The returned client may be nil if a connection cannot be
// established.
func NewRedisClient() *redis.Client {
    host := os.Getenv("REDIS_HOST")
    port := os.Getenv("REDIS_PORT")
    addr := os.Getenv("REDIS_ADDR")
    if addr == "" && host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    dbNum := 0
    if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
        if n, err := strconv.Atoi(dbStr); err == nil {
            dbNum = n
        }
    }
    var tlsConf *tls.Config
    if tlsEnv := os.Getenv("REDIS_TLS"); strings.EqualFold(tlsEnv, "true") || tlsEnv == "1" {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        dbNum,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}

// CacheConfig defines settings for the status response cache.  When
// Enabled is false or no Redis client is configured, caching is a
// pass-through.
type CacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig,
// with defaults for anything unset.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled: getenv("CACHE_ENABLED", "true") == "true",
        TTL:     parseDur(getenv("CACHE_TTL", "30s")),
        Prefix:  getenv("CACHE_PREFIX", "status-cache"),
    }
}

// RateLimitConfig defines the token bucket applied to the login
// endpoint.
type RateLimitConfig struct {
    Enabled  bool
    Capacity int           // bucket size
    Refill   int           // tokens added per interval
    Interval time.Duration // refill interval
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig, with defaults for anything unset.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled:  getenv("RATELIMIT_ENABLED", "true") == "true",
        Capacity: atoi(getenv("RATELIMIT_CAPACITY", "10")),
        Refill:   atoi(getenv("RATELIMIT_REFILL", "5")),
        Interval: parseDur(getenv("RATELIMIT_INTERVAL", "1m")),
    }
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return 30 * time.Second
    }
    return d
}

package middleware

import (
    "bytes"
    "context"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/wontwopunch/shiptour-v2/internal/config"
)

// StatusCache caches GET responses for the status views in Redis.
// Reconciling a month of seat status rescans every booking touching
// the range, so repeated reads of the same sheet are served from
// cache.  A version counter is folded into every key; Bump increments
// it after any inventory write, which invalidates all cached views at
// once without scanning for keys.
type StatusCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
}

// NewStatusCache builds a StatusCache.  A nil Redis client disables
// caching entirely: Middleware becomes a pass-through and Bump a
// no-op.
func NewStatusCache(cfg config.CacheConfig, rdb *redis.Client) *StatusCache {
    return &StatusCache{cfg: cfg, rdb: rdb}
}

func (sc *StatusCache) enabled() bool {
    return sc != nil && sc.cfg.Enabled && sc.rdb != nil
}

func (sc *StatusCache) versionKey() string { return sc.cfg.Prefix + ":ver" }

func (sc *StatusCache) key(ctx context.Context, c echo.Context) string {
    ver, err := sc.rdb.Get(ctx, sc.versionKey()).Result()
    if err != nil {
        ver = "0"
    }
    return fmt.Sprintf("%s:v%s:%s?%s", sc.cfg.Prefix, ver, c.Path(), c.Request().URL.RawQuery)
}

// Bump invalidates every cached view by advancing the version counter.
// Called after booking and blocked-seat writes.
func (sc *StatusCache) Bump(ctx context.Context) {
    if !sc.enabled() {
        return
    }
    sc.rdb.Incr(ctx, sc.versionKey())
}

// bodyCapture records the response body and status while forwarding to
// the client so a successful response can be stored afterwards.
type bodyCapture struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
}

func (bc *bodyCapture) WriteHeader(code int) {
    bc.status = code
    bc.ResponseWriter.WriteHeader(code)
}

func (bc *bodyCapture) Write(b []byte) (int, error) {
    bc.buf.Write(b)
    return bc.ResponseWriter.Write(b)
}

// Middleware returns the caching middleware.  Only GET requests are
// considered; only 200 responses are stored.  Cache errors degrade to
// a normal uncached request.
func (sc *StatusCache) Middleware() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !sc.enabled() || c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            key := sc.key(ctx, c)
            if body, err := sc.rdb.Get(ctx, key).Bytes(); err == nil {
                return c.JSONBlob(http.StatusOK, body)
            }
            bc := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
            c.Response().Writer = bc
            if err := next(c); err != nil {
                return err
            }
            if bc.status == http.StatusOK && bc.buf.Len() > 0 {
                storeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
                defer cancel()
                sc.rdb.Set(storeCtx, key, bc.buf.Bytes(), sc.cfg.TTL)
            }
            return nil
        }
    }
}

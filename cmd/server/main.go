package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/wontwopunch/shiptour-v2/internal/config"
    "github.com/wontwopunch/shiptour-v2/internal/database"
    "github.com/wontwopunch/shiptour-v2/internal/handler"
    "github.com/wontwopunch/shiptour-v2/internal/inventory"
    "github.com/wontwopunch/shiptour-v2/internal/middleware"
    "github.com/wontwopunch/shiptour-v2/internal/queue"
    "github.com/wontwopunch/shiptour-v2/internal/repository"
    "github.com/wontwopunch/shiptour-v2/internal/router"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable: response cache and rate limiting disabled")
    }
    cache := middleware.NewStatusCache(config.LoadCacheConfig(), rdb)
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    // Audit trail consumer; reconnects on its own if the broker drops.
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()

    ships := repository.NewShipRepo(db)
    bookings := repository.NewBookingRepo(db)
    statuses := repository.NewSeatStatusRepo(db)
    engine := inventory.NewEngine(bookings, statuses, ships)

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())

    router.Register(e, router.Handlers{
        Auth:      handler.NewAuthHandler(cfg),
        Ships:     handler.NewShipHandler(ships, bookings, cache),
        Bookings:  handler.NewBookingHandler(db, bookings, statuses, ships, cache),
        Status:    handler.NewStatusHandler(engine, statuses, ships, cache),
        Health:    handler.Health(db),
        JWTSecret: cfg.JWTSecret,
        Cache:     cache,
        RateLimit: limiter,
    })

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}

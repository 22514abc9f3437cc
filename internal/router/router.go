// Package router defines how HTTP routes are registered for the API.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/wontwopunch/shiptour-v2/internal/handler"
    "github.com/wontwopunch/shiptour-v2/internal/middleware"
)

// Handlers bundles everything route registration needs.
type Handlers struct {
    Auth      *handler.AuthHandler
    Ships     *handler.ShipHandler
    Bookings  *handler.BookingHandler
    Status    *handler.StatusHandler
    Health    echo.HandlerFunc
    JWTSecret string
    Cache     *middleware.StatusCache
    RateLimit echo.MiddlewareFunc
}

// Register wires all routes onto the Echo instance.  The health check
// and login are public; everything else sits behind JWT auth.  Status
// reads additionally pass through the Redis response cache.
func Register(e *echo.Echo, h Handlers) {
    e.GET("/healthz", h.Health)

    auth := e.Group("/v1/auth")
    auth.POST("/login", h.Auth.Login, h.RateLimit)

    v1 := e.Group("/v1")
    v1.Use(middleware.JWTAuth(h.JWTSecret))

    v1.GET("/auth/check", h.Auth.Check)

    v1.GET("/ships", h.Ships.List)
    v1.POST("/ships", h.Ships.Create)
    v1.GET("/ships/:id", h.Ships.Get)
    v1.PUT("/ships/:id", h.Ships.Rename)
    v1.PUT("/ships/:id/seats", h.Ships.UpdateSeats)
    v1.DELETE("/ships/:id", h.Ships.Delete)

    v1.GET("/bookings", h.Bookings.List)
    v1.POST("/bookings", h.Bookings.Save)
    v1.POST("/bookings/batch-save", h.Bookings.BatchSave)
    v1.DELETE("/bookings/:id", h.Bookings.Delete)
    v1.POST("/bookings/:id/highlight", h.Bookings.Highlight)
    v1.POST("/bookings/batch-highlight", h.Bookings.BatchHighlight)
    v1.GET("/bookings/excel", h.Bookings.Export)

    cached := h.Cache.Middleware()
    v1.GET("/status", h.Status.List, cached)
    v1.POST("/status", h.Status.Create)
    v1.POST("/status/save", h.Status.Save)
    v1.POST("/status/batch-save", h.Status.BatchSave)
    v1.POST("/status/resync", h.Status.Resync)
    v1.GET("/status/excel", h.Status.Export, cached)
    v1.GET("/status/availability", h.Status.Availability)
}

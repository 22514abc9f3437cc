package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/wontwopunch/shiptour-v2/internal/middleware"
    "github.com/wontwopunch/shiptour-v2/internal/model"
    "github.com/wontwopunch/shiptour-v2/internal/repository"
)

// ShipHandler serves the ship capacity catalog.
type ShipHandler struct {
    Ships    *repository.ShipRepo
    Bookings *repository.BookingRepo
    Cache    *middleware.StatusCache
}

func NewShipHandler(ships *repository.ShipRepo, bookings *repository.BookingRepo, cache *middleware.StatusCache) *ShipHandler {
    if ships == nil || bookings == nil {
        panic("handler: ShipHandler requires ship and booking repos")
    }
    return &ShipHandler{Ships: ships, Bookings: bookings, Cache: cache}
}

// List returns all ships ordered by name.
func (h *ShipHandler) List(c echo.Context) error {
    ships, err := h.Ships.List(c.Request().Context())
    if err != nil {
        return repoFail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "ships": ships})
}

type shipNameRequest struct {
    Name string `json:"name"`
}

// Create registers a new ship with zero capacities.  Capacities are
// set afterwards through UpdateSeats.
func (h *ShipHandler) Create(c echo.Context) error {
    var req shipNameRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    if req.Name == "" {
        return fail(c, http.StatusBadRequest, "name is required")
    }
    ship, err := h.Ships.Create(c.Request().Context(), req.Name)
    if err != nil {
        return repoFail(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"success": true, "ship": ship})
}

// Get returns one ship together with its bookings, newest voyage first.
func (h *ShipHandler) Get(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    ctx := c.Request().Context()
    ship, err := h.Ships.GetByID(ctx, id)
    if err != nil {
        return repoFail(c, err)
    }
    bookings, err := h.Bookings.List(ctx, repository.BookingFilter{ShipID: id})
    if err != nil {
        return repoFail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "ship": ship, "bookings": bookings})
}

// Rename changes a ship's display name.
func (h *ShipHandler) Rename(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    var req shipNameRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    if req.Name == "" {
        return fail(c, http.StatusBadRequest, "name is required")
    }
    ship, err := h.Ships.Rename(c.Request().Context(), id, req.Name)
    if err != nil {
        return repoFail(c, err)
    }
    h.bump(c)
    return c.JSON(http.StatusOK, echo.Map{"success": true, "ship": ship})
}

type shipSeatsRequest struct {
    Outbound model.SeatCounts `json:"outbound"`
    Inbound  model.SeatCounts `json:"inbound"`
}

// UpdateSeats overwrites all six per-direction, per-class capacity
// maximums.  Lowering a capacity below the seats already taken is
// allowed; the status board surfaces the shortage instead.
func (h *ShipHandler) UpdateSeats(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    var req shipSeatsRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    if !req.Outbound.NonNegative() || !req.Inbound.NonNegative() {
        return fail(c, http.StatusUnprocessableEntity, "seat capacities must not be negative")
    }
    ship, err := h.Ships.UpdateSeats(c.Request().Context(), id, req.Outbound, req.Inbound)
    if err != nil {
        return repoFail(c, err)
    }
    h.bump(c)
    return c.JSON(http.StatusOK, echo.Map{"success": true, "ship": ship})
}

// Delete removes a ship without bookings.
func (h *ShipHandler) Delete(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    if err := h.Ships.Delete(c.Request().Context(), id); err != nil {
        return repoFail(c, err)
    }
    h.bump(c)
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *ShipHandler) bump(c echo.Context) {
    if h.Cache != nil {
        h.Cache.Bump(c.Request().Context())
    }
}

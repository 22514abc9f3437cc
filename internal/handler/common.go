// Package handler contains the Echo HTTP handlers.  Handlers bind and
// validate requests, orchestrate repository transactions, and map
// sentinel errors onto HTTP status codes; all inventory arithmetic
// lives in the inventory package.
package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/wontwopunch/shiptour-v2/internal/model"
    "github.com/wontwopunch/shiptour-v2/internal/repository"
)

const dateLayout = "2006-01-02"

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid " + name)
    }
    return id, nil
}

// parseMonth converts a "YYYY-MM" query value into a [from, to) range
// covering the whole month.  An empty value yields zero times, which
// downstream queries treat as "no date restriction".
func parseMonth(s string) (from, to time.Time, err error) {
    if s == "" {
        return time.Time{}, time.Time{}, nil
    }
    m, err := time.Parse("2006-01", s)
    if err != nil {
        return time.Time{}, time.Time{}, errors.New("invalid month, want YYYY-MM")
    }
    from = time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)
    return from, from.AddDate(0, 1, 0), nil
}

// parseShipID reads the optional shipId query parameter; zero means
// all ships.
func parseShipID(c echo.Context) (uint64, error) {
    s := c.QueryParam("shipId")
    if s == "" {
        return 0, nil
    }
    id, err := strconv.ParseUint(s, 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid shipId")
    }
    return id, nil
}

// parseCount reads a positive seat count query value.
func parseCount(s string) (int, error) {
    n, err := strconv.Atoi(s)
    if err != nil || n < 1 {
        return 0, errors.New("count must be a positive integer")
    }
    return n, nil
}

// fail writes the canonical error response shape.
func fail(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// repoFail maps repository and validation sentinel errors onto HTTP
// responses.  Unknown errors become a generic 500 so driver details
// never leak to the client.
func repoFail(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrShipNotFound),
        errors.Is(err, repository.ErrBookingNotFound),
        errors.Is(err, repository.ErrStatusNotFound):
        return fail(c, http.StatusNotFound, err.Error())
    case errors.Is(err, repository.ErrDuplicateShipName),
        errors.Is(err, repository.ErrShipHasBookings):
        return fail(c, http.StatusConflict, err.Error())
    case errors.Is(err, repository.ErrSeatsUnavailable):
        // retryable: a concurrent booking may have taken the seats
        return fail(c, http.StatusConflict, err.Error())
    case errors.Is(err, model.ErrMissingShip),
        errors.Is(err, model.ErrNegativeSeats),
        errors.Is(err, model.ErrUnknownStatus),
        errors.Is(err, model.ErrUnknownHighlight):
        return fail(c, http.StatusUnprocessableEntity, err.Error())
    }
    return fail(c, http.StatusInternalServerError, "internal error")
}

package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/wontwopunch/shiptour-v2/internal/inventory"
    "github.com/wontwopunch/shiptour-v2/internal/middleware"
    "github.com/wontwopunch/shiptour-v2/internal/model"
    "github.com/wontwopunch/shiptour-v2/internal/queue"
    "github.com/wontwopunch/shiptour-v2/internal/repository"
)

// BookingHandler serves the booking ledger.  Every write runs inside a
// single transaction that also applies the booking's seat claim to the
// inventory store, so the ledger and the counters move together.
type BookingHandler struct {
    DB       *sql.DB
    Bookings *repository.BookingRepo
    Statuses *repository.SeatStatusRepo
    Ships    *repository.ShipRepo
    Cache    *middleware.StatusCache
}

func NewBookingHandler(db *sql.DB, bookings *repository.BookingRepo, statuses *repository.SeatStatusRepo, ships *repository.ShipRepo, cache *middleware.StatusCache) *BookingHandler {
    if db == nil || bookings == nil || statuses == nil || ships == nil {
        panic("handler: BookingHandler requires db and all repos")
    }
    return &BookingHandler{DB: db, Bookings: bookings, Statuses: statuses, Ships: ships, Cache: cache}
}

// bookingRequest is the wire shape of a booking save.  Dates arrive as
// "YYYY-MM-DD" strings.  Derived money fields are absent: the server
// recomputes them on every save.
type bookingRequest struct {
    ID            uint64           `json:"id"`
    ShipID        uint64           `json:"ship_id"`
    ListStatus    string           `json:"list_status"`
    ContractDate  string           `json:"contract_date"`
    DepartureDate string           `json:"departure_date"`
    ArrivalDate   string           `json:"arrival_date"`
    ReservedBy    string           `json:"reserved_by"`
    ReservedBy2   string           `json:"reserved_by2"`
    Contact       string           `json:"contact"`
    Product       string           `json:"product"`
    Seats         model.SeatCounts `json:"seats"`
    TourDate      string           `json:"tour_date"`
    TourPeople    int              `json:"tour_people"`
    TourTime      string           `json:"tour_time"`
    TourDetails   string           `json:"tour_details"`
    TotalPrice    float64          `json:"total_price"`
    Deposit       float64          `json:"deposit"`
    RentalCar     string           `json:"rental_car"`
    Accommodation string           `json:"accommodation"`
    Others        string           `json:"others"`
    DepartureFee  float64          `json:"departure_fee"`
    ArrivalFee    float64          `json:"arrival_fee"`
    TourFee       float64          `json:"tour_fee"`
    RestaurantFee float64          `json:"restaurant_fee"`
    EventFee      float64          `json:"event_fee"`
    OtherFee      float64          `json:"other_fee"`
    Refund        float64          `json:"refund"`
    Highlights    model.Highlights `json:"highlights"`
    Status        string           `json:"status"`
}

func (req *bookingRequest) toModel() (*model.Booking, error) {
    b := &model.Booking{
        ID:            req.ID,
        ShipID:        req.ShipID,
        ListStatus:    req.ListStatus,
        ReservedBy:    req.ReservedBy,
        ReservedBy2:   req.ReservedBy2,
        Contact:       req.Contact,
        Product:       req.Product,
        Seats:         req.Seats,
        TourPeople:    req.TourPeople,
        TourTime:      req.TourTime,
        TourDetails:   req.TourDetails,
        TotalPrice:    req.TotalPrice,
        Deposit:       req.Deposit,
        RentalCar:     req.RentalCar,
        Accommodation: req.Accommodation,
        Others:        req.Others,
        DepartureFee:  req.DepartureFee,
        ArrivalFee:    req.ArrivalFee,
        TourFee:       req.TourFee,
        RestaurantFee: req.RestaurantFee,
        EventFee:      req.EventFee,
        OtherFee:      req.OtherFee,
        Refund:        req.Refund,
        Highlights:    req.Highlights,
        Status:        req.Status,
    }
    var err error
    if b.DepartureDate, err = time.Parse(dateLayout, req.DepartureDate); err != nil {
        return nil, errors.New("invalid departure_date, want YYYY-MM-DD")
    }
    if b.ArrivalDate, err = time.Parse(dateLayout, req.ArrivalDate); err != nil {
        return nil, errors.New("invalid arrival_date, want YYYY-MM-DD")
    }
    if req.ContractDate != "" {
        if b.ContractDate, err = time.Parse(dateLayout, req.ContractDate); err != nil {
            return nil, errors.New("invalid contract_date, want YYYY-MM-DD")
        }
    }
    if req.TourDate != "" {
        td, err := time.Parse(dateLayout, req.TourDate)
        if err != nil {
            return nil, errors.New("invalid tour_date, want YYYY-MM-DD")
        }
        b.TourDate = &td
    }
    return b, nil
}

// List returns bookings matching the optional shipId, month and
// bookerName filters, plus the profit total over the result set.
func (h *BookingHandler) List(c echo.Context) error {
    shipID, err := parseShipID(c)
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    from, _, err := parseMonth(c.QueryParam("month"))
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    filter := repository.BookingFilter{
        ShipID:     shipID,
        Month:      from,
        BookerName: c.QueryParam("bookerName"),
    }
    bookings, err := h.Bookings.List(c.Request().Context(), filter)
    if err != nil {
        return repoFail(c, err)
    }
    var totalProfit int64
    for i := range bookings {
        totalProfit += bookings[i].Profit
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":      true,
        "bookings":     bookings,
        "total_profit": totalProfit,
    })
}

// Save creates or updates one booking.  A zero id creates; a non-zero
// id updates.  Seat claims are applied under the capacity condition, so
// a save that would oversell any leg fails with 409 and no change.
func (h *BookingHandler) Save(c echo.Context) error {
    var req bookingRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    b, err := req.toModel()
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    action, err := h.save(c.Request().Context(), b)
    if err != nil {
        return repoFail(c, err)
    }
    h.afterWrite(c, b, action)
    status := http.StatusOK
    if action == queue.ActionCreated {
        status = http.StatusCreated
    }
    return c.JSON(status, echo.Map{"success": true, "booking": b})
}

type batchSaveRequest struct {
    Bookings []bookingRequest `json:"bookings"`
}

type batchResult struct {
    Index   int    `json:"index"`
    ID      uint64 `json:"id,omitempty"`
    Success bool   `json:"success"`
    Error   string `json:"error,omitempty"`
}

// BatchSave saves many bookings in one call.  Each item commits or
// fails independently; the response reports per-item outcomes and the
// call succeeds as long as the batch itself was well-formed.
func (h *BookingHandler) BatchSave(c echo.Context) error {
    var req batchSaveRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    if len(req.Bookings) == 0 {
        return fail(c, http.StatusBadRequest, "bookings array is empty")
    }
    ctx := c.Request().Context()
    results := make([]batchResult, 0, len(req.Bookings))
    saved := 0
    for i := range req.Bookings {
        b, err := req.Bookings[i].toModel()
        if err != nil {
            results = append(results, batchResult{Index: i, Error: err.Error()})
            continue
        }
        action, err := h.save(ctx, b)
        if err != nil {
            results = append(results, batchResult{Index: i, Error: err.Error()})
            continue
        }
        h.afterWrite(c, b, action)
        results = append(results, batchResult{Index: i, ID: b.ID, Success: true})
        saved++
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success": true,
        "saved":   saved,
        "failed":  len(req.Bookings) - saved,
        "results": results,
    })
}

// save validates the booking, recomputes its derived fields, and runs
// the ledger write plus the per-leg seat claims in one transaction.
// Updates first reverse the stored booking's old contribution, then
// apply the new one conditionally, so moving a booking between dates or
// ships cannot leave stale counters behind.
func (h *BookingHandler) save(ctx context.Context, b *model.Booking) (string, error) {
    if err := b.Validate(); err != nil {
        return "", err
    }
    if _, err := h.Ships.GetByID(ctx, b.ShipID); err != nil {
        return "", err
    }
    b.ComputeDerived()

    tx, err := h.DB.BeginTx(ctx, nil)
    if err != nil {
        return "", err
    }
    defer func() { _ = tx.Rollback() }()

    action := queue.ActionCreated
    var old *model.Booking
    if b.ID != 0 {
        action = queue.ActionUpdated
        old, err = h.Bookings.GetByIDTx(ctx, tx, b.ID)
        if err != nil {
            return "", err
        }
        if err := h.Bookings.UpdateTx(ctx, tx, b); err != nil {
            return "", err
        }
    } else {
        if err := h.Bookings.CreateTx(ctx, tx, b); err != nil {
            return "", err
        }
    }

    if err := h.applyOps(ctx, tx, inventory.PlanBookingSave(old, b)); err != nil {
        return "", err
    }

    if err := h.Ships.SetHasReservationsTx(ctx, tx, b.ShipID, true); err != nil {
        return "", err
    }
    if old != nil && old.ShipID != b.ShipID {
        // Booking moved to another ship; recount the old one.
        n, err := h.Ships.CountBookingsTx(ctx, tx, old.ShipID, b.ID)
        if err != nil {
            return "", err
        }
        if n == 0 {
            if err := h.Ships.SetHasReservationsTx(ctx, tx, old.ShipID, false); err != nil {
                return "", err
            }
        }
    }

    if err := tx.Commit(); err != nil {
        return "", err
    }
    return action, nil
}

// applyOps runs planned inventory mutations inside the transaction:
// unconditional deltas for releases and reversals, the capacity-checked
// reserve for new claims.
func (h *BookingHandler) applyOps(ctx context.Context, tx *sql.Tx, ops []inventory.LegOp) error {
    for _, op := range ops {
        var err error
        if op.Conditional {
            err = h.Statuses.ReserveWithinCapacityTx(ctx, tx, op.Leg.ShipID, op.Leg.Date, op.Leg.Direction, op.Delta)
        } else {
            err = h.Statuses.ApplyReservationDeltaTx(ctx, tx, op.Leg.ShipID, op.Leg.Date, op.Leg.Direction, op.Delta)
        }
        if err != nil {
            return err
        }
    }
    return nil
}

// Delete removes a booking and releases its seats on both legs.
func (h *BookingHandler) Delete(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    ctx := c.Request().Context()

    tx, err := h.DB.BeginTx(ctx, nil)
    if err != nil {
        return repoFail(c, err)
    }
    defer func() { _ = tx.Rollback() }()

    b, err := h.Bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        return repoFail(c, err)
    }
    if err := h.applyOps(ctx, tx, inventory.PlanBookingDelete(b)); err != nil {
        return repoFail(c, err)
    }
    if err := h.Bookings.DeleteTx(ctx, tx, id); err != nil {
        return repoFail(c, err)
    }
    n, err := h.Ships.CountBookingsTx(ctx, tx, b.ShipID, id)
    if err != nil {
        return repoFail(c, err)
    }
    if n == 0 {
        if err := h.Ships.SetHasReservationsTx(ctx, tx, b.ShipID, false); err != nil {
            return repoFail(c, err)
        }
    }
    if err := tx.Commit(); err != nil {
        return repoFail(c, err)
    }

    h.afterWrite(c, b, queue.ActionDeleted)
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type highlightRequest struct {
    Field string `json:"field"`
}

// Highlight toggles one money-cell highlight flag on a booking.
func (h *BookingHandler) Highlight(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    var req highlightRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    ctx := c.Request().Context()
    b, err := h.Bookings.GetByID(ctx, id)
    if err != nil {
        return repoFail(c, err)
    }
    on, err := b.Highlights.Toggle(req.Field)
    if err != nil {
        return repoFail(c, err)
    }
    if err := h.Bookings.SetHighlights(ctx, id, b.Highlights); err != nil {
        return repoFail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":     true,
        "field":       req.Field,
        "highlighted": on,
        "highlights":  b.Highlights,
    })
}

type batchHighlightItem struct {
    BookingID  uint64           `json:"booking_id"`
    Highlights model.Highlights `json:"highlights"`
}

type batchHighlightRequest struct {
    Items []batchHighlightItem `json:"items"`
}

// BatchHighlight overwrites highlight flags for many bookings at once.
func (h *BookingHandler) BatchHighlight(c echo.Context) error {
    var req batchHighlightRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    if len(req.Items) == 0 {
        return fail(c, http.StatusBadRequest, "items array is empty")
    }
    ctx := c.Request().Context()
    results := make([]batchResult, 0, len(req.Items))
    saved := 0
    for i, item := range req.Items {
        if err := h.Bookings.SetHighlights(ctx, item.BookingID, item.Highlights); err != nil {
            results = append(results, batchResult{Index: i, ID: item.BookingID, Error: err.Error()})
            continue
        }
        results = append(results, batchResult{Index: i, ID: item.BookingID, Success: true})
        saved++
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success": true,
        "saved":   saved,
        "failed":  len(req.Items) - saved,
        "results": results,
    })
}

// Export returns every field of the filtered bookings as flat rows for
// spreadsheet export.
func (h *BookingHandler) Export(c echo.Context) error {
    shipID, err := parseShipID(c)
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    from, _, err := parseMonth(c.QueryParam("month"))
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    bookings, err := h.Bookings.List(c.Request().Context(),
        repository.BookingFilter{ShipID: shipID, Month: from})
    if err != nil {
        return repoFail(c, err)
    }
    rows := make([]echo.Map, 0, len(bookings))
    for i := range bookings {
        b := &bookings[i]
        var tourDate string
        if b.TourDate != nil {
            tourDate = b.TourDate.Format(dateLayout)
        }
        rows = append(rows, echo.Map{
            "id":               b.ID,
            "ship_name":        b.ShipName,
            "list_status":      b.ListStatus,
            "contract_date":    b.ContractDate.Format(dateLayout),
            "departure_date":   b.DepartureDate.Format(dateLayout),
            "arrival_date":     b.ArrivalDate.Format(dateLayout),
            "reserved_by":      b.ReservedBy,
            "reserved_by2":     b.ReservedBy2,
            "contact":          b.Contact,
            "product":          b.Product,
            "total_seats":      b.TotalSeats,
            "economy_seats":    b.Seats.Economy,
            "business_seats":   b.Seats.Business,
            "first_seats":      b.Seats.First,
            "tour_date":        tourDate,
            "tour_people":      b.TourPeople,
            "tour_time":        b.TourTime,
            "tour_details":     b.TourDetails,
            "total_price":      b.TotalPrice,
            "deposit":          b.Deposit,
            "balance":          b.Balance,
            "rental_car":       b.RentalCar,
            "accommodation":    b.Accommodation,
            "others":           b.Others,
            "departure_fee":    b.DepartureFee,
            "arrival_fee":      b.ArrivalFee,
            "tour_fee":         b.TourFee,
            "restaurant_fee":   b.RestaurantFee,
            "event_fee":        b.EventFee,
            "other_fee":        b.OtherFee,
            "refund":           b.Refund,
            "total_settlement": b.TotalSettlement,
            "profit":           b.Profit,
            "status":           b.Status,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "rows": rows})
}

// afterWrite publishes the audit event and invalidates the status
// cache.  Both are best-effort: the ledger write already committed.
func (h *BookingHandler) afterWrite(c echo.Context, b *model.Booking, action string) {
    ctx := c.Request().Context()
    shipName := b.ShipName
    if shipName == "" {
        if ship, err := h.Ships.GetByID(ctx, b.ShipID); err == nil {
            shipName = ship.Name
        }
    }
    _ = queue.PublishBookingSaved(ctx, queue.BookingSavedEvent{
        BookingID:     b.ID,
        Action:        action,
        ShipID:        b.ShipID,
        ShipName:      shipName,
        DepartureDate: b.DepartureDate.Format(dateLayout),
        ArrivalDate:   b.ArrivalDate.Format(dateLayout),
        Seats:         b.Seats,
        ReservedBy:    b.ReservedBy,
        SavedAt:       time.Now().UTC().Format(time.RFC3339),
    })
    if h.Cache != nil {
        h.Cache.Bump(ctx)
    }
}

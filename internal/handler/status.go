package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/wontwopunch/shiptour-v2/internal/inventory"
    "github.com/wontwopunch/shiptour-v2/internal/middleware"
    "github.com/wontwopunch/shiptour-v2/internal/model"
    "github.com/wontwopunch/shiptour-v2/internal/repository"
)

// StatusHandler serves the seat status board: reconciled reserved
// counters, administrative blocked counters, and the derived remaining
// values with shortage flags.
type StatusHandler struct {
    Engine   *inventory.Engine
    Statuses *repository.SeatStatusRepo
    Ships    *repository.ShipRepo
    Cache    *middleware.StatusCache
}

func NewStatusHandler(engine *inventory.Engine, statuses *repository.SeatStatusRepo, ships *repository.ShipRepo, cache *middleware.StatusCache) *StatusHandler {
    if engine == nil || statuses == nil || ships == nil {
        panic("handler: StatusHandler requires engine and repos")
    }
    return &StatusHandler{Engine: engine, Statuses: statuses, Ships: ships, Cache: cache}
}

// legView is the wire shape of one direction's counters.  Remaining is
// blocked − reserved and may be negative; Shortage flags that case.
type legView struct {
    Reserved  model.SeatCounts `json:"reserved"`
    Blocked   model.SeatCounts `json:"blocked"`
    Remaining model.SeatCounts `json:"remaining"`
    Shortage  bool             `json:"shortage"`
}

type statusRow struct {
    ID       uint64  `json:"id"`
    ShipID   uint64  `json:"ship_id"`
    ShipName string  `json:"ship_name"`
    Date     string  `json:"date"`
    Outbound legView `json:"outbound"`
    Inbound  legView `json:"inbound"`
    Shortage bool    `json:"shortage"`
}

func legViewOf(info model.SeatInfo) legView {
    return legView{
        Reserved:  info.Reserved(),
        Blocked:   info.Blocked(),
        Remaining: info.Remaining(),
        Shortage:  info.Shortage(),
    }
}

func statusRowOf(ss *model.SeatStatus) statusRow {
    return statusRow{
        ID:       ss.ID,
        ShipID:   ss.ShipID,
        ShipName: ss.ShipName,
        Date:     ss.Date.Format(dateLayout),
        Outbound: legViewOf(ss.Outbound),
        Inbound:  legViewOf(ss.Inbound),
        Shortage: ss.Shortage(),
    }
}

// List returns the reconciled status board filtered by the optional
// shipId and month query parameters.
func (h *StatusHandler) List(c echo.Context) error {
    shipID, err := parseShipID(c)
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    from, to, err := parseMonth(c.QueryParam("month"))
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    statuses, err := h.Engine.StatusView(c.Request().Context(), shipID, from, to)
    if err != nil {
        return repoFail(c, err)
    }
    rows := make([]statusRow, 0, len(statuses))
    for i := range statuses {
        rows = append(rows, statusRowOf(&statuses[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "statuses": rows})
}

type createStatusRequest struct {
    ShipID          uint64           `json:"ship_id"`
    Date            string           `json:"date"`
    OutboundBlocked model.SeatCounts `json:"outbound_blocked"`
    InboundBlocked  model.SeatCounts `json:"inbound_blocked"`
}

// Create registers blocked capacity for a (ship, date) pair, creating
// the status row if it does not exist yet.
func (h *StatusHandler) Create(c echo.Context) error {
    var req createStatusRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    if req.ShipID == 0 {
        return fail(c, http.StatusBadRequest, "ship_id is required")
    }
    date, err := time.Parse(dateLayout, req.Date)
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
    }
    ctx := c.Request().Context()
    if _, err := h.Ships.GetByID(ctx, req.ShipID); err != nil {
        return repoFail(c, err)
    }
    if _, err := h.Statuses.UpsertBlocked(ctx, req.ShipID, date, model.DirectionOutbound, req.OutboundBlocked); err != nil {
        return repoFail(c, err)
    }
    ss, err := h.Statuses.UpsertBlocked(ctx, req.ShipID, date, model.DirectionInbound, req.InboundBlocked)
    if err != nil {
        return repoFail(c, err)
    }
    h.bump(c)
    row, err := h.reconciledRow(c, ss.ID)
    if err != nil {
        return repoFail(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"success": true, "status": row})
}

type saveStatusRequest struct {
    StatusID uint64           `json:"status_id"`
    Outbound model.SeatCounts `json:"outbound"`
    Inbound  model.SeatCounts `json:"inbound"`
}

// Save overwrites the blocked counters of one status row.  Reserved
// counters are ledger-derived and cannot be edited here.
func (h *StatusHandler) Save(c echo.Context) error {
    var req saveStatusRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    if req.StatusID == 0 {
        return fail(c, http.StatusBadRequest, "status_id is required")
    }
    if err := h.Statuses.UpdateBlockedByID(c.Request().Context(), req.StatusID, req.Outbound, req.Inbound); err != nil {
        return repoFail(c, err)
    }
    h.bump(c)
    row, err := h.reconciledRow(c, req.StatusID)
    if err != nil {
        return repoFail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "status": row})
}

type batchStatusRequest struct {
    Items []saveStatusRequest `json:"items"`
}

// BatchSave applies many blocked-counter edits in one call with
// per-item outcomes.
func (h *StatusHandler) BatchSave(c echo.Context) error {
    var req batchStatusRequest
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
        if item.StatusID == 0 {
            results = append(results, batchResult{Index: i, Error: "status_id is required"})
            continue
        }
        if err := h.Statuses.UpdateBlockedByID(ctx, item.StatusID, item.Outbound, item.Inbound); err != nil {
            results = append(results, batchResult{Index: i, ID: item.StatusID, Error: err.Error()})
            continue
        }
        results = append(results, batchResult{Index: i, ID: item.StatusID, Success: true})
        saved++
    }
    h.bump(c)
    return c.JSON(http.StatusOK, echo.Map{
        "success": true,
        "saved":   saved,
        "failed":  len(req.Items) - saved,
        "results": results,
    })
}

// Resync rebuilds the stored reserved counters from the booking ledger
// for the filtered range.  Idempotent; safe to run at any time.
func (h *StatusHandler) Resync(c echo.Context) error {
    shipID, err := parseShipID(c)
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    from, to, err := parseMonth(c.QueryParam("month"))
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    n, err := h.Engine.Resync(c.Request().Context(), shipID, from, to)
    if err != nil {
        return repoFail(c, err)
    }
    h.bump(c)
    return c.JSON(http.StatusOK, echo.Map{"success": true, "rows": n})
}

// Export returns every status row in range as flat columns for
// spreadsheet export, including rows with no activity.
func (h *StatusHandler) Export(c echo.Context) error {
    shipID, err := parseShipID(c)
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    from, to, err := parseMonth(c.QueryParam("month"))
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    statuses, err := h.Engine.ExportRows(c.Request().Context(), shipID, from, to)
    if err != nil {
        return repoFail(c, err)
    }
    rows := make([]echo.Map, 0, len(statuses))
    for i := range statuses {
        ss := &statuses[i]
        outRem, inRem := ss.Outbound.Remaining(), ss.Inbound.Remaining()
        rows = append(rows, echo.Map{
            "ship_name":              ss.ShipName,
            "date":                   ss.Date.Format(dateLayout),
            "out_economy_reserved":   ss.Outbound.EconomyReserved,
            "out_business_reserved":  ss.Outbound.BusinessReserved,
            "out_first_reserved":     ss.Outbound.FirstReserved,
            "out_economy_blocked":    ss.Outbound.EconomyBlocked,
            "out_business_blocked":   ss.Outbound.BusinessBlocked,
            "out_first_blocked":      ss.Outbound.FirstBlocked,
            "out_economy_remaining":  outRem.Economy,
            "out_business_remaining": outRem.Business,
            "out_first_remaining":    outRem.First,
            "in_economy_reserved":    ss.Inbound.EconomyReserved,
            "in_business_reserved":   ss.Inbound.BusinessReserved,
            "in_first_reserved":      ss.Inbound.FirstReserved,
            "in_economy_blocked":     ss.Inbound.EconomyBlocked,
            "in_business_blocked":    ss.Inbound.BusinessBlocked,
            "in_first_blocked":       ss.Inbound.FirstBlocked,
            "in_economy_remaining":   inRem.Economy,
            "in_business_remaining":  inRem.Business,
            "in_first_remaining":     inRem.First,
            "shortage":               ss.Shortage(),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "rows": rows})
}

// Availability answers whether count seats of one class fit on a leg.
// Advisory only; the capacity condition inside the booking save is the
// authoritative gate.
func (h *StatusHandler) Availability(c echo.Context) error {
    shipID, err := parseShipID(c)
    if err != nil || shipID == 0 {
        return fail(c, http.StatusBadRequest, "shipId is required")
    }
    date, err := time.Parse(dateLayout, c.QueryParam("date"))
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
    }
    d := model.Direction(c.QueryParam("direction"))
    if !d.Valid() {
        return fail(c, http.StatusBadRequest, "direction must be outbound or inbound")
    }
    class := model.SeatClass(c.QueryParam("class"))
    if !class.Valid() {
        return fail(c, http.StatusBadRequest, "class must be economy, business or first")
    }
    count, err := parseCount(c.QueryParam("count"))
    if err != nil {
        return fail(c, http.StatusBadRequest, err.Error())
    }
    ok, err := h.Engine.CheckAvailability(c.Request().Context(), shipID, date, d, class, count)
    if err != nil {
        return repoFail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "available": ok})
}

// reconciledRow reloads one status row and replaces its reserved
// counters with fresh ledger sums before returning it to the client.
func (h *StatusHandler) reconciledRow(c echo.Context, id uint64) (statusRow, error) {
    ctx := c.Request().Context()
    ss, err := h.Statuses.GetByID(ctx, id)
    if err != nil {
        return statusRow{}, err
    }
    day := model.DayOf(ss.Date)
    reserved, err := h.Engine.Reconcile(ctx, []model.VoyageLeg{
        {ShipID: ss.ShipID, Date: day, Direction: model.DirectionOutbound},
        {ShipID: ss.ShipID, Date: day, Direction: model.DirectionInbound},
    })
    if err != nil {
        return statusRow{}, err
    }
    ss.Outbound.SetReserved(reserved[model.VoyageLeg{ShipID: ss.ShipID, Date: day, Direction: model.DirectionOutbound}])
    ss.Inbound.SetReserved(reserved[model.VoyageLeg{ShipID: ss.ShipID, Date: day, Direction: model.DirectionInbound}])
    return statusRowOf(ss), nil
}

func (h *StatusHandler) bump(c echo.Context) {
    if h.Cache != nil {
        h.Cache.Bump(c.Request().Context())
    }
}

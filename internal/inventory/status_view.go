package inventory

import (
    "context"
    "time"

    "github.com/wontwopunch/shiptour-v2/internal/model"
)

// overlay replaces the reserved counters of each status row with the
// reconciled sums for its two legs, leaving blocked counters exactly
// as stored.  Rows whose legs carry no bookings get zero reserved.
func overlay(statuses []model.SeatStatus, reserved map[model.VoyageLeg]model.SeatCounts) []model.SeatStatus {
    out := make([]model.SeatStatus, len(statuses))
    for i, ss := range statuses {
        day := model.DayOf(ss.Date)
        ss.Outbound.SetReserved(reserved[model.VoyageLeg{ShipID: ss.ShipID, Date: day, Direction: model.DirectionOutbound}])
        ss.Inbound.SetReserved(reserved[model.VoyageLeg{ShipID: ss.ShipID, Date: day, Direction: model.DirectionInbound}])
        out[i] = ss
    }
    return out
}

// touchedPairs collects the distinct (ship, date) pairs claimed by
// bookings that hold seats.  Zero-seat bookings are skipped; they
// never need an inventory record.
func touchedPairs(bookings []model.Booking) []model.VoyageLeg {
    seen := make(map[model.VoyageLeg]bool)
    var legs []model.VoyageLeg
    for _, b := range bookings {
        if !b.ClaimsSeats() {
            continue
        }
        outbound, inbound := b.Legs()
        for _, leg := range []model.VoyageLeg{outbound, inbound} {
            if !seen[leg] {
                seen[leg] = true
                legs = append(legs, leg)
            }
        }
    }
    return legs
}

// StatusView produces the reconciled seat status rows for the given
// ship and date-range filter (zero values disable a criterion):
// bookings touching the range determine which legs need a view,
// missing status rows are created lazily with zero counters, stored
// rows are fetched, and their reserved counters are replaced with
// fresh ledger sums.  Rows with no activity at all are dropped.  The
// store's blocked counters pass through untouched, so a negative
// remaining (shortage) survives into the result for the caller to
// flag.
func (e *Engine) StatusView(ctx context.Context, shipID uint64, from, to time.Time) ([]model.SeatStatus, error) {
    bookings, err := e.bookings.ListTouchingRange(ctx, shipID, from, to)
    if err != nil {
        return nil, err
    }
    legs := touchedPairs(bookings)
    for _, leg := range legs {
        if err := e.statuses.EnsureExists(ctx, leg.ShipID, leg.Date); err != nil {
            return nil, err
        }
    }
    _, dates := legDates(legs)
    statuses, err := e.statuses.ListByDates(ctx, shipID, dates)
    if err != nil {
        return nil, err
    }
    merged := overlay(statuses, accumulateReserved(bookings))
    view := make([]model.SeatStatus, 0, len(merged))
    for _, ss := range merged {
        if ss.HasActivity() {
            view = append(view, ss)
        }
    }
    return view, nil
}

// ExportRows returns every stored status row in range with reserved
// counters reconciled from the ledger, including rows with no
// activity.  Used by the spreadsheet export, which wants the complete
// picture rather than the trimmed operator view.
func (e *Engine) ExportRows(ctx context.Context, shipID uint64, from, to time.Time) ([]model.SeatStatus, error) {
    statuses, err := e.statuses.RangeQuery(ctx, shipID, from, to)
    if err != nil {
        return nil, err
    }
    if len(statuses) == 0 {
        return statuses, nil
    }
    bookings, err := e.bookings.ListTouchingRange(ctx, shipID, from, to)
    if err != nil {
        return nil, err
    }
    return overlay(statuses, accumulateReserved(bookings)), nil
}

// Resync overwrites the stored reserved counters of every status row
// in range with freshly reconciled ledger sums, creating rows for legs
// that bookings touch but the store has not seen.  It heals drift left
// by any missed incremental delta and is safe to run at any time: the
// operation is idempotent and the ledger is the sole input.  It
// returns the number of rows rewritten.
func (e *Engine) Resync(ctx context.Context, shipID uint64, from, to time.Time) (int, error) {
    bookings, err := e.bookings.ListTouchingRange(ctx, shipID, from, to)
    if err != nil {
        return 0, err
    }
    for _, leg := range touchedPairs(bookings) {
        if err := e.statuses.EnsureExists(ctx, leg.ShipID, leg.Date); err != nil {
            return 0, err
        }
    }
    statuses, err := e.statuses.RangeQuery(ctx, shipID, from, to)
    if err != nil {
        return 0, err
    }
    reserved := accumulateReserved(bookings)
    for _, ss := range statuses {
        day := model.DayOf(ss.Date)
        outbound := reserved[model.VoyageLeg{ShipID: ss.ShipID, Date: day, Direction: model.DirectionOutbound}]
        inbound := reserved[model.VoyageLeg{ShipID: ss.ShipID, Date: day, Direction: model.DirectionInbound}]
        if err := e.statuses.OverwriteReserved(ctx, ss.ShipID, day, outbound, inbound); err != nil {
            return 0, err
        }
    }
    return len(statuses), nil
}

// Package inventory derives per-leg seat counters from the booking
// ledger.  The ledger is ground truth; the persisted seat status rows
// are a cache refreshed on read and healed on demand.  All arithmetic
// here is purely additive: a leg's reserved count is the sum of seat
// claims over currently-existing bookings, so deleted bookings
// contribute nothing and reconciliation is idempotent by construction.
package inventory

import (
    "context"
    "time"

    "github.com/wontwopunch/shiptour-v2/internal/model"
)

// BookingSource is the slice of the booking ledger the engine reads.
type BookingSource interface {
    // FindByLegs returns bookings whose departure or arrival date is in
    // dates and whose ship is in shipIDs (all ships when empty).
    FindByLegs(ctx context.Context, shipIDs []uint64, dates []time.Time) ([]model.Booking, error)
    // ListTouchingRange returns bookings whose departure or arrival
    // date falls in [from, to), optionally restricted to one ship.
    // Zero bounds disable the date restriction.
    ListTouchingRange(ctx context.Context, shipID uint64, from, to time.Time) ([]model.Booking, error)
}

// StatusStore is the persisted inventory cache the engine merges with
// and heals.
type StatusStore interface {
    EnsureExists(ctx context.Context, shipID uint64, date time.Time) error
    Get(ctx context.Context, shipID uint64, date time.Time) (*model.SeatStatus, error)
    ListByDates(ctx context.Context, shipID uint64, dates []time.Time) ([]model.SeatStatus, error)
    RangeQuery(ctx context.Context, shipID uint64, from, to time.Time) ([]model.SeatStatus, error)
    OverwriteReserved(ctx context.Context, shipID uint64, date time.Time, outbound, inbound model.SeatCounts) error
}

// ShipSource supplies the capacity catalog for availability checks.
type ShipSource interface {
    GetByID(ctx context.Context, id uint64) (*model.Ship, error)
}

// Engine wires the three sources together.  It holds no state of its
// own; every operation reads a fresh ledger snapshot.
type Engine struct {
    bookings BookingSource
    statuses StatusStore
    ships    ShipSource
}

// NewEngine returns an Engine over the given sources.
func NewEngine(bookings BookingSource, statuses StatusStore, ships ShipSource) *Engine {
    return &Engine{bookings: bookings, statuses: statuses, ships: ships}
}

// accumulateReserved sums the seat claims of the given bookings into
// per-leg buckets: each booking adds its per-class counts to the
// outbound bucket at (ship, departureDate) and the inbound bucket at
// (ship, arrivalDate).
func accumulateReserved(bookings []model.Booking) map[model.VoyageLeg]model.SeatCounts {
    reserved := make(map[model.VoyageLeg]model.SeatCounts)
    for _, b := range bookings {
        outbound, inbound := b.Legs()
        reserved[outbound] = reserved[outbound].Add(b.Seats)
        reserved[inbound] = reserved[inbound].Add(b.Seats)
    }
    return reserved
}

// legDates returns the distinct day-truncated dates and ship ids
// referenced by the given legs.
func legDates(legs []model.VoyageLeg) (shipIDs []uint64, dates []time.Time) {
    shipSeen := make(map[uint64]bool)
    dateSeen := make(map[time.Time]bool)
    for _, leg := range legs {
        if !shipSeen[leg.ShipID] {
            shipSeen[leg.ShipID] = true
            shipIDs = append(shipIDs, leg.ShipID)
        }
        day := model.DayOf(leg.Date)
        if !dateSeen[day] {
            dateSeen[day] = true
            dates = append(dates, day)
        }
    }
    return shipIDs, dates
}

// Reconcile recomputes reserved seat counts for the requested legs by
// scanning the booking ledger.  Every requested leg appears in the
// result, with zero counts when no booking claims it.  The ledger is
// not mutated; running Reconcile twice on an unchanged ledger yields
// identical results.
func (e *Engine) Reconcile(ctx context.Context, legs []model.VoyageLeg) (map[model.VoyageLeg]model.SeatCounts, error) {
    if len(legs) == 0 {
        return map[model.VoyageLeg]model.SeatCounts{}, nil
    }
    shipIDs, dates := legDates(legs)
    bookings, err := e.bookings.FindByLegs(ctx, shipIDs, dates)
    if err != nil {
        return nil, err
    }
    all := accumulateReserved(bookings)
    out := make(map[model.VoyageLeg]model.SeatCounts, len(legs))
    for _, leg := range legs {
        key := model.VoyageLeg{ShipID: leg.ShipID, Date: model.DayOf(leg.Date), Direction: leg.Direction}
        out[key] = all[key]
    }
    return out, nil
}

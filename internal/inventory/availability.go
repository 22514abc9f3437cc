package inventory

import (
    "context"
    "errors"
    "time"

    "github.com/wontwopunch/shiptour-v2/internal/model"
    "github.com/wontwopunch/shiptour-v2/internal/repository"
)

// classDelta builds a SeatCounts carrying count in a single fare class.
func classDelta(class model.SeatClass, count int) model.SeatCounts {
    var d model.SeatCounts
    switch class {
    case model.ClassEconomy:
        d.Economy = count
    case model.ClassBusiness:
        d.Business = count
    case model.ClassFirst:
        d.First = count
    }
    return d
}

// CheckAvailability decides whether count additional seats of one fare
// class fit on a leg, applying FitsWithinCapacity against the ship's
// capacity catalog.  Blocked seats reduce availability even though no
// booking backs them.  A missing status row means nothing is reserved
// or blocked yet, so the leg is treated as fully free.
//
// The check reads the cached counters and holds no lock, so it is
// advisory: two callers can both pass before either commits.  The
// authoritative gate is the conditional reserve applied inside the
// booking-save transaction.
func (e *Engine) CheckAvailability(ctx context.Context, shipID uint64, date time.Time, d model.Direction, class model.SeatClass, count int) (bool, error) {
    ship, err := e.ships.GetByID(ctx, shipID)
    if err != nil {
        return false, err
    }

    var reserved, blocked model.SeatCounts
    ss, err := e.statuses.Get(ctx, shipID, date)
    switch {
    case errors.Is(err, repository.ErrStatusNotFound):
        // no record yet: capacity assumed fully free
    case err != nil:
        return false, err
    default:
        info := ss.Info(d)
        reserved = info.Reserved()
        blocked = info.Blocked()
    }
    return FitsWithinCapacity(ship.Capacity(d), reserved, blocked, classDelta(class, count)), nil
}

package inventory

import "github.com/wontwopunch/shiptour-v2/internal/model"

// LegOp is one inventory mutation derived from a booking write.  Ops
// with Conditional set must go through the capacity-checked reserve;
// the rest are unconditional deltas (releases and reversals, which must
// never be blocked by a full leg).
type LegOp struct {
    Leg         model.VoyageLeg
    Delta       model.SeatCounts
    Conditional bool
}

// PlanBookingSave returns the ordered leg operations for creating or
// updating a booking.  old is nil on create.  On update the stored
// claim is reversed unconditionally before the new claim is applied
// under the capacity condition, so moving a booking between dates or
// ships leaves no stale counters behind, and a booking that merely
// shrinks can never be rejected for capacity it is giving back.
func PlanBookingSave(old, b *model.Booking) []LegOp {
    var ops []LegOp
    if old != nil {
        oldOut, oldIn := old.Legs()
        ops = append(ops,
            LegOp{Leg: oldOut, Delta: old.Seats.Negate()},
            LegOp{Leg: oldIn, Delta: old.Seats.Negate()},
        )
    }
    out, in := b.Legs()
    ops = append(ops,
        LegOp{Leg: out, Delta: b.Seats, Conditional: true},
        LegOp{Leg: in, Delta: b.Seats, Conditional: true},
    )
    return ops
}

// PlanBookingDelete returns the leg operations that release a deleted
// booking's claim on both legs.
func PlanBookingDelete(b *model.Booking) []LegOp {
    out, in := b.Legs()
    return []LegOp{
        {Leg: out, Delta: b.Seats.Negate()},
        {Leg: in, Delta: b.Seats.Negate()},
    }
}

// FitsWithinCapacity is the admission rule shared by the availability
// check and the conditional reserve: every class with a non-zero delta
// must satisfy max − (reserved + blocked + delta) ≥ 0.  Classes the
// delta does not touch are ignored, so an existing shortage in one
// class never blocks a claim made purely in the others.
func FitsWithinCapacity(max, reserved, blocked, delta model.SeatCounts) bool {
    for _, c := range []struct{ max, reserved, blocked, delta int }{
        {max.Economy, reserved.Economy, blocked.Economy, delta.Economy},
        {max.Business, reserved.Business, blocked.Business, delta.Business},
        {max.First, reserved.First, blocked.First, delta.First},
    } {
        if c.delta == 0 {
            continue
        }
        if c.max-(c.reserved+c.blocked+c.delta) < 0 {
            return false
        }
    }
    return true
}

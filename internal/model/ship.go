package model

import "time"

// Direction identifies which half of a voyage a seat claim applies to.
// Every booking claims seats on exactly two legs: the outbound leg on
// its departure date and the inbound leg on its arrival date.
type Direction string

const (
    DirectionOutbound Direction = "outbound" // departure leg
    DirectionInbound  Direction = "inbound"  // arrival leg
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
    return d == DirectionOutbound || d == DirectionInbound
}

// SeatClass names one of the three fare classes sold on every voyage.
type SeatClass string

const (
    ClassEconomy  SeatClass = "economy"
    ClassBusiness SeatClass = "business"
    ClassFirst    SeatClass = "first"
)

// Valid reports whether c is a known fare class.
func (c SeatClass) Valid() bool {
    return c == ClassEconomy || c == ClassBusiness || c == ClassFirst
}

// SeatCounts carries one integer per fare class.  It is used for
// capacities, reserved sums, blocked counters and deltas alike.
type SeatCounts struct {
    Economy  int `json:"economy"`
    Business int `json:"business"`
    First    int `json:"first"`
}

// ForClass returns the count for the given fare class.  Unknown classes
// yield zero.
func (s SeatCounts) ForClass(c SeatClass) int {
    switch c {
    case ClassEconomy:
        return s.Economy
    case ClassBusiness:
        return s.Business
    case ClassFirst:
        return s.First
    }
    return 0
}

// Add returns the per-class sum of s and o.
func (s SeatCounts) Add(o SeatCounts) SeatCounts {
    return SeatCounts{
        Economy:  s.Economy + o.Economy,
        Business: s.Business + o.Business,
        First:    s.First + o.First,
    }
}

// Negate returns s with every class negated.  Used when reversing a
// booking's inventory contribution.
func (s SeatCounts) Negate() SeatCounts {
    return SeatCounts{Economy: -s.Economy, Business: -s.Business, First: -s.First}
}

// Total returns the sum across all three classes.
func (s SeatCounts) Total() int {
    return s.Economy + s.Business + s.First
}

// IsZero reports whether all three classes are zero.
func (s SeatCounts) IsZero() bool {
    return s.Economy == 0 && s.Business == 0 && s.First == 0
}

// NonNegative reports whether no class is below zero.
func (s SeatCounts) NonNegative() bool {
    return s.Economy >= 0 && s.Business >= 0 && s.First >= 0
}

// VoyageLeg identifies one unit of bookable capacity: a ship on a day,
// sailing in one direction.  The time-of-day component of Date must be
// discarded with DayOf before a leg is used as a map key.
type VoyageLeg struct {
    ShipID    uint64
    Date      time.Time
    Direction Direction
}

// DayOf truncates t to midnight UTC.  All inventory records are keyed
// at day granularity.
func DayOf(t time.Time) time.Time {
    t = t.UTC()
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Ship is the capacity catalog owner: per-direction, per-class maximum
// seat counts plus a few administrative flags.  Capacities change only
// through administrative edits.
type Ship struct {
    ID              uint64     `json:"id"`
    Name            string     `json:"name"`
    HasReservations bool       `json:"has_reservations"`
    IsActive        bool       `json:"is_active"`
    OutboundSeats   SeatCounts `json:"outbound_seats"`
    InboundSeats    SeatCounts `json:"inbound_seats"`
    CreatedAt       time.Time  `json:"created_at"`
    UpdatedAt       time.Time  `json:"updated_at"`
}

// Capacity returns the maximum seat counts for one direction.
func (s *Ship) Capacity(d Direction) SeatCounts {
    if d == DirectionInbound {
        return s.InboundSeats
    }
    return s.OutboundSeats
}

// OutboundTotal returns the total outbound capacity across classes.
func (s *Ship) OutboundTotal() int { return s.OutboundSeats.Total() }

// InboundTotal returns the total inbound capacity across classes.
func (s *Ship) InboundTotal() int { return s.InboundSeats.Total() }

package model

import "time"

// SeatInfo holds the six counters tracked per voyage leg.  Reserved
// counters are derived from the booking ledger; blocked counters are
// authoritative administrative input.  Remaining seats are always
// computed, never stored.
type SeatInfo struct {
    EconomyReserved  int `json:"economy_reserved"`
    BusinessReserved int `json:"business_reserved"`
    FirstReserved    int `json:"first_reserved"`
    EconomyBlocked   int `json:"economy_blocked"`
    BusinessBlocked  int `json:"business_blocked"`
    FirstBlocked     int `json:"first_blocked"`
}

// Reserved returns the reserved counters as SeatCounts.
func (s SeatInfo) Reserved() SeatCounts {
    return SeatCounts{Economy: s.EconomyReserved, Business: s.BusinessReserved, First: s.FirstReserved}
}

// Blocked returns the blocked counters as SeatCounts.
func (s SeatInfo) Blocked() SeatCounts {
    return SeatCounts{Economy: s.EconomyBlocked, Business: s.BusinessBlocked, First: s.FirstBlocked}
}

// SetReserved overwrites the reserved counters from SeatCounts.
func (s *SeatInfo) SetReserved(c SeatCounts) {
    s.EconomyReserved = c.Economy
    s.BusinessReserved = c.Business
    s.FirstReserved = c.First
}

// SetBlocked overwrites the blocked counters, clamping each class at
// zero.  Blocked counts are administrative input and never negative.
func (s *SeatInfo) SetBlocked(c SeatCounts) {
    s.EconomyBlocked = max(0, c.Economy)
    s.BusinessBlocked = max(0, c.Business)
    s.FirstBlocked = max(0, c.First)
}

// Remaining computes blocked − reserved per class.  A negative value is
// a shortage signal, not an error: the read path surfaces it so the
// operator can see the overbooking.
func (s SeatInfo) Remaining() SeatCounts {
    return SeatCounts{
        Economy:  s.EconomyBlocked - s.EconomyReserved,
        Business: s.BusinessBlocked - s.BusinessReserved,
        First:    s.FirstBlocked - s.FirstReserved,
    }
}

// Shortage reports whether any class has more seats reserved than
// blocked for it.
func (s SeatInfo) Shortage() bool {
    r := s.Remaining()
    return r.Economy < 0 || r.Business < 0 || r.First < 0
}

// HasActivity reports whether any counter is non-zero.  The status view
// hides rows with no activity.
func (s SeatInfo) HasActivity() bool {
    return !s.Reserved().IsZero() || !s.Blocked().IsZero()
}

// SeatStatus is the persisted inventory record for one (ship, date)
// pair, holding one SeatInfo per direction.  Exactly one record exists
// per pair; records are created lazily the first time a booking or a
// block touches the pair.
type SeatStatus struct {
    ID       uint64    `json:"id"`
    ShipID   uint64    `json:"ship_id"`
    ShipName string    `json:"ship_name,omitempty"`
    Date     time.Time `json:"date"`
    Outbound SeatInfo  `json:"outbound"`
    Inbound  SeatInfo  `json:"inbound"`

    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}

// Info returns a pointer to the SeatInfo for the given direction.
func (ss *SeatStatus) Info(d Direction) *SeatInfo {
    if d == DirectionInbound {
        return &ss.Inbound
    }
    return &ss.Outbound
}

// HasActivity reports whether either direction carries any reserved or
// blocked seats.
func (ss *SeatStatus) HasActivity() bool {
    return ss.Outbound.HasActivity() || ss.Inbound.HasActivity()
}

// Shortage reports whether either direction is overbooked relative to
// its blocked allocation.
func (ss *SeatStatus) Shortage() bool {
    return ss.Outbound.Shortage() || ss.Inbound.Shortage()
}

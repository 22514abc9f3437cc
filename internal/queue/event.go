// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

import "github.com/wontwopunch/shiptour-v2/internal/model"

// Booking event actions.
const (
    ActionCreated = "created"
    ActionUpdated = "updated"
    ActionDeleted = "deleted"
)

// BookingSavedEvent is published after a booking ledger write commits.
// It carries enough for downstream consumers to audit seat movements
// without querying the primary database.
type BookingSavedEvent struct {
    BookingID     uint64           `json:"booking_id"`
    Action        string           `json:"action"`
    ShipID        uint64           `json:"ship_id"`
    ShipName      string           `json:"ship_name"`
    DepartureDate string           `json:"departure_date"`
    ArrivalDate   string           `json:"arrival_date"`
    Seats         model.SeatCounts `json:"seats"`
    ReservedBy    string           `json:"reserved_by"`
    SavedAt       string           `json:"saved_at"`
}

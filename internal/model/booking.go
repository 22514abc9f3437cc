package model

import (
    "errors"
    "math"
    "time"
)

// Booking statuses.  A booking contributes to inventory for its whole
// lifetime; the status is bookkeeping for the operator, not a gate on
// seat accounting.
const (
    BookingActive    = "active"
    BookingCancelled = "cancelled"
    BookingCompleted = "completed"
)

// Validation errors returned by Booking.Validate.  Handlers translate
// these into 422 responses before any ledger or store mutation.
var (
    ErrMissingShip      = errors.New("booking requires a ship reference")
    ErrNegativeSeats    = errors.New("seat counts must not be negative")
    ErrUnknownStatus    = errors.New("unknown booking status")
    ErrUnknownHighlight = errors.New("unknown highlight field")
)

// Highlights tracks which money cells the operator has flagged on the
// booking sheet.  Purely presentational state carried with the record.
type Highlights struct {
    TotalPrice bool `json:"total_price"`
    Deposit    bool `json:"deposit"`
    Balance    bool `json:"balance"`
}

// Toggle flips the named highlight flag and returns its new value.
func (h *Highlights) Toggle(field string) (bool, error) {
    switch field {
    case "total_price":
        h.TotalPrice = !h.TotalPrice
        return h.TotalPrice, nil
    case "deposit":
        h.Deposit = !h.Deposit
        return h.Deposit, nil
    case "balance":
        h.Balance = !h.Balance
        return h.Balance, nil
    }
    return false, ErrUnknownHighlight
}

// Booking is one row of the booking ledger.  Seats is the per-class
// seat claim consumed symmetrically on both legs: the outbound leg at
// DepartureDate and the inbound leg at ArrivalDate.  Balance,
// TotalSettlement, Profit and TotalSeats are derived on every save and
// never edited independently.
type Booking struct {
    ID       uint64 `json:"id"`
    ShipID   uint64 `json:"ship_id"`
    ShipName string `json:"ship_name,omitempty"`

    ListStatus    string    `json:"list_status"`
    ContractDate  time.Time `json:"contract_date"`
    DepartureDate time.Time `json:"departure_date"`
    ArrivalDate   time.Time `json:"arrival_date"`
    ReservedBy    string    `json:"reserved_by"`
    ReservedBy2   string    `json:"reserved_by2"`
    Contact       string    `json:"contact"`
    Product       string    `json:"product"`

    TotalSeats int        `json:"total_seats"`
    Seats      SeatCounts `json:"seats"`

    TourDate    *time.Time `json:"tour_date,omitempty"`
    TourPeople  int        `json:"tour_people"`
    TourTime    string     `json:"tour_time"`
    TourDetails string     `json:"tour_details"`

    TotalPrice float64 `json:"total_price"`
    Deposit    float64 `json:"deposit"`
    Balance    int64   `json:"balance"`

    RentalCar     string `json:"rental_car"`
    Accommodation string `json:"accommodation"`
    Others        string `json:"others"`

    DepartureFee    float64 `json:"departure_fee"`
    ArrivalFee      float64 `json:"arrival_fee"`
    TourFee         float64 `json:"tour_fee"`
    RestaurantFee   float64 `json:"restaurant_fee"`
    EventFee        float64 `json:"event_fee"`
    OtherFee        float64 `json:"other_fee"`
    Refund          float64 `json:"refund"`
    TotalSettlement int64   `json:"total_settlement"`
    Profit          int64   `json:"profit"`

    Highlights Highlights `json:"highlights"`
    Status     string     `json:"status"`

    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}

// ComputeDerived recalculates every derived field from its inputs.
// Called on every save so the stored values never drift from the
// arithmetic contract.  Fractions are floored, matching the ledger's
// historical behaviour.
func (b *Booking) ComputeDerived() {
    b.TotalSeats = b.Seats.Total()
    b.Balance = int64(math.Floor(b.TotalPrice - b.Deposit))
    b.TotalSettlement = int64(math.Floor(
        b.DepartureFee + b.ArrivalFee + b.TourFee +
            b.RestaurantFee + b.EventFee + b.OtherFee + b.Refund))
    b.Profit = int64(math.Floor(b.TotalPrice - float64(b.TotalSettlement)))
}

// Validate checks the invariants that must hold before the booking may
// touch the ledger or the inventory store.  An arrival date before the
// departure date is accepted; the two legs are keyed independently.
func (b *Booking) Validate() error {
    if b.ShipID == 0 {
        return ErrMissingShip
    }
    if !b.Seats.NonNegative() || b.TourPeople < 0 {
        return ErrNegativeSeats
    }
    if b.Status == "" {
        b.Status = BookingActive
    }
    switch b.Status {
    case BookingActive, BookingCancelled, BookingCompleted:
    default:
        return ErrUnknownStatus
    }
    return nil
}

// Legs returns the two voyage legs this booking claims seats on, with
// dates truncated to day granularity.
func (b *Booking) Legs() (outbound, inbound VoyageLeg) {
    outbound = VoyageLeg{ShipID: b.ShipID, Date: DayOf(b.DepartureDate), Direction: DirectionOutbound}
    inbound = VoyageLeg{ShipID: b.ShipID, Date: DayOf(b.ArrivalDate), Direction: DirectionInbound}
    return outbound, inbound
}

// ClaimsSeats reports whether the booking holds any seats at all.
// Zero-seat bookings exist (tour-only records) and contribute nothing
// to inventory.
func (b *Booking) ClaimsSeats() bool {
    return !b.Seats.IsZero()
}

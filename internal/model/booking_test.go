package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestComputeDerived(t *testing.T) {
    b := Booking{
        Seats:      SeatCounts{Economy: 3, Business: 2, First: 1},
        TotalPrice: 1000.70,
        Deposit:    300.50,
        DepartureFee: 100.25, ArrivalFee: 50, TourFee: 75.50,
        RestaurantFee: 20, EventFee: 10, OtherFee: 5, Refund: 30,
    }
    b.ComputeDerived()

    assert.Equal(t, 6, b.TotalSeats)
    assert.Equal(t, int64(700), b.Balance, "balance floors the fraction")
    assert.Equal(t, int64(290), b.TotalSettlement, "settlement floors the summed fees")
    assert.Equal(t, int64(710), b.Profit)
}

func TestComputeDerivedRecomputesStaleValues(t *testing.T) {
    b := Booking{
        Seats:           SeatCounts{Economy: 2},
        TotalPrice:      500,
        Deposit:         100,
        TotalSeats:      999,
        Balance:         -1,
        TotalSettlement: -1,
        Profit:          -1,
    }
    b.ComputeDerived()
    assert.Equal(t, 2, b.TotalSeats)
    assert.Equal(t, int64(400), b.Balance)
    assert.Equal(t, int64(0), b.TotalSettlement)
    assert.Equal(t, int64(500), b.Profit)
}

func TestValidate(t *testing.T) {
    base := func() Booking {
        return Booking{ShipID: 1, Seats: SeatCounts{Economy: 1}}
    }

    b := base()
    require.NoError(t, b.Validate())
    assert.Equal(t, BookingActive, b.Status, "empty status defaults to active")

    b = base()
    b.ShipID = 0
    assert.ErrorIs(t, b.Validate(), ErrMissingShip)

    b = base()
    b.Seats.Business = -1
    assert.ErrorIs(t, b.Validate(), ErrNegativeSeats)

    b = base()
    b.TourPeople = -3
    assert.ErrorIs(t, b.Validate(), ErrNegativeSeats)

    b = base()
    b.Status = "pending"
    assert.ErrorIs(t, b.Validate(), ErrUnknownStatus)

    b = base()
    b.Status = BookingCancelled
    assert.NoError(t, b.Validate())
}

func TestValidateAcceptsArrivalBeforeDeparture(t *testing.T) {
    // The two legs are keyed independently; a data-entry order like
    // this is stored as-is, not rejected.
    b := Booking{
        ShipID:        1,
        Seats:         SeatCounts{Economy: 1},
        DepartureDate: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
        ArrivalDate:   time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC),
    }
    assert.NoError(t, b.Validate())
}

func TestLegsTruncateToDay(t *testing.T) {
    b := Booking{
        ShipID:        5,
        DepartureDate: time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC),
        ArrivalDate:   time.Date(2026, 6, 3, 9, 15, 0, 0, time.UTC),
    }
    outbound, inbound := b.Legs()

    assert.Equal(t, VoyageLeg{ShipID: 5, Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Direction: DirectionOutbound}, outbound)
    assert.Equal(t, VoyageLeg{ShipID: 5, Date: time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC), Direction: DirectionInbound}, inbound)
}

func TestClaimsSeats(t *testing.T) {
    b := Booking{Seats: SeatCounts{}}
    assert.False(t, b.ClaimsSeats(), "zero-seat tour-only records hold no inventory")
    b.Seats.First = 1
    assert.True(t, b.ClaimsSeats())
}

func TestHighlightsToggle(t *testing.T) {
    var h Highlights

    on, err := h.Toggle("deposit")
    require.NoError(t, err)
    assert.True(t, on)
    assert.True(t, h.Deposit)

    on, err = h.Toggle("deposit")
    require.NoError(t, err)
    assert.False(t, on)
    assert.False(t, h.Deposit)

    _, err = h.Toggle("profit")
    assert.ErrorIs(t, err, ErrUnknownHighlight)
}

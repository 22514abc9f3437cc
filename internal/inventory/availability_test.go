package inventory

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/wontwopunch/shiptour-v2/internal/model"
    "github.com/wontwopunch/shiptour-v2/internal/repository"
)

func availabilityFixture(t *testing.T) (*Engine, *fakeStore, time.Time) {
    t.Helper()
    store := newFakeStore()
    catalog := &fakeCatalog{ships: map[uint64]*model.Ship{
        1: {
            ID:            1,
            Name:          "Sunrise",
            OutboundSeats: model.SeatCounts{Economy: 10, Business: 4},
            InboundSeats:  model.SeatCounts{Economy: 8},
        },
    }}
    return newTestEngine(&fakeLedger{}, store, catalog), store, day(2026, 6, 1)
}

func TestCheckAvailabilityBoundary(t *testing.T) {
    ctx := context.Background()
    e, store, d := availabilityFixture(t)
    require.NoError(t, store.OverwriteReserved(ctx, 1, d, model.SeatCounts{Economy: 7}, model.SeatCounts{}))

    ok, err := e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassEconomy, 3)
    require.NoError(t, err)
    assert.True(t, ok, "exactly filling capacity is allowed")

    ok, err = e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassEconomy, 4)
    require.NoError(t, err)
    assert.False(t, ok, "one seat over capacity is rejected")
}

func TestCheckAvailabilityMissingRowMeansFree(t *testing.T) {
    ctx := context.Background()
    e, _, d := availabilityFixture(t)

    ok, err := e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassEconomy, 10)
    require.NoError(t, err)
    assert.True(t, ok)

    ok, err = e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassEconomy, 11)
    require.NoError(t, err)
    assert.False(t, ok)
}

func TestCheckAvailabilityBlockedReduces(t *testing.T) {
    ctx := context.Background()
    e, store, d := availabilityFixture(t)
    store.setBlocked(1, d, model.DirectionOutbound, model.SeatCounts{Economy: 6})

    ok, err := e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassEconomy, 4)
    require.NoError(t, err)
    assert.True(t, ok)

    ok, err = e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassEconomy, 5)
    require.NoError(t, err)
    assert.False(t, ok, "blocked seats count against capacity without a booking")
}

func TestCheckAvailabilityPerDirection(t *testing.T) {
    ctx := context.Background()
    e, store, d := availabilityFixture(t)
    require.NoError(t, store.OverwriteReserved(ctx, 1, d, model.SeatCounts{Economy: 10}, model.SeatCounts{}))

    // Outbound is full; inbound on the same date is untouched.
    ok, err := e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassEconomy, 1)
    require.NoError(t, err)
    assert.False(t, ok)

    ok, err = e.CheckAvailability(ctx, 1, d, model.DirectionInbound, model.ClassEconomy, 8)
    require.NoError(t, err)
    assert.True(t, ok)
}

func TestCheckAvailabilityPerClass(t *testing.T) {
    ctx := context.Background()
    e, store, d := availabilityFixture(t)
    require.NoError(t, store.OverwriteReserved(ctx, 1, d, model.SeatCounts{Economy: 10}, model.SeatCounts{}))

    // A full economy cabin says nothing about business.
    ok, err := e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassBusiness, 4)
    require.NoError(t, err)
    assert.True(t, ok)
}

func TestCheckAvailabilityShortageInOtherClass(t *testing.T) {
    ctx := context.Background()
    e, store, d := availabilityFixture(t)
    // Admin over-blocked economy past the hull; business is untouched
    // and must stay sellable.
    store.setBlocked(1, d, model.DirectionOutbound, model.SeatCounts{Economy: 15})

    ok, err := e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassBusiness, 4)
    require.NoError(t, err)
    assert.True(t, ok)

    ok, err = e.CheckAvailability(ctx, 1, d, model.DirectionOutbound, model.ClassEconomy, 1)
    require.NoError(t, err)
    assert.False(t, ok)
}

func TestCheckAvailabilityUnknownShip(t *testing.T) {
    e, _, d := availabilityFixture(t)
    _, err := e.CheckAvailability(context.Background(), 99, d, model.DirectionOutbound, model.ClassEconomy, 1)
    assert.ErrorIs(t, err, repository.ErrShipNotFound)
}

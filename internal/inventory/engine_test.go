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

// fakeLedger is an in-memory BookingSource.
type fakeLedger struct {
    bookings []model.Booking
}

func (f *fakeLedger) FindByLegs(_ context.Context, shipIDs []uint64, dates []time.Time) ([]model.Booking, error) {
    dateSet := make(map[time.Time]bool, len(dates))
    for _, d := range dates {
        dateSet[model.DayOf(d)] = true
    }
    shipSet := make(map[uint64]bool, len(shipIDs))
    for _, id := range shipIDs {
        shipSet[id] = true
    }
    var out []model.Booking
    for _, b := range f.bookings {
        if len(shipSet) > 0 && !shipSet[b.ShipID] {
            continue
        }
        if dateSet[model.DayOf(b.DepartureDate)] || dateSet[model.DayOf(b.ArrivalDate)] {
            out = append(out, b)
        }
    }
    return out, nil
}

func (f *fakeLedger) ListTouchingRange(_ context.Context, shipID uint64, from, to time.Time) ([]model.Booking, error) {
    inRange := func(t time.Time) bool {
        if from.IsZero() || to.IsZero() {
            return true
        }
        d := model.DayOf(t)
        return !d.Before(model.DayOf(from)) && d.Before(model.DayOf(to))
    }
    var out []model.Booking
    for _, b := range f.bookings {
        if shipID != 0 && b.ShipID != shipID {
            continue
        }
        if inRange(b.DepartureDate) || inRange(b.ArrivalDate) {
            out = append(out, b)
        }
    }
    return out, nil
}

func (f *fakeLedger) remove(id uint64) {
    kept := f.bookings[:0]
    for _, b := range f.bookings {
        if b.ID != id {
            kept = append(kept, b)
        }
    }
    f.bookings = kept
}

type statusKey struct {
    shipID uint64
    date   time.Time
}

// fakeStore is an in-memory StatusStore.
type fakeStore struct {
    rows   map[statusKey]*model.SeatStatus
    nextID uint64
}

func newFakeStore() *fakeStore {
    return &fakeStore{rows: make(map[statusKey]*model.SeatStatus)}
}

func (f *fakeStore) EnsureExists(_ context.Context, shipID uint64, date time.Time) error {
    key := statusKey{shipID, model.DayOf(date)}
    if _, ok := f.rows[key]; !ok {
        f.nextID++
        f.rows[key] = &model.SeatStatus{ID: f.nextID, ShipID: shipID, Date: key.date}
    }
    return nil
}

func (f *fakeStore) Get(_ context.Context, shipID uint64, date time.Time) (*model.SeatStatus, error) {
    ss, ok := f.rows[statusKey{shipID, model.DayOf(date)}]
    if !ok {
        return nil, repository.ErrStatusNotFound
    }
    cp := *ss
    return &cp, nil
}

func (f *fakeStore) ListByDates(_ context.Context, shipID uint64, dates []time.Time) ([]model.SeatStatus, error) {
    dateSet := make(map[time.Time]bool, len(dates))
    for _, d := range dates {
        dateSet[model.DayOf(d)] = true
    }
    var out []model.SeatStatus
    for key, ss := range f.rows {
        if !dateSet[key.date] {
            continue
        }
        if shipID != 0 && key.shipID != shipID {
            continue
        }
        out = append(out, *ss)
    }
    return out, nil
}

func (f *fakeStore) RangeQuery(_ context.Context, shipID uint64, from, to time.Time) ([]model.SeatStatus, error) {
    var out []model.SeatStatus
    for key, ss := range f.rows {
        if shipID != 0 && key.shipID != shipID {
            continue
        }
        if !from.IsZero() && key.date.Before(model.DayOf(from)) {
            continue
        }
        if !to.IsZero() && !key.date.Before(model.DayOf(to)) {
            continue
        }
        out = append(out, *ss)
    }
    return out, nil
}

func (f *fakeStore) OverwriteReserved(_ context.Context, shipID uint64, date time.Time, outbound, inbound model.SeatCounts) error {
    key := statusKey{shipID, model.DayOf(date)}
    ss, ok := f.rows[key]
    if !ok {
        f.nextID++
        ss = &model.SeatStatus{ID: f.nextID, ShipID: shipID, Date: key.date}
        f.rows[key] = ss
    }
    ss.Outbound.SetReserved(outbound)
    ss.Inbound.SetReserved(inbound)
    return nil
}

// setBlocked seeds administrative blocked counters directly.
func (f *fakeStore) setBlocked(shipID uint64, date time.Time, d model.Direction, blocked model.SeatCounts) {
    key := statusKey{shipID, model.DayOf(date)}
    ss, ok := f.rows[key]
    if !ok {
        f.nextID++
        ss = &model.SeatStatus{ID: f.nextID, ShipID: shipID, Date: key.date}
        f.rows[key] = ss
    }
    ss.Info(d).SetBlocked(blocked)
}

// fakeCatalog is an in-memory ShipSource.
type fakeCatalog struct {
    ships map[uint64]*model.Ship
}

func (f *fakeCatalog) GetByID(_ context.Context, id uint64) (*model.Ship, error) {
    ship, ok := f.ships[id]
    if !ok {
        return nil, repository.ErrShipNotFound
    }
    cp := *ship
    return &cp, nil
}

func day(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func booking(id, shipID uint64, dep, arr time.Time, seats model.SeatCounts) model.Booking {
    return model.Booking{
        ID:            id,
        ShipID:        shipID,
        DepartureDate: dep,
        ArrivalDate:   arr,
        Seats:         seats,
        Status:        model.BookingActive,
    }
}

func newTestEngine(ledger *fakeLedger, store *fakeStore, catalog *fakeCatalog) *Engine {
    if store == nil {
        store = newFakeStore()
    }
    if catalog == nil {
        catalog = &fakeCatalog{ships: map[uint64]*model.Ship{}}
    }
    return NewEngine(ledger, store, catalog)
}

func TestReconcileSumsBothLegs(t *testing.T) {
    dep, arr := day(2026, 6, 1), day(2026, 6, 3)
    ledger := &fakeLedger{bookings: []model.Booking{
        booking(1, 7, dep, arr, model.SeatCounts{Economy: 2, Business: 1}),
        booking(2, 7, dep, arr, model.SeatCounts{Economy: 3, First: 4}),
    }}
    e := newTestEngine(ledger, nil, nil)

    outLeg := model.VoyageLeg{ShipID: 7, Date: dep, Direction: model.DirectionOutbound}
    inLeg := model.VoyageLeg{ShipID: 7, Date: arr, Direction: model.DirectionInbound}
    got, err := e.Reconcile(context.Background(), []model.VoyageLeg{outLeg, inLeg})
    require.NoError(t, err)

    want := model.SeatCounts{Economy: 5, Business: 1, First: 4}
    assert.Equal(t, want, got[outLeg])
    assert.Equal(t, want, got[inLeg])
}

func TestReconcileZeroForUnclaimedLeg(t *testing.T) {
    ledger := &fakeLedger{}
    e := newTestEngine(ledger, nil, nil)

    leg := model.VoyageLeg{ShipID: 1, Date: day(2026, 1, 15), Direction: model.DirectionOutbound}
    got, err := e.Reconcile(context.Background(), []model.VoyageLeg{leg})
    require.NoError(t, err)
    counts, ok := got[leg]
    require.True(t, ok, "requested leg must appear in the result")
    assert.True(t, counts.IsZero())
}

func TestReconcileIdempotent(t *testing.T) {
    dep, arr := day(2026, 6, 1), day(2026, 6, 2)
    ledger := &fakeLedger{bookings: []model.Booking{
        booking(1, 3, dep, arr, model.SeatCounts{Economy: 9, Business: 2, First: 1}),
    }}
    e := newTestEngine(ledger, nil, nil)

    legs := []model.VoyageLeg{
        {ShipID: 3, Date: dep, Direction: model.DirectionOutbound},
        {ShipID: 3, Date: arr, Direction: model.DirectionInbound},
    }
    first, err := e.Reconcile(context.Background(), legs)
    require.NoError(t, err)
    second, err := e.Reconcile(context.Background(), legs)
    require.NoError(t, err)
    assert.Equal(t, first, second)
}

func TestReconcileSameDayRoundTrip(t *testing.T) {
    d := day(2026, 7, 10)
    ledger := &fakeLedger{bookings: []model.Booking{
        booking(1, 5, d, d, model.SeatCounts{Economy: 4}),
    }}
    e := newTestEngine(ledger, nil, nil)

    outLeg := model.VoyageLeg{ShipID: 5, Date: d, Direction: model.DirectionOutbound}
    inLeg := model.VoyageLeg{ShipID: 5, Date: d, Direction: model.DirectionInbound}
    got, err := e.Reconcile(context.Background(), []model.VoyageLeg{outLeg, inLeg})
    require.NoError(t, err)

    // Same-day round trip claims both directions on one date independently.
    assert.Equal(t, model.SeatCounts{Economy: 4}, got[outLeg])
    assert.Equal(t, model.SeatCounts{Economy: 4}, got[inLeg])
}

func TestStatusViewSurfacesShortage(t *testing.T) {
    dep, arr := day(2026, 6, 1), day(2026, 6, 2)
    ledger := &fakeLedger{bookings: []model.Booking{
        booking(1, 2, dep, arr, model.SeatCounts{Economy: 8}),
    }}
    store := newFakeStore()
    store.setBlocked(2, dep, model.DirectionOutbound, model.SeatCounts{Economy: 5})
    e := newTestEngine(ledger, store, nil)

    view, err := e.StatusView(context.Background(), 2, day(2026, 6, 1), day(2026, 7, 1))
    require.NoError(t, err)
    require.Len(t, view, 2)

    var depRow *model.SeatStatus
    for i := range view {
        if view[i].Date.Equal(dep) {
            depRow = &view[i]
        }
    }
    require.NotNil(t, depRow)
    assert.Equal(t, -3, depRow.Outbound.Remaining().Economy,
        "remaining below zero is a shortage signal, not an error")
    assert.True(t, depRow.Shortage())
}

func TestStatusViewDropsRowsWithoutActivity(t *testing.T) {
    dep, arr := day(2026, 6, 1), day(2026, 6, 2)
    ledger := &fakeLedger{bookings: []model.Booking{
        booking(1, 2, dep, arr, model.SeatCounts{Economy: 1}),
    }}
    store := newFakeStore()
    // An untouched row on another date must not show up in the view.
    require.NoError(t, store.EnsureExists(context.Background(), 2, day(2026, 6, 15)))
    e := newTestEngine(ledger, store, nil)

    view, err := e.StatusView(context.Background(), 2, day(2026, 6, 1), day(2026, 7, 1))
    require.NoError(t, err)
    for _, row := range view {
        assert.True(t, row.HasActivity())
    }
}

func TestStatusViewOverlayKeepsBlocked(t *testing.T) {
    dep, arr := day(2026, 6, 1), day(2026, 6, 2)
    ledger := &fakeLedger{bookings: []model.Booking{
        booking(1, 2, dep, arr, model.SeatCounts{Business: 3}),
    }}
    store := newFakeStore()
    store.setBlocked(2, dep, model.DirectionOutbound, model.SeatCounts{Business: 10})
    // Seed a drifted reserved counter; the view must not trust it.
    store.rows[statusKey{2, dep}].Outbound.SetReserved(model.SeatCounts{Business: 99})
    e := newTestEngine(ledger, store, nil)

    view, err := e.StatusView(context.Background(), 2, day(2026, 6, 1), day(2026, 7, 1))
    require.NoError(t, err)

    var depRow *model.SeatStatus
    for i := range view {
        if view[i].Date.Equal(dep) {
            depRow = &view[i]
        }
    }
    require.NotNil(t, depRow)
    assert.Equal(t, 3, depRow.Outbound.BusinessReserved, "reserved comes from the ledger")
    assert.Equal(t, 10, depRow.Outbound.BusinessBlocked, "blocked passes through untouched")
}

func TestResyncHealsDrift(t *testing.T) {
    ctx := context.Background()
    dep, arr := day(2026, 6, 1), day(2026, 6, 2)
    ledger := &fakeLedger{bookings: []model.Booking{
        booking(1, 4, dep, arr, model.SeatCounts{Economy: 6}),
    }}
    store := newFakeStore()
    // Drifted counters: too high on the booked date, stale on a date no
    // booking touches anymore.
    require.NoError(t, store.OverwriteReserved(ctx, 4, dep, model.SeatCounts{Economy: 11}, model.SeatCounts{}))
    require.NoError(t, store.OverwriteReserved(ctx, 4, day(2026, 6, 20), model.SeatCounts{Economy: 7}, model.SeatCounts{Economy: 7}))
    e := newTestEngine(ledger, store, nil)

    n, err := e.Resync(ctx, 4, day(2026, 6, 1), day(2026, 7, 1))
    require.NoError(t, err)
    assert.Equal(t, 3, n)

    healed, err := store.Get(ctx, 4, dep)
    require.NoError(t, err)
    assert.Equal(t, 6, healed.Outbound.EconomyReserved)

    stale, err := store.Get(ctx, 4, day(2026, 6, 20))
    require.NoError(t, err)
    assert.True(t, stale.Outbound.Reserved().IsZero(), "stale rows are zeroed")
    assert.True(t, stale.Inbound.Reserved().IsZero())
}

func TestResyncIdempotent(t *testing.T) {
    ctx := context.Background()
    dep, arr := day(2026, 6, 1), day(2026, 6, 2)
    ledger := &fakeLedger{bookings: []model.Booking{
        booking(1, 4, dep, arr, model.SeatCounts{Economy: 2, Business: 2, First: 2}),
    }}
    store := newFakeStore()
    e := newTestEngine(ledger, store, nil)

    _, err := e.Resync(ctx, 4, day(2026, 6, 1), day(2026, 7, 1))
    require.NoError(t, err)
    first, err := store.Get(ctx, 4, dep)
    require.NoError(t, err)

    _, err = e.Resync(ctx, 4, day(2026, 6, 1), day(2026, 7, 1))
    require.NoError(t, err)
    second, err := store.Get(ctx, 4, dep)
    require.NoError(t, err)
    assert.Equal(t, first, second)
}

func TestDeletedBookingFreesSeatsAfterResync(t *testing.T) {
    ctx := context.Background()
    dep, arr := day(2026, 6, 10), day(2026, 6, 12)
    ledger := &fakeLedger{bookings: []model.Booking{
        booking(1, 9, dep, arr, model.SeatCounts{Economy: 20}),
        booking(2, 9, dep, arr, model.SeatCounts{Economy: 25}),
    }}
    store := newFakeStore()
    catalog := &fakeCatalog{ships: map[uint64]*model.Ship{
        9: {ID: 9, Name: "Dokdo Star", OutboundSeats: model.SeatCounts{Economy: 50}},
    }}
    e := newTestEngine(ledger, store, catalog)

    _, err := e.Resync(ctx, 9, day(2026, 6, 1), day(2026, 7, 1))
    require.NoError(t, err)

    ok, err := e.CheckAvailability(ctx, 9, dep, model.DirectionOutbound, model.ClassEconomy, 6)
    require.NoError(t, err)
    assert.False(t, ok, "45 of 50 taken leaves no room for 6")

    ledger.remove(1)
    _, err = e.Resync(ctx, 9, day(2026, 6, 1), day(2026, 7, 1))
    require.NoError(t, err)

    ok, err = e.CheckAvailability(ctx, 9, dep, model.DirectionOutbound, model.ClassEconomy, 6)
    require.NoError(t, err)
    assert.True(t, ok, "deleting a booking returns its seats")
}

func TestExportRowsIncludesInactive(t *testing.T) {
    ctx := context.Background()
    store := newFakeStore()
    require.NoError(t, store.EnsureExists(ctx, 3, day(2026, 6, 5)))
    e := newTestEngine(&fakeLedger{}, store, nil)

    rows, err := e.ExportRows(ctx, 3, day(2026, 6, 1), day(2026, 7, 1))
    require.NoError(t, err)
    assert.Len(t, rows, 1, "export keeps rows the operator view hides")
}

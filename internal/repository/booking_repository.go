package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/wontwopunch/shiptour-v2/internal/model"
)

// BookingRepo provides CRUD operations for the booking ledger.  The
// ledger is the source of truth for reserved seats: the inventory
// engine derives per-leg counters by summing over these rows, so every
// mutation here flows through a transaction shared with the seat
// status store.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingFilter narrows List and export queries.  Zero values disable
// a criterion.  Month selects bookings whose departure date falls in
// that calendar month; BookerName matches as a case-insensitive
// substring of reserved_by.
type BookingFilter struct {
    ShipID     uint64
    Month      time.Time
    BookerName string
}

const bookingColumns = `b.id, b.ship_id, b.list_status, b.contract_date,
    b.departure_date, b.arrival_date, b.reserved_by, b.reserved_by2,
    b.contact, b.product, b.total_seats,
    b.economy_seats, b.business_seats, b.first_seats,
    b.tour_date, b.tour_people, b.tour_time, b.tour_details,
    b.total_price, b.deposit, b.balance,
    b.rental_car, b.accommodation, b.others,
    b.departure_fee, b.arrival_fee, b.tour_fee, b.restaurant_fee,
    b.event_fee, b.other_fee, b.refund, b.total_settlement, b.profit,
    b.hl_total_price, b.hl_deposit, b.hl_balance,
    b.status, b.created_at, b.updated_at`

func scanBooking(row interface{ Scan(...any) error }, withShipName bool) (*model.Booking, error) {
    var b model.Booking
    var tourDate sql.NullTime
    dest := []any{
        &b.ID, &b.ShipID, &b.ListStatus, &b.ContractDate,
        &b.DepartureDate, &b.ArrivalDate, &b.ReservedBy, &b.ReservedBy2,
        &b.Contact, &b.Product, &b.TotalSeats,
        &b.Seats.Economy, &b.Seats.Business, &b.Seats.First,
        &tourDate, &b.TourPeople, &b.TourTime, &b.TourDetails,
        &b.TotalPrice, &b.Deposit, &b.Balance,
        &b.RentalCar, &b.Accommodation, &b.Others,
        &b.DepartureFee, &b.ArrivalFee, &b.TourFee, &b.RestaurantFee,
        &b.EventFee, &b.OtherFee, &b.Refund, &b.TotalSettlement, &b.Profit,
        &b.Highlights.TotalPrice, &b.Highlights.Deposit, &b.Highlights.Balance,
        &b.Status, &b.CreatedAt, &b.UpdatedAt,
    }
    if withShipName {
        dest = append(dest, &b.ShipName)
    }
    if err := row.Scan(dest...); err != nil {
        return nil, err
    }
    if tourDate.Valid {
        t := tourDate.Time
        b.TourDate = &t
    }
    return &b, nil
}

// List returns bookings matching the filter, joined with their ship
// name, ordered by departure date then arrival date.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
    query := `SELECT ` + bookingColumns + `, s.name
              FROM bookings b JOIN ships s ON s.id = b.ship_id`
    var conds []string
    var args []any
    if f.ShipID != 0 {
        conds = append(conds, "b.ship_id = ?")
        args = append(args, f.ShipID)
    }
    if !f.Month.IsZero() {
        from := time.Date(f.Month.Year(), f.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
        conds = append(conds, "b.departure_date >= ? AND b.departure_date < ?")
        args = append(args, from, from.AddDate(0, 1, 0))
    }
    if f.BookerName != "" {
        conds = append(conds, "b.reserved_by LIKE ?")
        args = append(args, "%"+f.BookerName+"%")
    }
    if len(conds) > 0 {
        query += " WHERE " + strings.Join(conds, " AND ")
    }
    query += " ORDER BY b.departure_date, b.arrival_date"
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    bookings := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows, true)
        if err != nil {
            return nil, err
        }
        bookings = append(bookings, *b)
    }
    return bookings, rows.Err()
}

// GetByID returns one booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+bookingColumns+`, s.name
         FROM bookings b JOIN ships s ON s.id = b.ship_id
         WHERE b.id = ?`, id)
    b, err := scanBooking(row, true)
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// GetByIDTx loads a booking inside a transaction with a row lock so
// that update and delete can reverse its old inventory contribution
// without racing another writer on the same booking.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
    row := tx.QueryRowContext(ctx,
        `SELECT `+bookingColumns+`
         FROM bookings b WHERE b.id = ? FOR UPDATE`, id)
    b, err := scanBooking(row, false)
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// FindByLegs returns bookings whose departure or arrival date is in
// dates and whose ship is in shipIDs.  An empty shipIDs slice means
// all ships.  This is the reconciliation engine's ledger scan.
func (r *BookingRepo) FindByLegs(ctx context.Context, shipIDs []uint64, dates []time.Time) ([]model.Booking, error) {
    if len(dates) == 0 {
        return []model.Booking{}, nil
    }
    datePh := make([]string, 0, len(dates))
    args := make([]any, 0, len(dates)*2+len(shipIDs))
    for _, d := range dates {
        datePh = append(datePh, "?")
        args = append(args, model.DayOf(d))
    }
    in := strings.Join(datePh, ",")
    // Dates appear twice: once for the departure leg, once for arrival.
    query := `SELECT ` + bookingColumns + `
              FROM bookings b
              WHERE (b.departure_date IN (` + in + `) OR b.arrival_date IN (` + in + `))`
    doubled := make([]any, 0, len(args)*2)
    doubled = append(doubled, args...)
    doubled = append(doubled, args...)
    args = doubled
    if len(shipIDs) > 0 {
        shipPh := make([]string, 0, len(shipIDs))
        for _, id := range shipIDs {
            shipPh = append(shipPh, "?")
            args = append(args, id)
        }
        query += ` AND b.ship_id IN (` + strings.Join(shipPh, ",") + `)`
    }
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    bookings := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows, false)
        if err != nil {
            return nil, err
        }
        bookings = append(bookings, *b)
    }
    return bookings, rows.Err()
}

// ListTouchingRange returns bookings whose departure or arrival date
// falls in [from, to), optionally restricted to one ship.  Zero from
// and to disable the date bound.  The status view and the resync both
// start from this query.
func (r *BookingRepo) ListTouchingRange(ctx context.Context, shipID uint64, from, to time.Time) ([]model.Booking, error) {
    query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE 1=1`
    var args []any
    if shipID != 0 {
        query += " AND b.ship_id = ?"
        args = append(args, shipID)
    }
    if !from.IsZero() && !to.IsZero() {
        query += ` AND ((b.departure_date >= ? AND b.departure_date < ?)
                     OR (b.arrival_date >= ? AND b.arrival_date < ?))`
        f, t := model.DayOf(from), model.DayOf(to)
        args = append(args, f, t, f, t)
    }
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    bookings := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows, false)
        if err != nil {
            return nil, err
        }
        bookings = append(bookings, *b)
    }
    return bookings, rows.Err()
}

// CreateTx inserts a new booking within the provided transaction and
// populates the generated id.  Derived fields must already be computed
// via ComputeDerived; this method stores what it is given.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO bookings (
            ship_id, list_status, contract_date, departure_date, arrival_date,
            reserved_by, reserved_by2, contact, product, total_seats,
            economy_seats, business_seats, first_seats,
            tour_date, tour_people, tour_time, tour_details,
            total_price, deposit, balance,
            rental_car, accommodation, others,
            departure_fee, arrival_fee, tour_fee, restaurant_fee,
            event_fee, other_fee, refund, total_settlement, profit,
            hl_total_price, hl_deposit, hl_balance, status
        ) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
        bookingArgs(b)...)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// UpdateTx overwrites every mutable field of an existing booking
// within the provided transaction.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE bookings SET
            ship_id = ?, list_status = ?, contract_date = ?,
            departure_date = ?, arrival_date = ?,
            reserved_by = ?, reserved_by2 = ?, contact = ?, product = ?,
            total_seats = ?, economy_seats = ?, business_seats = ?, first_seats = ?,
            tour_date = ?, tour_people = ?, tour_time = ?, tour_details = ?,
            total_price = ?, deposit = ?, balance = ?,
            rental_car = ?, accommodation = ?, others = ?,
            departure_fee = ?, arrival_fee = ?, tour_fee = ?, restaurant_fee = ?,
            event_fee = ?, other_fee = ?, refund = ?, total_settlement = ?, profit = ?,
            hl_total_price = ?, hl_deposit = ?, hl_balance = ?, status = ?
         WHERE id = ?`,
        append(bookingArgs(b), b.ID)...)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // Zero rows may mean a no-op update; verify existence.
        var exists bool
        if err := tx.QueryRowContext(ctx,
            `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)`, b.ID).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return ErrBookingNotFound
        }
    }
    return nil
}

// DeleteTx removes a booking within the provided transaction.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrBookingNotFound
    }
    return nil
}

// SetHighlights stores the highlight flags for one booking without
// touching any other field.
func (r *BookingRepo) SetHighlights(ctx context.Context, id uint64, h model.Highlights) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE bookings SET hl_total_price = ?, hl_deposit = ?, hl_balance = ? WHERE id = ?`,
        h.TotalPrice, h.Deposit, h.Balance, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        var exists bool
        if err := r.db.QueryRowContext(ctx,
            `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)`, id).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return ErrBookingNotFound
        }
    }
    return nil
}

func bookingArgs(b *model.Booking) []any {
    var tourDate any
    if b.TourDate != nil {
        tourDate = model.DayOf(*b.TourDate)
    }
    return []any{
        b.ShipID, b.ListStatus, model.DayOf(b.ContractDate),
        model.DayOf(b.DepartureDate), model.DayOf(b.ArrivalDate),
        b.ReservedBy, b.ReservedBy2, b.Contact, b.Product, b.TotalSeats,
        b.Seats.Economy, b.Seats.Business, b.Seats.First,
        tourDate, b.TourPeople, b.TourTime, b.TourDetails,
        b.TotalPrice, b.Deposit, b.Balance,
        b.RentalCar, b.Accommodation, b.Others,
        b.DepartureFee, b.ArrivalFee, b.TourFee, b.RestaurantFee,
        b.EventFee, b.OtherFee, b.Refund, b.TotalSettlement, b.Profit,
        b.Highlights.TotalPrice, b.Highlights.Deposit, b.Highlights.Balance,
        b.Status,
    }
}

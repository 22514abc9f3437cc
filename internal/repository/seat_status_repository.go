package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/wontwopunch/shiptour-v2/internal/model"
)

// SeatStatusRepo persists the per-(ship, date) inventory records: six
// reserved counters derived from the booking ledger and six blocked
// counters set by administrators.  Exactly one row exists per pair,
// enforced by a unique key on (ship_id, date); rows are created lazily
// the first time a booking or block touches the pair.
//
// Reserved counters are a cache of what a full ledger reconciliation
// would compute.  They are maintained incrementally by
// ApplyReservationDeltaTx and ReserveWithinCapacityTx on booking
// mutations, and can be overwritten wholesale by OverwriteReserved
// when drift is suspected.
type SeatStatusRepo struct {
    db *sql.DB
}

// NewSeatStatusRepo returns a new SeatStatusRepo bound to the given
// database.
func NewSeatStatusRepo(db *sql.DB) *SeatStatusRepo { return &SeatStatusRepo{db: db} }

const statusColumns = `ss.id, ss.ship_id, ss.date,
    ss.out_economy_reserved, ss.out_business_reserved, ss.out_first_reserved,
    ss.out_economy_blocked, ss.out_business_blocked, ss.out_first_blocked,
    ss.in_economy_reserved, ss.in_business_reserved, ss.in_first_reserved,
    ss.in_economy_blocked, ss.in_business_blocked, ss.in_first_blocked,
    ss.created_at, ss.updated_at`

func scanStatus(row interface{ Scan(...any) error }, withShipName bool) (*model.SeatStatus, error) {
    var ss model.SeatStatus
    dest := []any{
        &ss.ID, &ss.ShipID, &ss.Date,
        &ss.Outbound.EconomyReserved, &ss.Outbound.BusinessReserved, &ss.Outbound.FirstReserved,
        &ss.Outbound.EconomyBlocked, &ss.Outbound.BusinessBlocked, &ss.Outbound.FirstBlocked,
        &ss.Inbound.EconomyReserved, &ss.Inbound.BusinessReserved, &ss.Inbound.FirstReserved,
        &ss.Inbound.EconomyBlocked, &ss.Inbound.BusinessBlocked, &ss.Inbound.FirstBlocked,
        &ss.CreatedAt, &ss.UpdatedAt,
    }
    if withShipName {
        dest = append(dest, &ss.ShipName)
    }
    if err := row.Scan(dest...); err != nil {
        return nil, err
    }
    return &ss, nil
}

// colPrefix maps a direction to its column prefix.
func colPrefix(d model.Direction) string {
    if d == model.DirectionInbound {
        return "in"
    }
    return "out"
}

// EnsureExists creates the (ship, date) row with zero counters when it
// is missing.  A missing record means "no capacity blocked yet", so
// lazy creation is not an error path.
func (r *SeatStatusRepo) EnsureExists(ctx context.Context, shipID uint64, date time.Time) error {
    _, err := r.db.ExecContext(ctx,
        `INSERT IGNORE INTO seat_status (ship_id, date) VALUES (?, ?)`,
        shipID, model.DayOf(date))
    return err
}

// EnsureExistsTx is EnsureExists within an existing transaction.
func (r *SeatStatusRepo) EnsureExistsTx(ctx context.Context, tx *sql.Tx, shipID uint64, date time.Time) error {
    _, err := tx.ExecContext(ctx,
        `INSERT IGNORE INTO seat_status (ship_id, date) VALUES (?, ?)`,
        shipID, model.DayOf(date))
    return err
}

// Get returns the status row for a (ship, date) pair or
// ErrStatusNotFound.
func (r *SeatStatusRepo) Get(ctx context.Context, shipID uint64, date time.Time) (*model.SeatStatus, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+statusColumns+` FROM seat_status ss WHERE ss.ship_id = ? AND ss.date = ?`,
        shipID, model.DayOf(date))
    ss, err := scanStatus(row, false)
    if err == sql.ErrNoRows {
        return nil, ErrStatusNotFound
    }
    return ss, err
}

// GetByID returns one status row by primary key, joined with its ship
// name, or ErrStatusNotFound.
func (r *SeatStatusRepo) GetByID(ctx context.Context, id uint64) (*model.SeatStatus, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+statusColumns+`, s.name
         FROM seat_status ss JOIN ships s ON s.id = ss.ship_id
         WHERE ss.id = ?`, id)
    ss, err := scanStatus(row, true)
    if err == sql.ErrNoRows {
        return nil, ErrStatusNotFound
    }
    return ss, err
}

// ListByDates returns status rows for the given dates, optionally
// restricted to one ship, ordered by date then ship name.  Used by the
// status view after the reconciliation engine has determined which
// legs carry bookings.
func (r *SeatStatusRepo) ListByDates(ctx context.Context, shipID uint64, dates []time.Time) ([]model.SeatStatus, error) {
    if len(dates) == 0 {
        return []model.SeatStatus{}, nil
    }
    query := `SELECT ` + statusColumns + `, s.name
              FROM seat_status ss JOIN ships s ON s.id = ss.ship_id
              WHERE ss.date IN (`
    args := make([]any, 0, len(dates)+1)
    for i, d := range dates {
        if i > 0 {
            query += ","
        }
        query += "?"
        args = append(args, model.DayOf(d))
    }
    query += ")"
    if shipID != 0 {
        query += " AND ss.ship_id = ?"
        args = append(args, shipID)
    }
    query += " ORDER BY ss.date, s.name"
    return r.queryStatuses(ctx, query, args...)
}

// RangeQuery returns status rows with dates in [from, to), optionally
// restricted to one ship, ordered by date then ship name.  Zero from
// and to disable the date bound.
func (r *SeatStatusRepo) RangeQuery(ctx context.Context, shipID uint64, from, to time.Time) ([]model.SeatStatus, error) {
    query := `SELECT ` + statusColumns + `, s.name
              FROM seat_status ss JOIN ships s ON s.id = ss.ship_id
              WHERE 1=1`
    var args []any
    if shipID != 0 {
        query += " AND ss.ship_id = ?"
        args = append(args, shipID)
    }
    if !from.IsZero() {
        query += " AND ss.date >= ?"
        args = append(args, model.DayOf(from))
    }
    if !to.IsZero() {
        query += " AND ss.date < ?"
        args = append(args, model.DayOf(to))
    }
    query += " ORDER BY ss.date, s.name"
    return r.queryStatuses(ctx, query, args...)
}

func (r *SeatStatusRepo) queryStatuses(ctx context.Context, query string, args ...any) ([]model.SeatStatus, error) {
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    statuses := make([]model.SeatStatus, 0)
    for rows.Next() {
        ss, err := scanStatus(rows, true)
        if err != nil {
            return nil, err
        }
        statuses = append(statuses, *ss)
    }
    return statuses, rows.Err()
}

// UpsertBlocked sets the blocked counters for one leg, creating the
// row when absent.  Blocked counts are administrative input; each
// class is clamped at zero.  Reserved counters are untouched.
func (r *SeatStatusRepo) UpsertBlocked(ctx context.Context, shipID uint64, date time.Time, d model.Direction, blocked model.SeatCounts) (*model.SeatStatus, error) {
    p := colPrefix(d)
    eco, bus, fst := max(0, blocked.Economy), max(0, blocked.Business), max(0, blocked.First)
    _, err := r.db.ExecContext(ctx,
        `INSERT INTO seat_status (ship_id, date,
            `+p+`_economy_blocked, `+p+`_business_blocked, `+p+`_first_blocked)
         VALUES (?, ?, ?, ?, ?)
         ON DUPLICATE KEY UPDATE
            `+p+`_economy_blocked = VALUES(`+p+`_economy_blocked),
            `+p+`_business_blocked = VALUES(`+p+`_business_blocked),
            `+p+`_first_blocked = VALUES(`+p+`_first_blocked)`,
        shipID, model.DayOf(date), eco, bus, fst)
    if err != nil {
        return nil, err
    }
    return r.Get(ctx, shipID, date)
}

// UpdateBlockedByID overwrites the blocked counters of both directions
// on an existing row addressed by primary key.  Used by the status
// sheet's save actions, which edit a row the operator can already see.
func (r *SeatStatusRepo) UpdateBlockedByID(ctx context.Context, id uint64, outbound, inbound model.SeatCounts) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE seat_status SET
            out_economy_blocked = ?, out_business_blocked = ?, out_first_blocked = ?,
            in_economy_blocked = ?, in_business_blocked = ?, in_first_blocked = ?
         WHERE id = ?`,
        max(0, outbound.Economy), max(0, outbound.Business), max(0, outbound.First),
        max(0, inbound.Economy), max(0, inbound.Business), max(0, inbound.First), id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        var exists bool
        if err := r.db.QueryRowContext(ctx,
            `SELECT EXISTS(SELECT 1 FROM seat_status WHERE id = ?)`, id).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return ErrStatusNotFound
        }
    }
    return nil
}

// ApplyReservationDeltaTx adds a signed per-class delta to the reserved
// counters of one leg.  All three classes update in a single statement
// so a failed write never applies a partial delta.  Counters clamp at
// zero; the full reconciliation is the authority if a clamped release
// ever hides drift.  The row is created first when missing.
func (r *SeatStatusRepo) ApplyReservationDeltaTx(ctx context.Context, tx *sql.Tx, shipID uint64, date time.Time, d model.Direction, delta model.SeatCounts) error {
    if delta.IsZero() {
        return nil
    }
    if err := r.EnsureExistsTx(ctx, tx, shipID, date); err != nil {
        return err
    }
    p := colPrefix(d)
    _, err := tx.ExecContext(ctx,
        `UPDATE seat_status SET
            `+p+`_economy_reserved = GREATEST(0, `+p+`_economy_reserved + ?),
            `+p+`_business_reserved = GREATEST(0, `+p+`_business_reserved + ?),
            `+p+`_first_reserved = GREATEST(0, `+p+`_first_reserved + ?)
         WHERE ship_id = ? AND date = ?`,
        delta.Economy, delta.Business, delta.First, shipID, model.DayOf(date))
    return err
}

// ReserveWithinCapacityTx is the conditional form of
// ApplyReservationDeltaTx: the increment succeeds only when every class
// the delta touches still satisfies max − (reserved + blocked + delta)
// ≥ 0 against the ship's capacity catalog.  Classes with a zero delta
// are exempt from the condition, so a leg already in shortage for one
// class does not reject claims made purely in the others.  It returns
// ErrSeatsUnavailable when the condition fails, which a losing
// concurrent writer should treat as retryable.  Because check and
// increment are one UPDATE, two writers cannot jointly exceed capacity
// through this path.
func (r *SeatStatusRepo) ReserveWithinCapacityTx(ctx context.Context, tx *sql.Tx, shipID uint64, date time.Time, d model.Direction, delta model.SeatCounts) error {
    if delta.IsZero() {
        return nil
    }
    if err := r.EnsureExistsTx(ctx, tx, shipID, date); err != nil {
        return err
    }
    p := colPrefix(d)
    res, err := tx.ExecContext(ctx,
        `UPDATE seat_status ss JOIN ships s ON s.id = ss.ship_id SET
            ss.`+p+`_economy_reserved = GREATEST(0, ss.`+p+`_economy_reserved + ?),
            ss.`+p+`_business_reserved = GREATEST(0, ss.`+p+`_business_reserved + ?),
            ss.`+p+`_first_reserved = GREATEST(0, ss.`+p+`_first_reserved + ?)
         WHERE ss.ship_id = ? AND ss.date = ?
           AND (? = 0 OR s.`+p+`_economy - (ss.`+p+`_economy_reserved + ss.`+p+`_economy_blocked + ?) >= 0)
           AND (? = 0 OR s.`+p+`_business - (ss.`+p+`_business_reserved + ss.`+p+`_business_blocked + ?) >= 0)
           AND (? = 0 OR s.`+p+`_first - (ss.`+p+`_first_reserved + ss.`+p+`_first_blocked + ?) >= 0)`,
        delta.Economy, delta.Business, delta.First,
        shipID, model.DayOf(date),
        delta.Economy, delta.Economy,
        delta.Business, delta.Business,
        delta.First, delta.First)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrSeatsUnavailable
    }
    return nil
}

// OverwriteReserved replaces the reserved counters of both directions
// with reconciled sums.  This is the drift-healing resync path: safe,
// idempotent, and authoritative over the incremental deltas.
func (r *SeatStatusRepo) OverwriteReserved(ctx context.Context, shipID uint64, date time.Time, outbound, inbound model.SeatCounts) error {
    if err := r.EnsureExists(ctx, shipID, date); err != nil {
        return err
    }
    _, err := r.db.ExecContext(ctx,
        `UPDATE seat_status SET
            out_economy_reserved = ?, out_business_reserved = ?, out_first_reserved = ?,
            in_economy_reserved = ?, in_business_reserved = ?, in_first_reserved = ?
         WHERE ship_id = ? AND date = ?`,
        max(0, outbound.Economy), max(0, outbound.Business), max(0, outbound.First),
        max(0, inbound.Economy), max(0, inbound.Business), max(0, inbound.First),
        shipID, model.DayOf(date))
    return err
}

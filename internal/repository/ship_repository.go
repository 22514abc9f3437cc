package repository

import (
    "context"
    "database/sql"

    "github.com/wontwopunch/shiptour-v2/internal/model"
)

// ShipRepo provides CRUD operations for the ship capacity catalog.
// Ships carry the per-direction, per-class maximum seat counts that the
// availability check and the conditional capacity reserve read.
type ShipRepo struct {
    db *sql.DB
}

// NewShipRepo returns a new ShipRepo bound to the given database.
func NewShipRepo(db *sql.DB) *ShipRepo { return &ShipRepo{db: db} }

const shipColumns = `id, name, has_reservations, is_active,
    out_economy, out_business, out_first,
    in_economy, in_business, in_first,
    created_at, updated_at`

func scanShip(row interface{ Scan(...any) error }) (*model.Ship, error) {
    var s model.Ship
    err := row.Scan(
        &s.ID, &s.Name, &s.HasReservations, &s.IsActive,
        &s.OutboundSeats.Economy, &s.OutboundSeats.Business, &s.OutboundSeats.First,
        &s.InboundSeats.Economy, &s.InboundSeats.Business, &s.InboundSeats.First,
        &s.CreatedAt, &s.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// Create inserts a new ship with zero capacities.  Ship names are
// unique; a collision returns ErrDuplicateShipName.
func (r *ShipRepo) Create(ctx context.Context, name string) (*model.Ship, error) {
    var exists bool
    err := r.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM ships WHERE name = ?)`, name).Scan(&exists)
    if err != nil {
        return nil, err
    }
    if exists {
        return nil, ErrDuplicateShipName
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO ships (name, is_active) VALUES (?, TRUE)`, name)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    return r.GetByID(ctx, uint64(id))
}

// GetByID returns one ship or ErrShipNotFound.
func (r *ShipRepo) GetByID(ctx context.Context, id uint64) (*model.Ship, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+shipColumns+` FROM ships WHERE id = ?`, id)
    s, err := scanShip(row)
    if err == sql.ErrNoRows {
        return nil, ErrShipNotFound
    }
    return s, err
}

// List returns all ships ordered by name.
func (r *ShipRepo) List(ctx context.Context) ([]model.Ship, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+shipColumns+` FROM ships ORDER BY name`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    ships := make([]model.Ship, 0)
    for rows.Next() {
        s, err := scanShip(rows)
        if err != nil {
            return nil, err
        }
        ships = append(ships, *s)
    }
    return ships, rows.Err()
}

// Rename changes a ship's name, rejecting duplicates held by any other
// ship.  Returns ErrShipNotFound when the id does not exist.
func (r *ShipRepo) Rename(ctx context.Context, id uint64, name string) (*model.Ship, error) {
    var exists bool
    err := r.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM ships WHERE name = ? AND id <> ?)`, name, id).Scan(&exists)
    if err != nil {
        return nil, err
    }
    if exists {
        return nil, ErrDuplicateShipName
    }
    res, err := r.db.ExecContext(ctx, `UPDATE ships SET name = ? WHERE id = ?`, name, id)
    if err != nil {
        return nil, err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // Either the id is unknown or the name was already set; check which.
        if _, err := r.GetByID(ctx, id); err != nil {
            return nil, err
        }
    }
    return r.GetByID(ctx, id)
}

// UpdateSeats overwrites the capacity catalog entry for one ship: all
// six per-direction, per-class maximums update together.
func (r *ShipRepo) UpdateSeats(ctx context.Context, id uint64, outbound, inbound model.SeatCounts) (*model.Ship, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE ships SET
            out_economy = ?, out_business = ?, out_first = ?,
            in_economy = ?, in_business = ?, in_first = ?
         WHERE id = ?`,
        outbound.Economy, outbound.Business, outbound.First,
        inbound.Economy, inbound.Business, inbound.First, id)
    if err != nil {
        return nil, err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        if _, err := r.GetByID(ctx, id); err != nil {
            return nil, err
        }
    }
    return r.GetByID(ctx, id)
}

// Delete removes a ship.  Ships with bookings in the ledger cannot be
// deleted; the caller receives ErrShipHasBookings.
func (r *ShipRepo) Delete(ctx context.Context, id uint64) error {
    var count int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM bookings WHERE ship_id = ?`, id).Scan(&count)
    if err != nil {
        return err
    }
    if count > 0 {
        return ErrShipHasBookings
    }
    res, err := r.db.ExecContext(ctx, `DELETE FROM ships WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrShipNotFound
    }
    return nil
}

// SetHasReservationsTx flips the has_reservations flag within an
// existing transaction.  Maintained on booking create and delete so
// list views can mark ships with activity without counting bookings.
func (r *ShipRepo) SetHasReservationsTx(ctx context.Context, tx *sql.Tx, id uint64, v bool) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE ships SET has_reservations = ? WHERE id = ?`, v, id)
    return err
}

// CountBookingsTx returns how many bookings reference the ship,
// excluding excludeID when non-zero.  Used on delete to decide whether
// has_reservations should be cleared.
func (r *ShipRepo) CountBookingsTx(ctx context.Context, tx *sql.Tx, shipID, excludeID uint64) (int, error) {
    var count int
    err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM bookings WHERE ship_id = ? AND id <> ?`,
        shipID, excludeID).Scan(&count)
    return count, err
}

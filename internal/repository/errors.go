// Package repository implements MySQL persistence for ships, the
// booking ledger and the per-leg seat status store.  Sentinel errors
// defined here let handlers distinguish failure modes without
// inspecting driver errors: not-found conditions map to 404, the
// duplicate-name and has-bookings guards map to 409, and
// ErrSeatsUnavailable is the retryable signal that a conditional
// capacity reservation lost to a concurrent writer.
package repository

import "errors"

// ErrShipNotFound is returned when a referenced ship id does not exist.
var ErrShipNotFound = errors.New("ship not found")

// ErrBookingNotFound is returned when a referenced booking id does not
// exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrStatusNotFound is returned when a seat status row does not exist
// for the requested id or (ship, date) pair.
var ErrStatusNotFound = errors.New("seat status not found")

// ErrDuplicateShipName is returned when creating or renaming a ship
// would collide with an existing ship name.
var ErrDuplicateShipName = errors.New("ship name already registered")

// ErrShipHasBookings is returned when deleting a ship that still has
// bookings in the ledger.
var ErrShipHasBookings = errors.New("ship still has bookings")

// ErrSeatsUnavailable is returned by the conditional capacity reserve
// when the requested seats no longer fit within the ship's capacity.
// It is retryable: a concurrent writer may have taken the seats, or
// the leg may simply be full.
var ErrSeatsUnavailable = errors.New("requested seats exceed remaining capacity")

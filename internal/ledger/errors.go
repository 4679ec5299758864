// Package ledger implements the session lifecycle and cost-accrual core:
// it tracks which devices and rooms are in use, assigns session ids,
// computes elapsed cost, and finalizes sessions into immutable completed
// records.  These sentinel values let handlers map each failure to a
// distinct HTTP status instead of collapsing everything into a 500.
package ledger

import "errors"

// ErrResourceNotFound is returned when the referenced device or room does
// not exist in the ledger.
var ErrResourceNotFound = errors.New("resource not found")

// ErrResourceUnavailable is returned when a start or transition is
// attempted on a resource that is not in the required state, e.g. starting
// a session on a device that is already in use or under maintenance.
var ErrResourceUnavailable = errors.New("resource unavailable")

// ErrInvalidConfiguration is returned when the request itself cannot be
// satisfied by the resource: a multi-session start on a device with no
// multi rate configured, or a guest count outside the room's capacity.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrSessionNotFound is returned when ending or querying a session id that
// has no active session, including a second end call on an id that was
// already finalized.
var ErrSessionNotFound = errors.New("session not found")

// ErrReservationNotFound is returned when a reservation token does not
// match any pending room reservation.
var ErrReservationNotFound = errors.New("reservation not found")

// Package repository holds the MySQL data access layer.  This file defines
// error values shared across repositories so handlers can distinguish
// failure scenarios, e.g. ErrConflict for operations blocked by existing
// dependent state.  Repository-specific not-found sentinels live next to
// their repository.
package repository

import "errors"

// ErrConflict is returned when an update cannot proceed because of
// conflicting state, such as reviewing a subscription request that has
// already been reviewed.  Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

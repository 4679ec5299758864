package model

// ResourceStatus enumerates the availability states a billable resource can
// be in.  Using a closed type instead of free-text strings keeps illegal
// states unrepresentable; the string form is only produced at the edges
// (JSON responses, database columns).
type ResourceStatus uint8

const (
	StatusAvailable ResourceStatus = iota // resource is free and can start a session
	StatusInUse                           // an active session is running on the resource
	StatusReserved                        // room held by a reservation, no cost accruing yet
	StatusMaintenance                     // administratively taken out of rotation
)

// String returns the canonical upper-case form stored in the database.
func (s ResourceStatus) String() string {
	switch s {
	case StatusAvailable:
		return "AVAILABLE"
	case StatusInUse:
		return "IN_USE"
	case StatusReserved:
		return "RESERVED"
	case StatusMaintenance:
		return "MAINTENANCE"
	}
	return "UNKNOWN"
}

// ParseResourceStatus converts a stored status string back to its enum
// value.  Unknown strings map to StatusAvailable so a corrupted row never
// wedges a resource in an unreachable state.
func ParseResourceStatus(s string) ResourceStatus {
	switch s {
	case "IN_USE":
		return StatusInUse
	case "RESERVED":
		return StatusReserved
	case "MAINTENANCE":
		return StatusMaintenance
	}
	return StatusAvailable
}

// MarshalJSON renders the status as its string form in API responses.
func (s ResourceStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// SessionStatus is the final state of a completed session record.
type SessionStatus string

const (
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// ResourceKind distinguishes the two billable resource families.  Device
// sessions and room sessions share one lifecycle but are tracked in
// separate id namespaces.
type ResourceKind string

const (
	KindDevice ResourceKind = "DEVICE"
	KindRoom   ResourceKind = "ROOM"
)

// RateMode selects which hourly rate applies to a device session.
type RateMode string

const (
	RateSingle RateMode = "SINGLE" // standard single-player rate
	RateMulti  RateMode = "MULTI"  // shared/multi-player rate, optional per device
)

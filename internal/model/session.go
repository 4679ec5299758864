package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActiveSession is an in-progress billing period on a device or room.  The
// hourly rate is snapshotted when the session starts so later rate edits on
// the resource never change what a running session is charged.
//
// Fields:
//  ID          – ledger-assigned id, unique across both kinds ("DS-…"/"RS-…").
//  Kind        – whether the session runs on a device or a room.
//  ResourceID  – id of the device or room within its own table.
//  ResourceName, ResourceType – display snapshot taken at start.
//  Customer    – optional walk-in customer name.
//  GuestCount  – room sessions only; 0 for devices.
//  RateMode    – single or multi rate for device sessions.
//  HourlyRate  – rate snapshot used for all cost computations.
//  StartedAt   – UTC start timestamp.
type ActiveSession struct {
	ID           string          `json:"id"`
	Kind         ResourceKind    `json:"kind"`
	ResourceID   uint64          `json:"resource_id"`
	ResourceName string          `json:"resource_name"`
	ResourceType string          `json:"resource_type"`
	Customer     string          `json:"customer,omitempty"`
	GuestCount   int             `json:"guest_count,omitempty"`
	RateMode     RateMode        `json:"rate_mode,omitempty"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	StartedAt    time.Time       `json:"started_at"`
}

// CompletedSession is the immutable record appended to the ledger when a
// session ends.  It snapshots everything it needs from the resource, so
// deleting a device or room later never invalidates history.
type CompletedSession struct {
	ID            string          `json:"id"`
	ResourceName  string          `json:"resource_name"`
	ResourceType  string          `json:"resource_type"`
	Customer      string          `json:"customer,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	EndedAt       time.Time       `json:"ended_at"`
	Duration      time.Duration   `json:"duration"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	Cost          decimal.Decimal `json:"cost"`
	Status        SessionStatus   `json:"status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Device is a billable gaming unit (console, PC, simulator).  Rates are
// decimal currency per hour; MultiRate is optional and only set for devices
// that support a shared/multi-player mode.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name shown on the floor map (e.g. "PS5-1").
//  Type       – device family (e.g. "PS5", "XBOX", "PC").
//  HourlyRate – standard single-session rate per hour.
//  MultiRate  – optional multi-session rate per hour (nil when unsupported).
//  Status     – availability state.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Device struct {
	ID         uint64           `json:"id"`
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	HourlyRate decimal.Decimal  `json:"hourly_rate"`
	MultiRate  *decimal.Decimal `json:"multi_rate,omitempty"`
	Status     ResourceStatus   `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

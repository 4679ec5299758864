package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room is a private rentable space billed by the hour regardless of guest
// count.  Capacity bounds the guest count accepted when a session starts;
// Occupancy tracks the guests of the currently running session and is zero
// whenever the room is not occupied.
type Room struct {
	ID         uint64          `json:"id"`
	Name       string          `json:"name"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Capacity   int             `json:"capacity"`
	Occupancy  int             `json:"occupancy"`
	Status     ResourceStatus  `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

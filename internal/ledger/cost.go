package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-station/internal/model"
)

// Cost converts an elapsed duration into a monetary charge at the given
// hourly rate, rounded to currency precision (2 decimals).  Negative
// durations are clamped to zero so clock skew can never produce a negative
// bill.
func Cost(d time.Duration, hourlyRate decimal.Decimal) decimal.Decimal {
	if d < 0 {
		d = 0
	}
	hours := decimal.NewFromFloat(d.Hours())
	return hourlyRate.Mul(hours).Round(2)
}

// ElapsedCost returns the duration and cost-to-date of an active session as
// of now.  It is a pure function with no side effects so callers can poll
// it as often as they like for live displays.
func ElapsedCost(s model.ActiveSession, now time.Time) (time.Duration, decimal.Decimal) {
	d := now.Sub(s.StartedAt)
	if d < 0 {
		d = 0
	}
	return d, Cost(d, s.HourlyRate)
}

package repository

import (
	"testing"
	"time"
)

func TestRangeBounds(t *testing.T) {
	// Wednesday mid-month, mid-afternoon.
	now := time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC)
	midnight := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		wantStart time.Time
		wantEnd   time.Time
		wantOK    bool
	}{
		{"today", midnight, midnight.AddDate(0, 0, 1), true},
		{"yesterday", midnight.AddDate(0, 0, -1), midnight, true},
		{"week", midnight.AddDate(0, 0, -6), midnight.AddDate(0, 0, 1), true},
		{"month", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), midnight.AddDate(0, 0, 1), true},
		{"TODAY", midnight, midnight.AddDate(0, 0, 1), true}, // case-insensitive
		{"", time.Time{}, time.Time{}, false},
		{"fortnight", time.Time{}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run("range "+tt.name, func(t *testing.T) {
			start, end, ok := RangeBounds(tt.name, now)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("bounds = [%v, %v), want [%v, %v)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestRangeBoundsMonthStartsOnFirst(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 5, 0, 0, time.UTC) // just past midnight on the 1st
	start, end, ok := RangeBounds("month", now)
	if !ok {
		t.Fatal("month range not recognized")
	}
	if start.Day() != 1 {
		t.Errorf("start day = %d, want 1", start.Day())
	}
	if !end.After(now) {
		t.Errorf("end %v does not cover now %v", end, now)
	}
}

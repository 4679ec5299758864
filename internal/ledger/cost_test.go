package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-station/internal/model"
)

func TestCost(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		rate     decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "ninety minutes at 50 per hour",
			duration: 90 * time.Minute,
			rate:     decimal.NewFromFloat(50.00),
			expected: decimal.NewFromFloat(75.00),
		},
		{
			name:     "exactly one hour",
			duration: time.Hour,
			rate:     decimal.NewFromFloat(12.50),
			expected: decimal.NewFromFloat(12.50),
		},
		{
			name:     "zero duration is free",
			duration: 0,
			rate:     decimal.NewFromFloat(100),
			expected: decimal.NewFromInt(0),
		},
		{
			name:     "negative duration clamps to zero",
			duration: -30 * time.Minute,
			rate:     decimal.NewFromFloat(50.00),
			expected: decimal.NewFromInt(0),
		},
		{
			name:     "rounds to currency precision",
			duration: 20 * time.Minute,
			rate:     decimal.NewFromFloat(9.99),
			expected: decimal.NewFromFloat(3.33),
		},
		{
			name:     "zero rate bills nothing",
			duration: 5 * time.Hour,
			rate:     decimal.NewFromInt(0),
			expected: decimal.NewFromInt(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cost(tt.duration, tt.rate)
			if !got.Equal(tt.expected) {
				t.Errorf("Cost(%v, %s) = %s, want %s", tt.duration, tt.rate, got, tt.expected)
			}
		})
	}
}

func TestElapsedCost(t *testing.T) {
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	s := model.ActiveSession{
		ID:         "DS-1",
		HourlyRate: decimal.NewFromFloat(50.00),
		StartedAt:  start,
	}

	d, cost := ElapsedCost(s, start.Add(90*time.Minute))
	if d != 90*time.Minute {
		t.Errorf("duration = %v, want 90m", d)
	}
	if want := decimal.NewFromFloat(75.00); !cost.Equal(want) {
		t.Errorf("cost = %s, want %s", cost, want)
	}

	// Clock skew: a "now" before the start must clamp, not go negative.
	d, cost = ElapsedCost(s, start.Add(-time.Minute))
	if d != 0 {
		t.Errorf("skewed duration = %v, want 0", d)
	}
	if !cost.IsZero() {
		t.Errorf("skewed cost = %s, want 0", cost)
	}
}

func TestElapsedCostIsPure(t *testing.T) {
	s := model.ActiveSession{
		HourlyRate: decimal.NewFromFloat(30.00),
		StartedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	now := s.StartedAt.Add(time.Hour)
	for i := 0; i < 3; i++ {
		d, cost := ElapsedCost(s, now)
		if d != time.Hour || !cost.Equal(decimal.NewFromFloat(30.00)) {
			t.Fatalf("call %d: got (%v, %s), want (1h, 30)", i, d, cost)
		}
	}
}

// Package report rolls completed sessions into the derived figures used by
// dashboards and exports: range summaries, daily revenue, per-resource
// performance and hourly usage distribution.  Every function here is pure;
// output depends only on the input slice, with explicit key sorts so the
// result never varies with map iteration order.  Input order matters only
// for documented tie-breaks.
package report

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-station/internal/model"
)

// NoResourceLabel is reported as the most-used resource when the range
// contains no completed sessions.  Carried over from the legacy dashboard,
// which rendered the literal string rather than hiding the widget.
const NoResourceLabel = "N/A"

// DefaultPeakHour is the peak-hour fallback when no sessions exist.  The
// legacy system hardcoded 14:00 (typical afternoon rush) instead of
// erroring on an empty range, and downstream displays expect it.
const DefaultPeakHour = 14

// Summary is the headline block shown at the top of every report page.
type Summary struct {
	TotalSessions     int             `json:"total_sessions"`
	CompletedSessions int             `json:"completed_sessions"`
	CancelledSessions int             `json:"cancelled_sessions"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	TotalDuration     time.Duration   `json:"total_duration"`
	AverageDuration   time.Duration   `json:"average_duration"`
	MostUsedResource  string          `json:"most_used_resource"`
	PeakHour          int             `json:"peak_hour"`
}

// DailyEntry is one row of the daily revenue breakdown.
type DailyEntry struct {
	Date         time.Time       `json:"date"`
	Weekday      string          `json:"weekday"`
	SessionCount int             `json:"session_count"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// ResourcePerformance is one row of the per-resource breakdown.
type ResourcePerformance struct {
	ResourceName   string          `json:"resource_name"`
	ResourceType   string          `json:"resource_type"`
	SessionCount   int             `json:"session_count"`
	TotalUsageTime time.Duration   `json:"total_usage_time"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	Utilization    float64         `json:"utilization_percentage"`
	AverageCost    decimal.Decimal `json:"average_cost"`
}

// HourlyBucket is one row of the hour-of-day usage distribution.
type HourlyBucket struct {
	Hour         int             `json:"hour"`
	Label        string          `json:"time_range"`
	SessionCount int             `json:"session_count"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// Summarize filters sessions to those starting within [start, end]
// (inclusive on both ends) and computes the headline figures.  Revenue and
// averages cover completed sessions only; anything not COMPLETED counts as
// cancelled.  Averages are zero, never NaN, when nothing completed in
// range.  Mode ties (resource, hour) go to the value first encountered in
// input order.
func Summarize(sessions []model.CompletedSession, start, end time.Time) Summary {
	sum := Summary{
		TotalRevenue:     decimal.Zero,
		AverageCost:      decimal.Zero,
		MostUsedResource: NoResourceLabel,
		PeakHour:         DefaultPeakHour,
	}

	resourceCounts := map[string]int{}
	hourCounts := map[int]int{}
	var resourceOrder []string
	var hourOrder []int

	for _, s := range sessions {
		if s.StartedAt.Before(start) || s.StartedAt.After(end) {
			continue
		}
		sum.TotalSessions++
		if s.Status != model.SessionCompleted {
			sum.CancelledSessions++
			continue
		}
		sum.CompletedSessions++
		sum.TotalRevenue = sum.TotalRevenue.Add(s.Cost)
		sum.TotalDuration += s.Duration

		if _, seen := resourceCounts[s.ResourceName]; !seen {
			resourceOrder = append(resourceOrder, s.ResourceName)
		}
		resourceCounts[s.ResourceName]++

		h := s.StartedAt.Hour()
		if _, seen := hourCounts[h]; !seen {
			hourOrder = append(hourOrder, h)
		}
		hourCounts[h]++
	}

	if sum.CompletedSessions > 0 {
		n := decimal.NewFromInt(int64(sum.CompletedSessions))
		sum.AverageCost = sum.TotalRevenue.Div(n).Round(2)
		avgMinutes := sum.TotalDuration.Minutes() / float64(sum.CompletedSessions)
		sum.AverageDuration = time.Duration(avgMinutes * float64(time.Minute))
		sum.MostUsedResource = modeString(resourceOrder, resourceCounts)
		sum.PeakHour = modeInt(hourOrder, hourCounts)
	}
	return sum
}

// modeString returns the key with the highest count, preferring the key
// that appeared first in input order on ties.
func modeString(order []string, counts map[string]int) string {
	best, bestN := NoResourceLabel, 0
	for _, k := range order {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}

func modeInt(order []int, counts map[int]int) int {
	best, bestN := DefaultPeakHour, 0
	for _, k := range order {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}

// DailyRevenue groups completed sessions by the calendar date of their
// start time and returns one entry per distinct date, ascending.
func DailyRevenue(sessions []model.CompletedSession) []DailyEntry {
	byDate := map[string]*DailyEntry{}
	for _, s := range sessions {
		if s.Status != model.SessionCompleted {
			continue
		}
		y, m, d := s.StartedAt.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, s.StartedAt.Location())
		key := date.Format("2006-01-02")
		e, ok := byDate[key]
		if !ok {
			e = &DailyEntry{Date: date, Weekday: date.Weekday().String(), Revenue: decimal.Zero}
			byDate[key] = e
		}
		e.SessionCount++
		e.Revenue = e.Revenue.Add(s.Cost)
	}

	out := make([]DailyEntry, 0, len(byDate))
	for _, e := range byDate {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// DevicePerformance groups completed sessions by (resource name, resource
// type) and reports utilization as each group's share of the completed
// total, rounded to one decimal.  An empty input yields an empty slice.
func DevicePerformance(sessions []model.CompletedSession) []ResourcePerformance {
	type key struct{ name, typ string }
	groups := map[key]*ResourcePerformance{}
	total := 0

	for _, s := range sessions {
		if s.Status != model.SessionCompleted {
			continue
		}
		total++
		k := key{s.ResourceName, s.ResourceType}
		g, ok := groups[k]
		if !ok {
			g = &ResourcePerformance{
				ResourceName: s.ResourceName,
				ResourceType: s.ResourceType,
				TotalRevenue: decimal.Zero,
			}
			groups[k] = g
		}
		g.SessionCount++
		g.TotalUsageTime += s.Duration
		g.TotalRevenue = g.TotalRevenue.Add(s.Cost)
	}

	out := make([]ResourcePerformance, 0, len(groups))
	for _, g := range groups {
		g.Utilization = math.Round(float64(g.SessionCount)/float64(total)*1000) / 10
		g.AverageCost = g.TotalRevenue.Div(decimal.NewFromInt(int64(g.SessionCount))).Round(2)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResourceName != out[j].ResourceName {
			return out[i].ResourceName < out[j].ResourceName
		}
		return out[i].ResourceType < out[j].ResourceType
	})
	return out
}

// HourlyUsage groups completed sessions by start hour, ascending.
func HourlyUsage(sessions []model.CompletedSession) []HourlyBucket {
	byHour := map[int]*HourlyBucket{}
	for _, s := range sessions {
		if s.Status != model.SessionCompleted {
			continue
		}
		h := s.StartedAt.Hour()
		b, ok := byHour[h]
		if !ok {
			b = &HourlyBucket{Hour: h, Label: HourLabel(h), Revenue: decimal.Zero}
			byHour[h] = b
		}
		b.SessionCount++
		b.Revenue = b.Revenue.Add(s.Cost)
	}

	out := make([]HourlyBucket, 0, len(byHour))
	for _, b := range byHour {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// HourLabel renders an hour-of-day bucket as a 12-hour range, e.g. hour 14
// becomes "2 PM - 3 PM" and hour 23 wraps to "11 PM - 12 AM".
func HourLabel(hour int) string {
	return clock12(hour) + " - " + clock12((hour+1)%24)
}

func clock12(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return strconv.Itoa(h) + " " + suffix
}

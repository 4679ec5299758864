package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/game-station/internal/model"
)

// DefaultPageSize is the fixed page size of the session history listing.
const DefaultPageSize = 15

// SessionSearchQuery defines filters and pagination for browsing session
// history.  Range is one of the named windows accepted by RangeBounds;
// Query is matched case-insensitively against resource name and customer.
type SessionSearchQuery struct {
	Range string
	Query string
	Page  int
}

// RangeBounds resolves a named date-range filter into [start, end) bounds
// relative to now.  Recognized names are today, yesterday, week (the last
// 7 calendar days including today) and month (the current calendar month).
// Empty or unknown names report ok=false and the caller should skip the
// time filter entirely.
func RangeBounds(name string, now time.Time) (start, end time.Time, ok bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "today":
		return midnight, midnight.AddDate(0, 0, 1), true
	case "yesterday":
		return midnight.AddDate(0, 0, -1), midnight, true
	case "week":
		return midnight.AddDate(0, 0, -6), midnight.AddDate(0, 0, 1), true
	case "month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first, midnight.AddDate(0, 0, 1), true
	}
	return time.Time{}, time.Time{}, false
}

// Search pages through completed sessions matching the query, newest
// first.  It returns the page slice plus the total match count so callers
// can render pagination.
func (r *SessionRepo) Search(ctx context.Context, q SessionSearchQuery) ([]model.CompletedSession, int64, error) {
	where := []string{}
	args := []any{}

	if start, end, ok := RangeBounds(q.Range, time.Now().UTC()); ok {
		where = append(where, "started_at >= ? AND started_at < ?")
		args = append(args, start, end)
	}
	if s := strings.TrimSpace(q.Query); s != "" {
		where = append(where, "(LOWER(resource_name) LIKE ? OR LOWER(customer) LIKE ?)")
		pat := "%" + strings.ToLower(s) + "%"
		args = append(args, pat, pat)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completed_sessions WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * DefaultPageSize

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM completed_sessions WHERE `+cond+
			` ORDER BY started_at DESC, session_id DESC LIMIT ? OFFSET ?`,
		append(args, DefaultPageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectSessions(rows)
	return out, total, err
}

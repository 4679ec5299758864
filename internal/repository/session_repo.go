package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/game-station/internal/model"
)

// SessionRepo is the append-only store of completed sessions.  It
// implements ledger.Recorder: rows are inserted when a session ends and
// never updated or deleted afterwards.  All timestamps are stored in UTC.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

const sessionColumns = `session_id, resource_name, resource_type, customer, started_at, ended_at,
	duration_seconds, hourly_rate, cost, status, payment_method`

// Record appends a finalized session.  The session_id column carries a
// unique index, so replaying the same record is rejected by the database
// rather than silently double-counted.
func (r *SessionRepo) Record(ctx context.Context, s model.CompletedSession) error {
	const q = `INSERT INTO completed_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.ResourceName, s.ResourceType, s.Customer,
		s.StartedAt.UTC(), s.EndedAt.UTC(), int64(s.Duration/time.Second),
		s.HourlyRate, s.Cost, string(s.Status), s.PaymentMethod,
	)
	return err
}

// ListBetween returns completed sessions whose start time falls in
// [start, end], ordered by start time.  Report aggregation runs over this
// slice in memory.
func (r *SessionRepo) ListBetween(ctx context.Context, start, end time.Time) ([]model.CompletedSession, error) {
	const q = `SELECT ` + sessionColumns + ` FROM completed_sessions
		WHERE started_at >= ? AND started_at <= ? ORDER BY started_at, session_id`
	rows, err := r.db.QueryContext(ctx, q, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows *sql.Rows) ([]model.CompletedSession, error) {
	var out []model.CompletedSession
	for rows.Next() {
		var s model.CompletedSession
		var seconds int64
		var status string
		if err := rows.Scan(&s.ID, &s.ResourceName, &s.ResourceType, &s.Customer,
			&s.StartedAt, &s.EndedAt, &seconds, &s.HourlyRate, &s.Cost, &status, &s.PaymentMethod); err != nil {
			return nil, err
		}
		s.Duration = time.Duration(seconds) * time.Second
		s.Status = model.SessionStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

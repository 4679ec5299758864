package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/game-station/internal/model"
)

// ErrSubscriptionNotFound is returned when a subscription request id does
// not exist.
var ErrSubscriptionNotFound = errors.New("subscription request not found")

// SubscriptionRepo stores tenant plan-upgrade requests.  A request is
// created PENDING and transitions exactly once on admin review; rows are
// never deleted, so the table doubles as the payment audit trail.
type SubscriptionRepo struct {
	db *sql.DB
}

// NewSubscriptionRepo returns a new SubscriptionRepo bound to the given
// database.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

const subscriptionColumns = `id, tenant_name, phone, plan, amount, payment_method, proof_ref,
	status, submitted_at, reviewed_at`

// Create inserts a new PENDING request and populates its generated id and
// submission timestamp.
func (r *SubscriptionRepo) Create(ctx context.Context, s *model.SubscriptionRequest) error {
	const q = `INSERT INTO subscription_requests
		(tenant_name, phone, plan, amount, payment_method, proof_ref, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	s.Status = model.SubscriptionPending
	res, err := r.db.ExecContext(ctx, q,
		s.TenantName, s.Phone, s.Plan, s.Amount, s.PaymentMethod, s.ProofRef, string(s.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT submitted_at FROM subscription_requests WHERE id = ?`, s.ID).Scan(&s.SubmittedAt)
}

// GetByID fetches a single request or ErrSubscriptionNotFound.
func (r *SubscriptionRepo) GetByID(ctx context.Context, id uint64) (*model.SubscriptionRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscription_requests WHERE id = ?`, id)
	s, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	return s, err
}

// ListPending returns all unreviewed requests, oldest first, so admins
// work the queue in submission order.
func (r *SubscriptionRepo) ListPending(ctx context.Context) ([]model.SubscriptionRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscription_requests
		 WHERE status = ? ORDER BY submitted_at, id`, string(model.SubscriptionPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SubscriptionRequest
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Review transitions a PENDING request to APPROVED or REJECTED.  The
// status guard in the UPDATE makes the transition single-shot: a second
// review hits zero rows and reports ErrConflict instead of flipping the
// decision.
func (r *SubscriptionRepo) Review(ctx context.Context, id uint64, approve bool) (*model.SubscriptionRequest, error) {
	status := model.SubscriptionRejected
	if approve {
		status = model.SubscriptionApproved
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscription_requests SET status = ?, reviewed_at = UTC_TIMESTAMP()
		 WHERE id = ? AND status = ?`,
		string(status), id, string(model.SubscriptionPending))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Distinguish a missing row from one that was already reviewed.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return r.GetByID(ctx, id)
}

func scanSubscription(s scanner) (*model.SubscriptionRequest, error) {
	var sub model.SubscriptionRequest
	var status string
	var reviewed sql.NullTime
	if err := s.Scan(&sub.ID, &sub.TenantName, &sub.Phone, &sub.Plan, &sub.Amount,
		&sub.PaymentMethod, &sub.ProofRef, &status, &sub.SubmittedAt, &reviewed); err != nil {
		return nil, err
	}
	sub.Status = model.SubscriptionStatus(status)
	if reviewed.Valid {
		t := reviewed.Time
		sub.ReviewedAt = &t
	}
	return &sub, nil
}

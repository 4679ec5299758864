package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus tracks the single review transition of a plan request.
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "PENDING"
	SubscriptionApproved SubscriptionStatus = "APPROVED"
	SubscriptionRejected SubscriptionStatus = "REJECTED"
)

// SubscriptionRequest is a tenant's plan-upgrade submission.  It moves from
// PENDING to APPROVED or REJECTED exactly once, on admin review, and is
// never deleted afterwards.
//
// Fields:
//  ID            – primary key identifier.
//  TenantName    – name of the submitting tenant/branch.
//  Phone         – payment phone number used for the transfer.
//  Plan          – requested plan code (e.g. "PRO", "UNLIMITED").
//  Amount        – amount paid, decimal currency.
//  PaymentMethod – payment channel code.
//  ProofRef      – proof-of-payment reference supplied by the tenant.
//  Status        – PENDING until reviewed.
//  SubmittedAt   – submission timestamp.
//  ReviewedAt    – set once when the request is approved or rejected.
type SubscriptionRequest struct {
	ID            uint64             `json:"id"`
	TenantName    string             `json:"tenant_name"`
	Phone         string             `json:"phone,omitempty"`
	Plan          string             `json:"plan"`
	Amount        decimal.Decimal    `json:"amount"`
	PaymentMethod string             `json:"payment_method"`
	ProofRef      string             `json:"proof_ref,omitempty"`
	Status        SubscriptionStatus `json:"status"`
	SubmittedAt   time.Time          `json:"submitted_at"`
	ReviewedAt    *time.Time         `json:"reviewed_at,omitempty"`
}

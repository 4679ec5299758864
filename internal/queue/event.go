// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionCompletedEvent is published when a session is finalized.  It
// carries the full billing snapshot so downstream consumers can log,
// notify or feed analytics without querying the primary database.
type SessionCompletedEvent struct {
	SessionID       string `json:"session_id"`
	ResourceName    string `json:"resource_name"`
	ResourceType    string `json:"resource_type"`
	Customer        string `json:"customer,omitempty"`
	StartedAt       string `json:"started_at"`
	EndedAt         string `json:"ended_at"`
	DurationSeconds int64  `json:"duration_seconds"`
	Cost            string `json:"cost"`
	PaymentMethod   string `json:"payment_method,omitempty"`
}

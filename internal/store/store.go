package store

import "time"

// WorkerStatus is the JSON representation of a worker's latest status.
type WorkerStatus struct {
	// Platform is the platform id the service belongs to.
	Platform string `json:"platform"`

	// ServiceID is the service identifier; it keys the store.
	ServiceID string `json:"service_id"`

	// Service is the service display name.
	Service string `json:"service"`

	// State is the worker state (e.g. "submitting", "sleeping").
	State string `json:"state"`

	// Link is the link the latest order targeted.
	Link string `json:"link,omitempty"`

	// Message is the latest server or error message.
	Message string `json:"message,omitempty"`

	// StatusCode is the latest HTTP status, zero when none was received.
	StatusCode int `json:"status_code,omitempty"`

	// SleepSeconds is the current cooldown length.
	SleepSeconds float64 `json:"sleep_seconds,omitempty"`

	// NextAttemptAt is when the worker submits again; nil when not sleeping.
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`

	// Iteration counts submissions made by the worker.
	Iteration int `json:"iteration"`

	// UpdatedAt is when the status was recorded.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for storing and subscribing to status updates.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Update stores a new status and notifies all subscribers.
	// Statuses are keyed by ServiceID; later updates replace earlier ones.
	Update(status WorkerStatus)

	// GetAll returns all current statuses ordered by ServiceID, numerically
	// when the ids are numbers.
	// The returned slice is a snapshot.
	GetAll() []WorkerStatus

	// Subscribe returns a channel that receives status updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan WorkerStatus

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan WorkerStatus)
}

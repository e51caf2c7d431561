package freeboost

import "time"

// State is the lifecycle state of a service worker.
type State string

const (
	// StateIdle is reported once when a worker starts.
	StateIdle State = "idle"

	// StateSubmitting means an order is in flight.
	StateSubmitting State = "submitting"

	// StateSucceeded means the server accepted the order.
	StateSucceeded State = "succeeded"

	// StateSoftFailed means the server replied but refused the order.
	StateSoftFailed State = "soft_failed"

	// StateHardFailed means no usable reply was received.
	StateHardFailed State = "hard_failed"

	// StateSleeping means the worker is waiting out a cooldown.
	StateSleeping State = "sleeping"

	// StateSkipped means the service is unavailable and was never submitted.
	StateSkipped State = "skipped"

	// StateStopped means the worker observed cancellation and returned.
	StateStopped State = "stopped"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Status is a snapshot of one service worker, delivered to status callbacks
// on every state change.
type Status struct {
	// Platform is the platform id.
	Platform string

	// ServiceID identifies the service within the platform.
	ServiceID string

	// Service is the service display name.
	Service string

	// State is the worker's new state.
	State State

	// Link is the link the latest order targeted.
	Link string

	// Message is the latest server or error message.
	Message string

	// StatusCode is the latest HTTP status, zero when none was received.
	StatusCode int

	// Sleep is the cooldown chosen after the latest iteration.
	Sleep time.Duration

	// NextAttemptAt is when the worker submits again. Zero unless sleeping.
	NextAttemptAt time.Time

	// Iteration counts submissions made by the worker.
	Iteration int

	// UpdatedAt is when the status was recorded.
	UpdatedAt time.Time
}

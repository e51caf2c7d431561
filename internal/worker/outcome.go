package worker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jpalmerr/freeboost/internal/remote"
)

// Cooldowns applied after an iteration.
const (
	// HardFailureCooldown follows transport errors, non-200 replies,
	// unparseable bodies and recovered panics.
	HardFailureCooldown = 60 * time.Second

	// DefaultCooldown follows a server refusal, and a success without a
	// usable next-available hint.
	DefaultCooldown = 300 * time.Second

	// MinServerCooldown is the floor for a positive server-provided wait, so a
	// hint that is only just in the future does not cause a tight loop.
	MinServerCooldown = time.Second
)

// State is a worker lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateSoftFailed State = "soft_failed"
	StateHardFailed State = "hard_failed"
	StateSleeping   State = "sleeping"
	StateSkipped    State = "skipped"
	StateStopped    State = "stopped"
)

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}

// OutcomeKind classifies the reply to an order submission.
type OutcomeKind int

const (
	// OutcomeOK means a 200 reply with a decodable body.
	OutcomeOK OutcomeKind = iota

	// OutcomeTransportError means no HTTP reply on any attempt.
	OutcomeTransportError

	// OutcomeServerError means an HTTP reply with a non-200 status.
	OutcomeServerError

	// OutcomeParseError means a 200 reply whose body is not an order result.
	OutcomeParseError
)

// String implements fmt.Stringer.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeServerError:
		return "server_error"
	case OutcomeParseError:
		return "parse_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the classified result of one order submission.
type Outcome struct {
	Kind OutcomeKind

	// Result is set for OutcomeOK.
	Result OrderResult

	// StatusCode is the HTTP status, zero for OutcomeTransportError.
	StatusCode int

	// Body is the raw reply body.
	Body []byte

	// Err is the transport or decoding error, if any.
	Err error
}

var errNotObject = errors.New("response is not a JSON object")

// Classify turns the last submission response into an [Outcome].
// received is false when no attempt produced an HTTP reply.
func Classify(resp remote.Response, received bool) Outcome {
	if !received || resp.Error != nil {
		return Outcome{Kind: OutcomeTransportError, Err: resp.Error}
	}

	if resp.StatusCode != http.StatusOK {
		return Outcome{Kind: OutcomeServerError, StatusCode: resp.StatusCode, Body: resp.Body}
	}

	// null, arrays and scalars decode without error but are not order results
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || body[0] != '{' {
		return Outcome{Kind: OutcomeParseError, StatusCode: resp.StatusCode, Body: resp.Body, Err: errNotObject}
	}

	var result OrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return Outcome{Kind: OutcomeParseError, StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
	}

	return Outcome{Kind: OutcomeOK, Result: result, StatusCode: resp.StatusCode, Body: resp.Body}
}

// Step is what a worker does after an iteration.
type Step struct {
	State   State
	Sleep   time.Duration
	Message string
}

// Decide maps an outcome to the next step. It is pure: now is the only
// clock input.
func Decide(o Outcome, now time.Time) Step {
	switch o.Kind {
	case OutcomeTransportError:
		msg := "no HTTP reply"
		if o.Err != nil {
			msg = fmt.Sprintf("no HTTP reply: %v", o.Err)
		}
		return Step{State: StateHardFailed, Sleep: HardFailureCooldown, Message: msg}

	case OutcomeServerError:
		return Step{
			State:   StateHardFailed,
			Sleep:   HardFailureCooldown,
			Message: fmt.Sprintf("HTTP %d: %s", o.StatusCode, truncate(o.Body, 100)),
		}

	case OutcomeParseError:
		return Step{
			State:   StateHardFailed,
			Sleep:   HardFailureCooldown,
			Message: fmt.Sprintf("bad json: %s", truncate(o.Body, 100)),
		}

	case OutcomeOK:
		if !o.Result.Success {
			msg := o.Result.MessageText()
			if msg == "" {
				msg = "unknown error"
			}
			return Step{State: StateSoftFailed, Sleep: DefaultCooldown, Message: msg}
		}

		msg := o.Result.MessageText()
		if msg == "" {
			msg = "order placed"
		}
		return Step{State: StateSucceeded, Sleep: successCooldown(o.Result, now), Message: msg}
	}

	return Step{State: StateHardFailed, Sleep: HardFailureCooldown, Message: "unclassified outcome " + o.Kind.String()}
}

// successCooldown waits until the server's next-available time when it lies
// in the future, and falls back to DefaultCooldown otherwise.
func successCooldown(r OrderResult, now time.Time) time.Duration {
	next, ok := r.NextAvailable()
	if !ok {
		return DefaultCooldown
	}

	wait := next.Sub(now)
	if wait <= 0 {
		return DefaultCooldown
	}
	if wait < MinServerCooldown {
		return MinServerCooldown
	}
	return wait
}

// truncate returns at most n bytes of b as a string.
func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}

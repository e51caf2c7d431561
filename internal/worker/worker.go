package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/freeboost/internal/backoff"
	"github.com/jpalmerr/freeboost/internal/catalog"
	"github.com/jpalmerr/freeboost/internal/remote"
)

const (
	defaultRetries = 5
	defaultTimeout = 30 * time.Second

	// attemptTimeoutStep is added to the base timeout for every attempt.
	attemptTimeoutStep = 5 * time.Second

	// logBodyLimit bounds the body excerpt logged for each attempt.
	logBodyLimit = 150
)

// Session is the shared HTTP session used to submit orders.
// [remote.Client] implements it.
type Session interface {
	EnsureSession(ctx context.Context) error
	PostForm(ctx context.Context, rawURL string, form url.Values, timeout time.Duration) remote.Response
}

// Status is a snapshot of a worker, emitted on every state change.
type Status struct {
	Platform      string
	ServiceID     catalog.ServiceID
	Service       string
	State         State
	Link          string
	Message       string
	StatusCode    int
	Sleep         time.Duration
	NextAttemptAt time.Time
	Iteration     int
	UpdatedAt     time.Time
}

// Reporter receives worker status changes. It is called from the worker's
// goroutine and must be safe for concurrent use across workers.
type Reporter func(Status)

// Options holds the settings shared by every worker of a run.
type Options struct {
	// Platform is the platform id the services belong to.
	Platform string

	// PrimaryLink is the profile/channel/page link.
	PrimaryLink string

	// SecondaryLink is the optional video/post link.
	SecondaryLink string

	// ContentID is attached to every order as videoId when non-empty.
	ContentID string

	// OrderURL is the order endpoint.
	OrderURL string

	// Retries is the number of submission attempts per iteration. Defaults to 5.
	Retries int

	// Timeout is the first attempt's timeout; each attempt adds 5s.
	// Defaults to 30s.
	Timeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Report receives status changes. May be nil.
	Report Reporter

	// Sleep defaults to [backoff.Sleep].
	Sleep backoff.SleepFunc

	// Now defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Retries <= 0 {
		o.Retries = defaultRetries
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Sleep == nil {
		o.Sleep = backoff.Sleep
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Worker runs the order loop for a single service.
type Worker struct {
	session Session
	service catalog.Service
	opts    Options
	logger  *slog.Logger
}

// New creates a [Worker] for service.
func New(session Session, service catalog.Service, opts Options) *Worker {
	opts = opts.withDefaults()
	return &Worker{
		session: session,
		service: service,
		opts:    opts,
		logger: opts.Logger.With(
			"platform", opts.Platform,
			"service_id", string(service.ID),
			"service", service.DisplayName(),
		),
	}
}

// Run loops until ctx is cancelled. An unavailable service is reported as
// skipped and Run returns at once without any network call.
func (w *Worker) Run(ctx context.Context) {
	if !w.service.Available {
		w.logger.Info("service unavailable, skipping")
		w.report(Status{State: StateSkipped, Message: "service unavailable"})
		return
	}

	w.report(Status{State: StateIdle})

	for iteration := 1; ; iteration++ {
		if ctx.Err() != nil {
			w.stop(iteration - 1)
			return
		}

		step := w.iterate(ctx, iteration)
		if ctx.Err() != nil {
			w.stop(iteration)
			return
		}

		w.report(Status{
			State:         StateSleeping,
			Message:       step.Message,
			Sleep:         step.Sleep,
			NextAttemptAt: w.opts.Now().Add(step.Sleep),
			Iteration:     iteration,
		})

		if err := w.opts.Sleep(ctx, step.Sleep); err != nil {
			w.stop(iteration)
			return
		}
	}
}

// iterate performs one submission and returns the resulting step. A panic is
// recovered and turned into a hard failure.
func (w *Worker) iterate(ctx context.Context, iteration int) (step Step) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			w.logger.Error("worker iteration panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			step = Step{
				State:   StateHardFailed,
				Sleep:   HardFailureCooldown,
				Message: fmt.Sprintf("internal error (correlation_id: %s)", correlationID),
			}
			w.report(Status{State: step.State, Message: step.Message, Iteration: iteration})
		}
	}()

	order := Order{
		Service: w.service.ID,
		Link:    SelectLink(w.service.DisplayName(), w.opts.PrimaryLink, w.opts.SecondaryLink),
		UUID:    uuid.NewString(),
		VideoID: w.opts.ContentID,
	}

	w.report(Status{State: StateSubmitting, Link: order.Link, Iteration: iteration})

	resp, received := w.submit(ctx, order.Form())
	outcome := Classify(resp, received)
	step = Decide(outcome, w.opts.Now())

	w.logOutcome(outcome, step, order)
	w.report(Status{
		State:      step.State,
		Link:       order.Link,
		Message:    step.Message,
		StatusCode: outcome.StatusCode,
		Iteration:  iteration,
	})
	return step
}

// submit posts the form with bounded retries. The per-attempt timeout grows
// by 5s each attempt and failed attempts back off 2^attempt seconds. Any HTTP
// reply ends the loop; received is false when none arrived.
func (w *Worker) submit(ctx context.Context, form url.Values) (resp remote.Response, received bool) {
	for attempt := 1; attempt <= w.opts.Retries; attempt++ {
		if err := w.session.EnsureSession(ctx); err != nil {
			resp = remote.Response{Error: err}
		} else {
			timeout := w.opts.Timeout + time.Duration(attempt)*attemptTimeoutStep
			resp = w.session.PostForm(ctx, w.opts.OrderURL, form, timeout)
		}

		if resp.Error == nil {
			w.logger.Info("order attempt",
				"attempt", attempt,
				"status", resp.StatusCode,
				"body", truncate(resp.Body, logBodyLimit),
			)
			return resp, true
		}

		w.logger.Warn("order attempt failed", "attempt", attempt, "error", resp.Error)

		if attempt == w.opts.Retries {
			break
		}
		if err := w.opts.Sleep(ctx, backoff.Exponential(attempt)); err != nil {
			return resp, false
		}
	}
	return resp, false
}

func (w *Worker) logOutcome(o Outcome, step Step, order Order) {
	attrs := []any{
		"state", step.State.String(),
		"link", order.Link,
		"uuid", order.UUID,
		"sleep", step.Sleep.String(),
	}

	switch o.Kind {
	case OutcomeTransportError:
		w.logger.Warn("no HTTP reply", append(attrs, "error", o.Err)...)
	case OutcomeServerError:
		w.logger.Warn("order rejected", append(attrs, "status", o.StatusCode, "body", string(o.Body))...)
	case OutcomeParseError:
		w.logger.Warn("bad json", append(attrs, "body", string(o.Body))...)
	case OutcomeOK:
		if step.State == StateSoftFailed {
			w.logger.Info("server refused order", append(attrs, "message", step.Message)...)
		} else {
			w.logger.Info("order placed", append(attrs, "message", step.Message)...)
		}
	}
}

func (w *Worker) stop(iteration int) {
	w.logger.Info("worker stopped", "iterations", iteration)
	w.report(Status{State: StateStopped, Iteration: iteration})
}

// report fills in the identity fields and forwards s to the reporter.
func (w *Worker) report(s Status) {
	if w.opts.Report == nil {
		return
	}
	s.Platform = w.opts.Platform
	s.ServiceID = w.service.ID
	s.Service = w.service.DisplayName()
	s.UpdatedAt = w.opts.Now()
	w.opts.Report(s)
}

// Package saga runs multi-step workflows over storage that only guarantees
// single-record atomicity. Committed steps are undone in reverse order when a
// later step fails; a compensation that keeps failing after retries parks the
// saga in a terminal state for manual reconciliation.
package saga

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pennypost/internal/middleware"

	"github.com/cenkalti/backoff/v5"
)

// Status is the lifecycle state of a saga execution.
type Status string

const (
	StatusPending            Status = "pending"
	StatusExecuting          Status = "executing"
	StatusCommitted          Status = "committed"
	StatusCompensating       Status = "compensating"
	StatusRolledBack         Status = "rolled_back"
	StatusCompensationFailed Status = "compensation_failed"
)

// Step is one unit of work. Run performs the forward action; Compensate
// undoes it. A nil Compensate marks the step as having no side effect worth
// undoing.
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// CompensationError reports a rollback that could not be completed. The
// forward failure that triggered it and the step whose compensation stuck are
// both carried for the audit record.
type CompensationError struct {
	Saga    string
	Step    string
	Cause   error // the forward error that started the rollback
	Failure error // the compensation error that would not clear
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("saga %s: compensation for step %s failed: %v (while rolling back: %v)", e.Saga, e.Step, e.Failure, e.Cause)
}

func (e *CompensationError) Unwrap() error {
	return e.Failure
}

// Recorder persists the outcome of sagas that did not commit. Implementations
// must tolerate being called with a context that is already cancelled.
type Recorder interface {
	RecordOutcome(ctx context.Context, name string, status Status, failedStep string, cause error)
}

// Coordinator executes sagas. The zero value is not usable; construct with
// NewCoordinator.
type Coordinator struct {
	stepTimeout          time.Duration
	maxCompensationTries uint
	log                  *slog.Logger
	recorder             Recorder
}

type Option func(*Coordinator)

// WithStepTimeout bounds each forward step's execution.
func WithStepTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.stepTimeout = d }
}

// WithCompensationTries sets how many attempts each compensation gets before
// the saga is parked as CompensationFailed.
func WithCompensationTries(n uint) Option {
	return func(c *Coordinator) { c.maxCompensationTries = n }
}

// WithRecorder wires an audit sink for non-committed outcomes.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		stepTimeout:          5 * time.Second,
		maxCompensationTries: 3,
		log:                  middleware.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs the steps in order. On a forward failure it compensates every
// committed step in reverse and returns the forward error. If any
// compensation cannot be completed it returns a *CompensationError instead,
// and the partial state stands until reconciled.
func (c *Coordinator) Execute(ctx context.Context, name string, steps []Step) error {
	c.log.DebugContext(ctx, "saga starting",
		slog.String("saga", name),
		slog.Int("steps", len(steps)),
	)

	committed := make([]Step, 0, len(steps))
	for _, step := range steps {
		if err := c.runStep(ctx, step); err != nil {
			c.log.WarnContext(ctx, "saga step failed",
				slog.String("saga", name),
				slog.String("step", step.Name),
				slog.String("error", err.Error()),
			)
			middleware.SagaStepFailures.WithLabelValues(name, step.Name).Inc()
			return c.compensate(ctx, name, committed, step.Name, err)
		}
		committed = append(committed, step)
	}

	middleware.SagaOutcomes.WithLabelValues(name, string(StatusCommitted)).Inc()
	c.log.InfoContext(ctx, "saga committed", slog.String("saga", name))
	return nil
}

func (c *Coordinator) runStep(ctx context.Context, step Step) error {
	stepCtx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()
	return step.Run(stepCtx)
}

// compensate undoes committed steps newest-first. Compensations run on a
// fresh timeout per attempt and are retried with exponential backoff, since
// giving up leaves real pennies stranded.
func (c *Coordinator) compensate(ctx context.Context, name string, committed []Step, failedStep string, cause error) error {
	// A cancelled request must not abandon a half-done saga.
	ctx = context.WithoutCancel(ctx)

	for i := len(committed) - 1; i >= 0; i-- {
		step := committed[i]
		if step.Compensate == nil {
			continue
		}

		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, c.stepTimeout)
			defer cancel()
			if cerr := step.Compensate(attemptCtx); cerr != nil {
				middleware.SagaCompensationRetries.WithLabelValues(name, step.Name).Inc()
				return struct{}{}, cerr
			}
			return struct{}{}, nil
		},
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(c.maxCompensationTries),
		)
		if err != nil {
			middleware.SagaOutcomes.WithLabelValues(name, string(StatusCompensationFailed)).Inc()
			c.log.ErrorContext(ctx, "saga compensation failed",
				slog.String("saga", name),
				slog.String("step", step.Name),
				slog.String("error", err.Error()),
				slog.String("cause", cause.Error()),
			)
			compErr := &CompensationError{Saga: name, Step: step.Name, Cause: cause, Failure: err}
			c.record(name, StatusCompensationFailed, step.Name, compErr)
			return compErr
		}

		c.log.InfoContext(ctx, "saga step compensated",
			slog.String("saga", name),
			slog.String("step", step.Name),
		)
	}

	middleware.SagaOutcomes.WithLabelValues(name, string(StatusRolledBack)).Inc()
	c.record(name, StatusRolledBack, failedStep, cause)
	return cause
}

func (c *Coordinator) record(name string, status Status, failedStep string, cause error) {
	if c.recorder == nil {
		return
	}
	// The request context may already be cancelled; the audit write gets its
	// own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.recorder.RecordOutcome(ctx, name, status, failedStep, cause)
}

package saga

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOutcome struct {
	name       string
	status     Status
	failedStep string
	cause      error
}

type stubRecorder struct {
	mu       sync.Mutex
	outcomes []recordedOutcome
}

func (r *stubRecorder) RecordOutcome(_ context.Context, name string, status Status, failedStep string, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, recordedOutcome{name, status, failedStep, cause})
}

func TestCoordinator_Execute_AllStepsCommit(t *testing.T) {
	c := NewCoordinator()
	var order []string

	err := c.Execute(context.Background(), "publish", []Step{
		{
			Name: "first",
			Run:  func(context.Context) error { order = append(order, "first"); return nil },
		},
		{
			Name: "second",
			Run:  func(context.Context) error { order = append(order, "second"); return nil },
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestCoordinator_Execute_CompensatesInReverseOrder(t *testing.T) {
	c := NewCoordinator()
	var order []string
	boom := errors.New("step three broke")

	err := c.Execute(context.Background(), "publish", []Step{
		{
			Name:       "one",
			Run:        func(context.Context) error { order = append(order, "run:one"); return nil },
			Compensate: func(context.Context) error { order = append(order, "undo:one"); return nil },
		},
		{
			Name:       "two",
			Run:        func(context.Context) error { order = append(order, "run:two"); return nil },
			Compensate: func(context.Context) error { order = append(order, "undo:two"); return nil },
		},
		{
			Name: "three",
			Run:  func(context.Context) error { return boom },
		},
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"run:one", "run:two", "undo:two", "undo:one"}, order)
}

func TestCoordinator_Execute_FirstStepFailureNeedsNoCompensation(t *testing.T) {
	c := NewCoordinator()
	compensated := false
	boom := errors.New("no funds")

	err := c.Execute(context.Background(), "like", []Step{
		{
			Name:       "reserve",
			Run:        func(context.Context) error { return boom },
			Compensate: func(context.Context) error { compensated = true; return nil },
		},
	})

	require.ErrorIs(t, err, boom)
	assert.False(t, compensated, "a step that never ran must not be compensated")
}

func TestCoordinator_Execute_CompensationRetriesThenSucceeds(t *testing.T) {
	c := NewCoordinator(WithCompensationTries(3))
	attempts := 0
	boom := errors.New("downstream broke")

	err := c.Execute(context.Background(), "like", []Step{
		{
			Name: "reserve",
			Run:  func(context.Context) error { return nil },
			Compensate: func(context.Context) error {
				attempts++
				if attempts < 3 {
					return errors.New("transient")
				}
				return nil
			},
		},
		{
			Name: "credit",
			Run:  func(context.Context) error { return boom },
		},
	})

	require.ErrorIs(t, err, boom, "saga rolls back cleanly once the retry lands")
	assert.Equal(t, 3, attempts)
}

func TestCoordinator_Execute_CompensationFailureIsTerminal(t *testing.T) {
	rec := &stubRecorder{}
	c := NewCoordinator(WithCompensationTries(2), WithRecorder(rec))
	boom := errors.New("create failed")
	stuck := errors.New("refund endpoint down")

	err := c.Execute(context.Background(), "publish", []Step{
		{
			Name:       "reserve",
			Run:        func(context.Context) error { return nil },
			Compensate: func(context.Context) error { return stuck },
		},
		{
			Name: "create",
			Run:  func(context.Context) error { return boom },
		},
	})

	var compErr *CompensationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "publish", compErr.Saga)
	assert.Equal(t, "reserve", compErr.Step)
	assert.ErrorIs(t, compErr.Cause, boom)

	require.Len(t, rec.outcomes, 1)
	assert.Equal(t, StatusCompensationFailed, rec.outcomes[0].status)
	assert.Equal(t, "reserve", rec.outcomes[0].failedStep)
}

func TestCoordinator_Execute_RolledBackIsRecorded(t *testing.T) {
	rec := &stubRecorder{}
	c := NewCoordinator(WithRecorder(rec))
	boom := errors.New("attach failed")

	err := c.Execute(context.Background(), "publish", []Step{
		{
			Name:       "reserve",
			Run:        func(context.Context) error { return nil },
			Compensate: func(context.Context) error { return nil },
		},
		{
			Name: "attach",
			Run:  func(context.Context) error { return boom },
		},
	})

	require.ErrorIs(t, err, boom)
	require.Len(t, rec.outcomes, 1)
	assert.Equal(t, StatusRolledBack, rec.outcomes[0].status)
	assert.Equal(t, "attach", rec.outcomes[0].failedStep)
	assert.ErrorIs(t, rec.outcomes[0].cause, boom)
}

func TestCoordinator_Execute_StepTimeout(t *testing.T) {
	c := NewCoordinator(WithStepTimeout(20 * time.Millisecond))

	err := c.Execute(context.Background(), "publish", []Step{
		{
			Name: "slow",
			Run: func(ctx context.Context) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
					return nil
				}
			},
		},
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCoordinator_Execute_CompensationOutlivesCancelledRequest(t *testing.T) {
	c := NewCoordinator()
	ctx, cancel := context.WithCancel(context.Background())
	compensated := false
	boom := errors.New("second step failed")

	err := c.Execute(ctx, "like", []Step{
		{
			Name: "reserve",
			Run:  func(context.Context) error { return nil },
			Compensate: func(context.Context) error {
				compensated = true
				return nil
			},
		},
		{
			Name: "credit",
			Run: func(context.Context) error {
				cancel()
				return boom
			},
		},
	})

	require.ErrorIs(t, err, boom)
	assert.True(t, compensated, "rollback must run even after the caller gives up")
}

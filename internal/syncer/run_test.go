package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"dropsync/internal/logger"
	"dropsync/internal/services/shopify"
	"dropsync/internal/services/supplier"
)

func newTestRun(op string, dryRun bool) *Run {
	return NewRun(op, dryRun, logger.New("error"))
}

func TestRun_Counters(t *testing.T) {
	run := newTestRun(OpPublishSweep, false)

	run.RecordSuccess("a")
	run.RecordSuccess("b")
	run.RecordAlreadyDone("c")
	run.RecordFailure("d", errors.New("boom"))

	assert.Equal(t, 4, run.Processed)
	assert.Equal(t, 2, run.Succeeded)
	assert.Equal(t, 1, run.AlreadyDone)
	assert.Equal(t, 1, run.Failed)
}

func TestRun_FinalizedExactlyOnce(t *testing.T) {
	run := newTestRun(OpAudit, false)
	run.Abort(errors.New("fatal"))
	finishedAt := run.FinishedAt

	// Later transitions must not reopen or overwrite the terminal state.
	run.Complete()
	run.Abort(errors.New("other"))

	assert.Equal(t, StateAborted, run.State)
	assert.Equal(t, "fatal", run.Err.Error())
	assert.Equal(t, finishedAt, run.FinishedAt)
}

func TestRun_StateTransitions(t *testing.T) {
	run := newTestRun(OpRepair, true)
	assert.Equal(t, StateInit, run.State)

	run.Enumerating()
	assert.Equal(t, StateEnumerating, run.State)

	run.Processing()
	assert.Equal(t, StateProcessing, run.State)

	run.Complete()
	assert.Equal(t, StateCompleted, run.State)
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"auth expired", fmt.Errorf("wrapped: %w", supplier.ErrAuthExpired), true},
		{"permission denied", fmt.Errorf("wrapped: %w", shopify.ErrPermissionDenied), true},
		{"cancellation", context.Canceled, true},
		{"deadline", context.DeadlineExceeded, true},
		{"terminal supplier code", &supplier.Error{Code: "InvalidSignature"}, true},
		{"recoverable supplier code", &supplier.Error{Code: "DELIVERY_NOT_SUPPORT"}, false},
		{"plain transport error", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

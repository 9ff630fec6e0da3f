package syncer

import (
	"context"
	"errors"
	"time"

	"dropsync/internal/logger"
	"dropsync/internal/services/shopify"
	"dropsync/internal/services/supplier"

	"github.com/google/uuid"
)

// RunState is the lifecycle of one batch operation.
type RunState string

const (
	StateInit        RunState = "init"
	StateEnumerating RunState = "enumerating"
	StateProcessing  RunState = "processing"
	StateAborted     RunState = "aborted"
	StateCompleted   RunState = "completed"
)

// Run owns the counters of one batch operation. Counters only ever grow
// and there is a single writer: the goroutine driving the run.
type Run struct {
	ID        string
	Operation string
	DryRun    bool
	State     RunState

	Processed   int
	Succeeded   int
	AlreadyDone int
	Failed      int

	StartedAt  time.Time
	FinishedAt time.Time
	Err        error

	finalized bool
	logger    *logger.Logger
}

func NewRun(operation string, dryRun bool, log *logger.Logger) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Operation: operation,
		DryRun:    dryRun,
		State:     StateInit,
		StartedAt: time.Now(),
		logger:    log,
	}
}

func (r *Run) Enumerating() { r.State = StateEnumerating }
func (r *Run) Processing()  { r.State = StateProcessing }

func (r *Run) RecordSuccess(item string) {
	r.Processed++
	r.Succeeded++
	r.logger.Debug("run %s: %s ok", r.ID, item)
}

func (r *Run) RecordAlreadyDone(item string) {
	r.Processed++
	r.AlreadyDone++
	r.logger.Debug("run %s: %s already satisfied", r.ID, item)
}

func (r *Run) RecordFailure(item string, err error) {
	r.Processed++
	r.Failed++
	r.logger.Warn("run %s: %s failed: %v", r.ID, item, err)
}

// Abort finalizes the run after a fatal error. The summary still covers
// every item attempted before the abort.
func (r *Run) Abort(err error) {
	if r.finalized {
		return
	}
	r.finalized = true
	r.State = StateAborted
	r.Err = err
	r.FinishedAt = time.Now()
}

func (r *Run) Complete() {
	if r.finalized {
		return
	}
	r.finalized = true
	r.State = StateCompleted
	r.FinishedAt = time.Now()
}

// LogSummary emits the final accounting exactly once per run, aborted or
// not.
func (r *Run) LogSummary() {
	mode := "live"
	if r.DryRun {
		mode = "dry-run"
	}
	r.logger.Info("run %s (%s, %s) %s: processed=%d succeeded=%d already_done=%d failed=%d in %s",
		r.ID, r.Operation, mode, r.State,
		r.Processed, r.Succeeded, r.AlreadyDone, r.Failed,
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	if r.Err != nil {
		r.logger.Error("run %s aborted: %v", r.ID, r.Err)
	}
}

// IsFatal reports whether an error class dooms every remaining item of a
// run identically: expired supplier auth, missing platform permission, or
// caller cancellation. Everything else is a per-item failure.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, supplier.ErrAuthExpired) || errors.Is(err, shopify.ErrPermissionDenied) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if se, ok := supplier.AsSupplierError(err); ok && se.Terminal() {
		return true
	}
	return false
}

package syncer

import (
	"context"
	"fmt"

	"dropsync/internal/database"
	"dropsync/internal/logger"
	"dropsync/internal/models"
	"dropsync/internal/services/supplier"

	"github.com/google/uuid"
)

// Operation names accepted by the controller.
const (
	OpPublishSweep = "publish-sweep"
	OpAudit        = "audit"
	OpRepair       = "repair"
	OpAvailability = "availability"
)

// Options configure one run.
type Options struct {
	DryRun bool
	Limit  int
}

// Controller drives one batch operation end to end: run lifecycle,
// fatal-vs-recoverable classification, persistence and the final summary.
type Controller struct {
	engine   *Engine
	resolver *supplier.Resolver
	db       *database.Database
	events   *EventWriter
	logger   *logger.Logger
}

// NewController wires the collaborators. db and events may be nil: CLI
// diagnostic runs work without persistence or a broker.
func NewController(engine *Engine, resolver *supplier.Resolver, db *database.Database, events *EventWriter, log *logger.Logger) *Controller {
	return &Controller{
		engine:   engine,
		resolver: resolver,
		db:       db,
		events:   events,
		logger:   log,
	}
}

// RunOperation executes one named batch operation. The returned run is
// always finalized and its summary logged, even when the operation
// aborted; err is non-nil only for fatal/aborted runs.
func (c *Controller) RunOperation(ctx context.Context, operation string, opts Options) (*Run, error) {
	run := NewRun(operation, opts.DryRun, c.logger)

	var err error
	switch operation {
	case OpPublishSweep:
		err = c.engine.PublishSweep(ctx, run, opts.Limit)
	case OpAudit:
		err = c.engine.PublicationAudit(ctx, run, opts.Limit)
	case OpRepair:
		err = c.engine.RepairDescriptions(ctx, run, opts.Limit)
	default:
		err = fmt.Errorf("unknown operation %q", operation)
	}

	if err != nil {
		run.Abort(err)
	} else {
		run.Complete()
	}

	run.LogSummary()
	c.persistRun(run)
	if c.events != nil {
		c.events.PublishRunFinished(ctx, run)
	}
	return run, err
}

// DiagnoseAvailability probes one product across the candidate countries
// and stores every attempt for later inspection.
func (c *Controller) DiagnoseAvailability(ctx context.Context, productID string) (*supplier.Resolution, error) {
	if c.resolver == nil {
		return nil, fmt.Errorf("supplier credentials not configured")
	}
	resolution, err := c.resolver.Resolve(ctx, productID)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	c.persistProbes(runID, resolution.Attempts)

	if resolution.Found() {
		c.logger.Info("product %s: shippable from %s", productID, resolution.Listing.Country)
	} else {
		c.logger.Info("product %s: no candidate country serves it (%d attempts)", productID, len(resolution.Attempts))
	}
	return resolution, nil
}

func (c *Controller) persistRun(run *Run) {
	if c.db == nil {
		return
	}
	record := models.SyncRun{
		ID:          run.ID,
		Operation:   run.Operation,
		DryRun:      run.DryRun,
		State:       string(run.State),
		Processed:   run.Processed,
		Succeeded:   run.Succeeded,
		AlreadyDone: run.AlreadyDone,
		Failed:      run.Failed,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
	}
	if run.Err != nil {
		record.Error = run.Err.Error()
	}
	if err := c.db.DB.Create(&record).Error; err != nil {
		c.logger.Error("failed to persist run %s: %v", run.ID, err)
	}
}

func (c *Controller) persistProbes(runID string, attempts []supplier.Probe) {
	if c.db == nil {
		return
	}
	for _, probe := range attempts {
		record := models.ProbeAttempt{
			RunID:        runID,
			ProductID:    probe.ProductID,
			Country:      probe.Country,
			Outcome:      string(probe.Outcome),
			Code:         probe.Code,
			Message:      probe.Message,
			Title:        probe.Title,
			ImageCount:   probe.ImageCount,
			VariantCount: probe.VariantCount,
		}
		if err := c.db.DB.Create(&record).Error; err != nil {
			c.logger.Error("failed to persist probe %s/%s: %v", probe.ProductID, probe.Country, err)
		}
	}
}

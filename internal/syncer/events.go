package syncer

import (
	"context"
	"encoding/json"
	"time"

	"dropsync/internal/logger"

	"github.com/segmentio/kafka-go"
)

const eventsTopic = "sync-events"

// EventWriter publishes run lifecycle events so downstream consumers
// (feed rebuilds, alerting) can react to catalog changes.
type EventWriter struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewEventWriter(brokers string, logger *logger.Logger) *EventWriter {
	return &EventWriter{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Topic:    eventsTopic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

type runEvent struct {
	Type        string    `json:"type"`
	RunID       string    `json:"run_id"`
	Operation   string    `json:"operation"`
	DryRun      bool      `json:"dry_run"`
	State       string    `json:"state"`
	Processed   int       `json:"processed"`
	Succeeded   int       `json:"succeeded"`
	AlreadyDone int       `json:"already_done"`
	Failed      int       `json:"failed"`
	Timestamp   time.Time `json:"timestamp"`
}

// PublishRunFinished emits the final accounting of a run. Failures here
// are logged, never propagated: event delivery must not change a run's
// outcome.
func (w *EventWriter) PublishRunFinished(ctx context.Context, run *Run) {
	event := runEvent{
		Type:        "sync.run.finished",
		RunID:       run.ID,
		Operation:   run.Operation,
		DryRun:      run.DryRun,
		State:       string(run.State),
		Processed:   run.Processed,
		Succeeded:   run.Succeeded,
		AlreadyDone: run.AlreadyDone,
		Failed:      run.Failed,
		Timestamp:   time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		w.logger.Error("failed to marshal run event: %v", err)
		return
	}

	err = w.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(run.ID),
		Value: value,
	})
	if err != nil {
		w.logger.Error("failed to publish run event: %v", err)
	}
}

func (w *EventWriter) Close() error {
	return w.writer.Close()
}

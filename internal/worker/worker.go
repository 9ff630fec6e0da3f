package worker

import (
	"context"
	"encoding/json"
	"time"

	"dropsync/internal/config"
	"dropsync/internal/logger"
	"dropsync/internal/syncer"

	"github.com/segmentio/kafka-go"
)

// Worker consumes sync requests from Kafka and hands them to the run
// controller. Requests are processed strictly one at a time: both external
// APIs rate-limit per account, so parallel runs only burn the budget.
type Worker struct {
	config     *config.Config
	logger     *logger.Logger
	reader     *kafka.Reader
	controller *syncer.Controller
}

func New(cfg *config.Config, logger *logger.Logger, controller *syncer.Controller) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "dropsync-worker",
		Topic:          "sync-requests",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:     cfg,
		logger:     logger,
		reader:     reader,
		controller: controller,
	}
}

// SyncRequest is one queued sync operation.
type SyncRequest struct {
	Operation string `json:"operation"`
	ProductID string `json:"product_id,omitempty"`
	DryRun    bool   `json:"dry_run"`
	Limit     int    `json:"limit"`
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for sync requests...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var request SyncRequest
		if err := json.Unmarshal(message.Value, &request); err != nil {
			w.logger.Error("Failed to parse sync request: %v", err)
			continue
		}

		w.handle(request)
	}
}

func (w *Worker) handle(request SyncRequest) {
	ctx := context.Background()

	if request.Operation == syncer.OpAvailability {
		if request.ProductID == "" {
			w.logger.Error("availability request without product_id")
			return
		}
		if _, err := w.controller.DiagnoseAvailability(ctx, request.ProductID); err != nil {
			w.logger.Error("availability diagnosis failed: %v", err)
		}
		return
	}

	_, err := w.controller.RunOperation(ctx, request.Operation, syncer.Options{
		DryRun: request.DryRun,
		Limit:  request.Limit,
	})
	if err != nil {
		w.logger.Error("sync run failed: %v", err)
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}

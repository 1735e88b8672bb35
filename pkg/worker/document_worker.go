package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"pagemonk/internal/models"
	"pagemonk/internal/service/document"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/queue"
)

// DocumentWorker consumes parse tasks and runs them through the document
// service.
type DocumentWorker struct {
	BaseWorker
	docService document.Service
}

func NewDocumentWorker(cfg *Config, docService document.Service, log logger.Logger) (*DocumentWorker, error) {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 5
	}
	if cfg.Queues == nil {
		cfg.Queues = map[string]int{"default": 1}
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &DocumentWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		docService: docService,
	}

	w.registerHandlers()
	return w, nil
}

func (w *DocumentWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypeDocumentParse, w.handleDocumentParse)
}

func (w *DocumentWorker) handleDocumentParse(ctx context.Context, t *asynq.Task) error {
	var payload queue.ParsePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("Failed to unmarshal task payload",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.DocumentID == "" {
		return fmt.Errorf("task payload missing document id: %w", asynq.SkipRetry)
	}

	w.logger.Info("Processing parse task",
		logger.String("documentId", payload.DocumentID),
	)

	doc, err := w.docService.Parse(ctx, payload.DocumentID)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			w.logger.Warn("Document vanished before parse",
				logger.String("documentId", payload.DocumentID),
			)
			return fmt.Errorf("document not found: %w", asynq.SkipRetry)
		}
		return err
	}

	w.logger.Info("Parse task finished",
		logger.String("documentId", doc.ID),
		logger.String("status", string(doc.Status)),
	)
	return nil
}

func (w *DocumentWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

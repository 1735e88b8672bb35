package worker

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"

	"pagemonk/pkg/logger"
)

type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

type Config struct {
	RedisAddr   string         `yaml:"redis_addr"`
	RedisDB     int            `yaml:"redis_db"`
	Concurrency int            `yaml:"concurrency"`
	Queues      map[string]int `yaml:"queues"`
}

type BaseWorker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	logger   logger.Logger
	stopOnce sync.Once
	stopChan chan struct{}
}

// Stop is safe to call more than once; the signal path and the ctx watcher
// both reach it during shutdown.
func (w *BaseWorker) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.server.Stop()
	})
	return nil
}

// Package queue provides the optional Redis-backed task queue used when
// parsing is moved off the request path.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskTypeDocumentParse runs the extract+structure pipeline for one document.
const TaskTypeDocumentParse = "document:parse"

// ParsePayload is the task body: just the document id, the row itself holds
// all state.
type ParsePayload struct {
	DocumentID string `json:"documentId"`
}

// Queue enqueues pipeline work for the worker process.
type Queue interface {
	EnqueueParse(ctx context.Context, documentID string) error
	Close() error
}

type Config struct {
	RedisAddr      string        `yaml:"redis_addr"`
	RedisDB        int           `yaml:"redis_db"`
	MaxRetries     int           `yaml:"max_retries"`
	ProcessTimeout time.Duration `yaml:"process_timeout"`
}

// AsynqQueue implements Queue on asynq.
type AsynqQueue struct {
	client *asynq.Client
	redis  *redis.Client
	config *Config
}

func NewAsynqQueue(cfg *Config) (*AsynqQueue, error) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.ProcessTimeout == 0 {
		cfg.ProcessTimeout = 30 * time.Minute
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	return &AsynqQueue{
		client: client,
		redis:  redisClient,
		config: cfg,
	}, nil
}

// EnqueueParse queues a parse run for the document. The document id doubles
// as the task id, so a parse already waiting in the queue absorbs duplicate
// requests.
func (q *AsynqQueue) EnqueueParse(ctx context.Context, documentID string) error {
	payload, err := json.Marshal(ParsePayload{DocumentID: documentID})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeDocumentParse, payload,
		asynq.TaskID(documentID),
		asynq.MaxRetry(q.config.MaxRetries),
		asynq.Timeout(q.config.ProcessTimeout),
		asynq.Queue("default"),
	)

	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

func (q *AsynqQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}

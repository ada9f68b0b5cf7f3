package tagging

import (
	"context"

	"github.com/hibiken/asynq"

	"docstore/internal/config"
	"docstore/internal/logger"
)

// RedisOpt converts the shared Redis settings into asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewServer builds the asynq server that consumes the tagging queue.
// Tasks that fail are archived straight away since tagging tasks never retry.
func NewServer(redis asynq.RedisClientOpt, cfg config.WorkerConfig, log *logger.Logger) *asynq.Server {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	log = log.Named("worker")

	return asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      log,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			taskID, _ := asynq.GetTaskID(ctx)
			log.Errorw("task_failed", "task_type", task.Type(), "task_id", taskID, "error", err)
		}),
	})
}

package tagging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"docstore/internal/model"
)

// TaskTagDocument is enqueued once per upload and per manual retag.
const TaskTagDocument = "document:tag"

// DefaultQueue is the asynq queue tagging tasks are sent to.
const DefaultQueue = "tagging"

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client enqueues tagging tasks. Tasks are attempted once; a failed task is
// archived by asynq instead of being retried.
type Client struct {
	enq   enqueuer
	queue string
}

// NewClient wraps an asynq client. An empty queue selects DefaultQueue.
func NewClient(c *asynq.Client, queue string) *Client {
	return newClient(c, queue)
}

func newClient(enq enqueuer, queue string) *Client {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Client{enq: enq, queue: queue}
}

// EnqueueTagging returns the asynq task id.
func (c *Client) EnqueueTagging(ctx context.Context, req model.TaggingRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(TaskTagDocument, data)
	info, err := c.enq.EnqueueContext(ctx, task, asynq.MaxRetry(0), asynq.Queue(c.queue))
	if err != nil {
		return "", fmt.Errorf("enqueue tagging task: %w", err)
	}
	return info.ID, nil
}

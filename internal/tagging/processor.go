package tagging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docstore/internal/events"
	"docstore/internal/logger"
	"docstore/internal/model"
	"docstore/internal/repository"
)

const tracerName = "docstore/tagging"

// Processor is plugged into the asynq worker loop. Every processed task
// leaves a TaggingRun row behind; a task whose row cannot be written is
// archived by asynq and stays visible there.
type Processor struct {
	workflow  *Workflow
	runs      repository.TaggingRunRepository
	publisher events.Publisher
	metrics   *Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewProcessor constructs a worker processor. publisher and metrics may be nil.
func NewProcessor(wf *Workflow, runs repository.TaggingRunRepository, publisher events.Publisher, metrics *Metrics, log *logger.Logger) *Processor {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{
		workflow:  wf,
		runs:      runs,
		publisher: publisher,
		metrics:   metrics,
		log:       log.Named("tagging_worker"),
		now:       time.Now,
	}
}

// Handler registers the tagging task handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTagDocument, p.ProcessTask)
	return mux
}

func (p *Processor) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var req model.TaggingRequest
	if err := json.Unmarshal(task.Payload(), &req); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	taskID, _ := asynq.GetTaskID(ctx)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "tagging.run",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("document.id", req.DocumentID),
			attribute.String("task.id", taskID),
		),
	)
	defer span.End()

	started := p.now().UTC()
	res := p.workflow.Run(ctx, req)
	span.SetAttributes(
		attribute.String("tagging.outcome", string(res.Outcome)),
		attribute.String("tagging.state", string(res.Reached)),
	)
	if res.Outcome == model.OutcomeFailed {
		span.SetStatus(codes.Error, res.Message)
	}

	run := &model.TaggingRun{
		DocumentID: req.DocumentID,
		TaskID:     taskID,
		State:      string(res.Reached),
		Outcome:    res.Outcome,
		Message:    res.Message,
		Tags:       res.Tags,
		StartedAt:  started,
		FinishedAt: p.now().UTC(),
	}
	if run.Tags == nil {
		run.Tags = []string{}
	}

	p.metrics.finished(res.Outcome)
	p.log.Infow("tagging_finished",
		"document_id", req.DocumentID,
		"task_id", taskID,
		"outcome", res.Outcome,
		"message", res.Message,
		"latency_ms", run.FinishedAt.Sub(started).Milliseconds(),
	)

	if err := p.runs.Record(ctx, run); err != nil {
		span.RecordError(err)
		p.log.Errorw("tagging_ack_failed", "document_id", req.DocumentID, "task_id", taskID, "error", err)
		return fmt.Errorf("record tagging run: %v: %w", err, asynq.SkipRetry)
	}

	ev := events.Event{
		Type:       events.TypeDocumentTagged,
		DocumentID: req.DocumentID,
		OwnerID:    req.OwnerID,
		Data: map[string]any{
			"outcome": res.Outcome,
			"tags":    run.Tags,
		},
		At: run.FinishedAt,
	}
	if err := p.publisher.Publish(ctx, ev); err != nil {
		p.log.Warnw("event_publish_failed", "type", ev.Type, "document_id", req.DocumentID, "error", err)
	}
	return nil
}

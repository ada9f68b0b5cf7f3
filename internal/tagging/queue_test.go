package tagging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docstore/internal/events"
	"docstore/internal/logger"
	"docstore/internal/model"
	repoMocks "docstore/internal/repository/mocks"
)

type recordingEnqueuer struct {
	task *asynq.Task
	opts []asynq.Option
	err  error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	r.task, r.opts = task, opts
	if r.err != nil {
		return nil, r.err
	}
	return &asynq.TaskInfo{ID: "task-42", Queue: "tagging"}, nil
}

func TestClientEnqueueTagging(t *testing.T) {
	enq := &recordingEnqueuer{}
	c := newClient(enq, "")
	req := model.TaggingRequest{DocumentID: "d1", OwnerID: "u1", Title: "t", Preview: "p"}

	id, err := c.EnqueueTagging(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "task-42", id)

	assert.Equal(t, TaskTagDocument, enq.task.Type())
	var got model.TaggingRequest
	require.NoError(t, json.Unmarshal(enq.task.Payload(), &got))
	assert.Equal(t, req, got)

	var (
		maxRetry = -1
		queue    string
	)
	for _, o := range enq.opts {
		switch o.Type() {
		case asynq.MaxRetryOpt:
			maxRetry = o.Value().(int)
		case asynq.QueueOpt:
			queue = o.Value().(string)
		}
	}
	assert.Equal(t, 0, maxRetry)
	assert.Equal(t, DefaultQueue, queue)
}

func TestClientEnqueueError(t *testing.T) {
	c := newClient(&recordingEnqueuer{err: errors.New("redis down")}, "custom")
	_, err := c.EnqueueTagging(context.Background(), model.TaggingRequest{DocumentID: "d1"})
	assert.EqualError(t, err, "enqueue tagging task: redis down")
}

func newTestProcessor(t *testing.T, answer string, runs *repoMocks.MockTaggingRunRepository, tags *repoMocks.MockTagRepository) (*Processor, *events.Hub, *Metrics) {
	t.Helper()
	hub := events.NewHub()
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	wf := NewWorkflow(&fakeLLM{answer: answer}, tags, logger.Nop())
	p := NewProcessor(wf, runs, hub, metrics, logger.Nop())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }
	return p, hub, metrics
}

func taggingTask(t *testing.T, req model.TaggingRequest) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return asynq.NewTask(TaskTagDocument, data)
}

func TestProcessorRecordsRun(t *testing.T) {
	ctx := context.Background()
	mRuns := new(repoMocks.MockTaggingRunRepository)
	mTags := new(repoMocks.MockTagRepository)
	p, hub, metrics := newTestProcessor(t, "go, databases", mRuns, mTags)
	client := hub.Subscribe("u1")

	mTags.On("ListNames", ctx).Return([]string{}, nil)
	mTags.On("ApplyTags", ctx, "d1", []string{"go", "databases"}).Return([]model.Tag{}, nil)
	mRuns.On("Record", ctx, mock.MatchedBy(func(r *model.TaggingRun) bool {
		return r.DocumentID == "d1" &&
			r.Outcome == model.OutcomeApplied &&
			r.State == string(StateDone) &&
			len(r.Tags) == 2 &&
			!r.FinishedAt.IsZero()
	})).Return(nil)

	err := p.ProcessTask(ctx, taggingTask(t, model.TaggingRequest{DocumentID: "d1", OwnerID: "u1", Title: "t"}))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("applied")))
	select {
	case ev := <-client.Events():
		assert.Equal(t, events.TypeDocumentTagged, ev.Type)
		assert.Equal(t, model.OutcomeApplied, ev.Data["outcome"])
	default:
		t.Fatal("expected a tagged event")
	}
	mRuns.AssertExpectations(t)
}

func TestProcessorFailedRunIsStillAcknowledged(t *testing.T) {
	ctx := context.Background()
	mRuns := new(repoMocks.MockTaggingRunRepository)
	mTags := new(repoMocks.MockTagRepository)
	p, _, metrics := newTestProcessor(t, "go", mRuns, mTags)

	mTags.On("ListNames", ctx).Return([]string{}, nil)
	mTags.On("ApplyTags", ctx, "d1", mock.Anything).Return(nil, errors.New("boom"))
	mRuns.On("Record", ctx, mock.MatchedBy(func(r *model.TaggingRun) bool {
		return r.Outcome == model.OutcomeFailed && r.Message == "Error applying tags: boom"
	})).Return(nil)

	err := p.ProcessTask(ctx, taggingTask(t, model.TaggingRequest{DocumentID: "d1", OwnerID: "u1"}))
	assert.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("failed")))
}

func TestProcessorDeadLettersWhenAckFails(t *testing.T) {
	ctx := context.Background()
	mRuns := new(repoMocks.MockTaggingRunRepository)
	mTags := new(repoMocks.MockTagRepository)
	p, hub, _ := newTestProcessor(t, "go", mRuns, mTags)
	client := hub.Subscribe("u1")

	mTags.On("ListNames", ctx).Return([]string{}, nil)
	mTags.On("ApplyTags", ctx, "d1", mock.Anything).Return([]model.Tag{}, nil)
	mRuns.On("Record", ctx, mock.Anything).Return(errors.New("db gone"))

	err := p.ProcessTask(ctx, taggingTask(t, model.TaggingRequest{DocumentID: "d1", OwnerID: "u1"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Contains(t, err.Error(), "db gone")
	assert.Empty(t, client.Events())
}

func TestProcessorRejectsBadPayload(t *testing.T) {
	p, _, _ := newTestProcessor(t, "", new(repoMocks.MockTaggingRunRepository), new(repoMocks.MockTagRepository))
	err := p.ProcessTask(context.Background(), asynq.NewTask(TaskTagDocument, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

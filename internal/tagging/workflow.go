// Package tagging suggests tags for a document with an LLM and applies them.
// The workflow runs in the worker, never on the upload request path.
package tagging

import (
	"context"
	"errors"
	"fmt"

	"docstore/internal/llm"
	"docstore/internal/logger"
	"docstore/internal/model"
	"docstore/internal/repository"
)

// State is a step of the workflow. Runs move strictly start, generate, apply, done.
type State string

const (
	StateStart    State = "start"
	StateGenerate State = "generate"
	StateApply    State = "apply"
	StateDone     State = "done"
)

// Result is the terminal report of a run. Failures are described in Message,
// never returned as errors.
type Result struct {
	DocumentID string
	Outcome    model.TaggingOutcome
	// Reached is done for applied runs and the failing step otherwise.
	Reached State
	Message string
	Tags    []string
}

// Workflow holds the collaborators of the tagging steps.
type Workflow struct {
	llm  llm.Completer
	tags repository.TagRepository
	log  *logger.Logger
}

func NewWorkflow(c llm.Completer, tags repository.TagRepository, log *logger.Logger) *Workflow {
	if log == nil {
		log = logger.Nop()
	}
	return &Workflow{llm: c, tags: tags, log: log.Named("tagging")}
}

// Run drives one request through every step and always returns a Result.
func (w *Workflow) Run(ctx context.Context, req model.TaggingRequest) Result {
	res := Result{DocumentID: req.DocumentID, Reached: StateStart}
	w.log.Infow("tagging_started", "document_id", req.DocumentID)

	res.Reached = StateGenerate
	tags, err := w.generate(ctx, req)
	if err != nil {
		res.Outcome = model.OutcomeFailed
		res.Message = fmt.Sprintf("Error generating tags: %v", err)
		w.log.Errorw("tagging_generate_failed", "document_id", req.DocumentID, "error", err)
		return res
	}
	res.Tags = tags
	w.log.Infow("tagging_generated", "document_id", req.DocumentID, "tags", tags)

	res.Reached = StateApply
	res.Outcome, res.Message = w.apply(ctx, req.DocumentID, tags)
	if res.Outcome == model.OutcomeApplied {
		res.Reached = StateDone
	}
	return res
}

func (w *Workflow) generate(ctx context.Context, req model.TaggingRequest) ([]string, error) {
	existing, err := w.tags.ListNames(ctx)
	if err != nil {
		w.log.Errorw("tagging_vocabulary_failed", "document_id", req.DocumentID, "error", err)
		existing = nil
	}
	raw, err := w.llm.Complete(ctx, BuildPrompt(req.Title, req.Preview, existing))
	if err != nil {
		return nil, err
	}
	return ParseTags(raw), nil
}

func (w *Workflow) apply(ctx context.Context, documentID string, tags []string) (model.TaggingOutcome, string) {
	_, err := w.tags.ApplyTags(ctx, documentID, tags)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		w.log.Errorw("tagging_document_missing", "document_id", documentID)
		return model.OutcomeNotFound, "Document not found"
	case err != nil:
		w.log.Errorw("tagging_apply_failed", "document_id", documentID, "error", err)
		return model.OutcomeFailed, fmt.Sprintf("Error applying tags: %v", err)
	}
	w.log.Infow("tagging_applied", "document_id", documentID, "tags", tags)
	return model.OutcomeApplied, fmt.Sprintf("Successfully applied tags to document %s", documentID)
}

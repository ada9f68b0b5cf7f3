package model

import "time"

// TaggingOutcome is the terminal result of one tagging workflow run.
type TaggingOutcome string

const (
	OutcomeApplied  TaggingOutcome = "applied"
	OutcomeNotFound TaggingOutcome = "not_found"
	OutcomeFailed   TaggingOutcome = "failed"
)

// TaggingRun acknowledges a processed tagging task.
type TaggingRun struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	TaskID     string         `json:"task_id"`
	State      string         `json:"state"`
	Outcome    TaggingOutcome `json:"outcome"`
	Message    string         `json:"message"`
	Tags       []string       `json:"tags"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// TaggingRequest is the message handed to the tagging worker. It carries
// everything the first workflow step needs so the worker does not re-read the document.
type TaggingRequest struct {
	DocumentID string `json:"document_id"`
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title"`
	Preview    string `json:"preview,omitempty"`
}

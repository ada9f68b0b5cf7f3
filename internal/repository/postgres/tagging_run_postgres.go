package postgres

import (
	"context"
	"database/sql"
	"strings"

	"docstore/internal/model"
	"docstore/internal/repository"
)

// TaggingRunPostgres is a PostgreSQL implementation of repository.TaggingRunRepository.
// Tags are stored comma-joined; parsed tag names never contain commas.
type TaggingRunPostgres struct {
	db *sql.DB
}

// NewTaggingRunPostgres creates a new TaggingRunPostgres repository.
func NewTaggingRunPostgres(db *sql.DB) *TaggingRunPostgres {
	return &TaggingRunPostgres{db: db}
}

var _ repository.TaggingRunRepository = (*TaggingRunPostgres)(nil)

// Record inserts the run and fills in its generated ID.
func (r *TaggingRunPostgres) Record(ctx context.Context, run *model.TaggingRun) error {
	const q = `
		INSERT INTO tagging_runs (document_id, task_id, state, outcome, message, tags, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, q,
		run.DocumentID, run.TaskID, run.State, run.Outcome, run.Message,
		strings.Join(run.Tags, ","), run.StartedAt, run.FinishedAt,
	).Scan(&run.ID)
}

// ListForDocument returns the most recent runs first.
func (r *TaggingRunPostgres) ListForDocument(ctx context.Context, documentID string, limit int) ([]model.TaggingRun, error) {
	const q = `
		SELECT id, document_id, task_id, state, outcome, message, tags, started_at, finished_at
		FROM tagging_runs
		WHERE document_id = $1
		ORDER BY finished_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, documentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]model.TaggingRun, 0)
	for rows.Next() {
		var (
			run  model.TaggingRun
			tags string
		)
		if err := rows.Scan(&run.ID, &run.DocumentID, &run.TaskID, &run.State, &run.Outcome,
			&run.Message, &tags, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		run.Tags = splitTags(tags)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

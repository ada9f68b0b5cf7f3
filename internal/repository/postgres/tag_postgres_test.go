package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore/internal/model"
	"docstore/internal/repository"
)

func TestTagPostgres_ListNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM tags ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("golang").AddRow("python"))

	names, err := NewTagPostgres(db).ListNames(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "python"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagPostgres_ListForDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM tags t JOIN document_tags dt").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "color"}).
			AddRow("t1", "golang", nil, "#00ADD8"))

	tags, err := NewTagPostgres(db).ListForDocument(context.Background(), "doc-1")

	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Nil(t, tags[0].Description)
	assert.Equal(t, "#00ADD8", *tags[0].Color)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTagPostgres(db)

	mock.ExpectQuery("INSERT INTO tags").
		WithArgs("golang", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
	tag, err := repo.Create(context.Background(), &model.Tag{Name: "golang"})
	require.NoError(t, err)
	assert.Equal(t, "t1", tag.ID)

	mock.ExpectQuery("INSERT INTO tags").
		WithArgs("golang", nil, nil).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err = repo.Create(context.Background(), &model.Tag{Name: "golang"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagPostgres_ApplyTags(t *testing.T) {
	ctx := context.Background()
	upsert := regexp.QuoteMeta("INSERT INTO tags (name) VALUES ($1)")
	link := regexp.QuoteMeta("INSERT INTO document_tags (document_id, tag_id) VALUES ($1, $2)")

	t.Run("reuses and creates in one commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(upsert).WithArgs("technology").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-existing"))
		mock.ExpectExec(link).WithArgs("doc-1", "t-existing").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(upsert).WithArgs("python").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-new"))
		mock.ExpectExec(link).WithArgs("doc-1", "t-new").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tags, err := NewTagPostgres(db).ApplyTags(ctx, "doc-1", []string{"technology", "python"})

		require.NoError(t, err)
		assert.Equal(t, []model.Tag{{ID: "t-existing", Name: "technology"}, {ID: "t-new", Name: "python"}}, tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("document gone", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		tags, err := NewTagPostgres(db).ApplyTags(ctx, "doc-1", []string{"x"})

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("link failure rolls back everything", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(upsert).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
		mock.ExpectExec(link).WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		_, err = NewTagPostgres(db).ApplyTags(ctx, "doc-1", []string{"x"})

		assert.EqualError(t, err, "deadlock detected")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		tags, err := NewTagPostgres(db).ApplyTags(ctx, "doc-1", []string{"x"})

		assert.EqualError(t, err, "begin tx: too many connections")
		assert.Nil(t, tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthorPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuthorPostgres(db)
	ctx := context.Background()
	now := time.Now()
	email := "ada@example.com"

	mock.ExpectQuery("INSERT INTO authors").
		WithArgs("Ada", "ada@example.com", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a1", now))
	a, err := repo.Create(ctx, &model.Author{Name: "Ada", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)

	mock.ExpectExec("INSERT INTO document_authors").
		WithArgs("doc-1", "missing").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, repo.AttachToDocument(ctx, "doc-1", "missing"), repository.ErrNotFound)

	mock.ExpectQuery("SELECT (.+) FROM authors a JOIN document_authors da").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "bio", "created_at"}).
			AddRow("a1", "Ada", "ada@example.com", nil, now))
	authors, err := repo.ListForDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Nil(t, authors[0].Bio)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaggingRunPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTaggingRunPostgres(db)
	ctx := context.Background()
	now := time.Now()

	run := &model.TaggingRun{
		DocumentID: "doc-1",
		TaskID:     "task-1",
		State:      "done",
		Outcome:    model.OutcomeApplied,
		Message:    "Successfully applied tags to document doc-1",
		Tags:       []string{"technology", "python"},
		StartedAt:  now,
		FinishedAt: now,
	}
	mock.ExpectQuery("INSERT INTO tagging_runs").
		WithArgs("doc-1", "task-1", "done", "applied", run.Message, "technology,python", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("run-1"))
	require.NoError(t, repo.Record(ctx, run))
	assert.Equal(t, "run-1", run.ID)

	mock.ExpectQuery("SELECT (.+) FROM tagging_runs").
		WithArgs("doc-1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "task_id", "state", "outcome", "message", "tags", "started_at", "finished_at"}).
			AddRow("run-1", "doc-1", "task-1", "done", "applied", "ok", "technology,python", now, now).
			AddRow("run-0", "doc-1", "task-0", "done", "failed", "Error applying tags: boom", "", now, now))
	runs, err := repo.ListForDocument(ctx, "doc-1", 5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, []string{"technology", "python"}, runs[0].Tags)
	assert.Empty(t, runs[1].Tags)
	assert.Equal(t, model.OutcomeFailed, runs[1].Outcome)

	assert.NoError(t, mock.ExpectationsWereMet())
}

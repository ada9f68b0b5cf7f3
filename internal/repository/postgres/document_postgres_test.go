package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore/internal/model"
	"docstore/internal/repository"
)

func anyArgs(n int) []driver.Value {
	out := make([]driver.Value, n)
	for i := range out {
		out[i] = sqlmock.AnyArg()
	}
	return out
}

var documentColumnNames = []string{
	"id", "title", "description", "document_type", "status",
	"file_path", "file_name", "file_size", "mime_type", "checksum",
	"is_public", "download_count", "owner_id", "payload_kind",
	"text_encoding", "text_line_count", "text_word_count", "text_character_count",
	"text_language", "text_content_preview",
	"pdf_page_count", "pdf_version", "pdf_is_encrypted", "pdf_is_searchable",
	"pdf_title", "pdf_author", "pdf_subject", "pdf_creator", "pdf_producer",
	"pdf_creation_date", "pdf_modification_date", "pdf_text_preview",
	"created_at", "updated_at", "current_version",
}

func textDocumentRow(rows *sqlmock.Rows, id string, now time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, "notes", nil, "text", "draft",
		"owner-1/2026/10/abc.txt", "notes.txt", 23, "text/plain", "deadbeef",
		false, 0, "owner-1", "text",
		"utf-8", 2, 3, 23, nil, "Hello world\nSecond line",
		nil, nil, false, true, nil, nil, nil, nil, nil, nil, nil, nil,
		now, now, 1,
	)
}

func pdfDocumentRow(rows *sqlmock.Rows, id string, now time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, "report", "quarterly", "pdf", "published",
		"owner-1/2026/10/def.pdf", "report.pdf", 4096, "application/pdf", "cafebabe",
		true, 7, "owner-1", "pdf",
		nil, nil, nil, nil, nil, nil,
		12, "1.7", false, true, "Q3", "Finance", nil, nil, "pdfTeX", now, nil, "Revenue grew",
		now, now, 3,
	)
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	lines, words, chars := 2, 3, 23
	doc := &model.Document{
		ID:       "doc-1",
		Title:    "notes",
		Type:     model.TypeText,
		Status:   model.StatusDraft,
		FilePath: "owner-1/2026/10/abc.txt",
		FileName: "notes.txt",
		FileSize: 23,
		MimeType: "text/plain",
		Checksum: "deadbeef",
		OwnerID:  "owner-1",
		Kind:     model.KindText,
		Text:     &model.TextMetadata{Encoding: "utf-8", LineCount: &lines, WordCount: &words, CharacterCount: &chars},
	}

	now := time.Now().UTC()
	args := anyArgs(31)
	args[0], args[3], args[12], args[13] = "doc-1", "text", "text", "utf-8"
	// pdf_is_encrypted / pdf_is_searchable defaults on a text row
	args[21], args[22] = false, true

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, now, result.CreatedAt)
	assert.Equal(t, 1, result.CurrentVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("text payload", func(t *testing.T) {
		rows := textDocumentRow(sqlmock.NewRows(documentColumnNames), "doc-1", now)
		mock.ExpectQuery("SELECT (.+) FROM documents d WHERE d.id = ?").
			WithArgs("doc-1").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "doc-1")

		require.NoError(t, err)
		assert.Equal(t, model.KindText, doc.Kind)
		assert.Nil(t, doc.PDF)
		require.NotNil(t, doc.Text)
		assert.Equal(t, 3, *doc.Text.WordCount)
		assert.Nil(t, doc.Description)
		assert.Equal(t, 1, doc.CurrentVersion)
	})

	t.Run("pdf payload", func(t *testing.T) {
		rows := pdfDocumentRow(sqlmock.NewRows(documentColumnNames), "doc-2", now)
		mock.ExpectQuery("SELECT (.+) FROM documents d WHERE d.id = ?").
			WithArgs("doc-2").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "doc-2")

		require.NoError(t, err)
		assert.Equal(t, model.KindPDF, doc.Kind)
		assert.Nil(t, doc.Text)
		require.NotNil(t, doc.PDF)
		assert.Equal(t, 12, *doc.PDF.PageCount)
		assert.Equal(t, "Finance", *doc.PDF.Author)
		assert.Nil(t, doc.PDF.Subject)
		assert.Equal(t, "quarterly", *doc.Description)
		assert.Equal(t, 3, doc.CurrentVersion)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents d WHERE d.id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, doc)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("owner scoped with filters", func(t *testing.T) {
		status := model.StatusDraft
		typ := model.TypeText

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM documents d WHERE d.owner_id = $1 AND d.status = $2 AND d.document_type = $3")).
			WithArgs("owner-1", "draft", "text").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := textDocumentRow(sqlmock.NewRows(documentColumnNames), "doc-1", time.Now())
		mock.ExpectQuery("SELECT (.+) FROM documents d WHERE (.+) ORDER BY d.created_at DESC, d.id DESC LIMIT \\$4 OFFSET \\$5").
			WithArgs("owner-1", "draft", "text", 20, 40).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.ListFilter{
			OwnerID:   "owner-1",
			Status:    &status,
			Type:      &typ,
			PageQuery: repository.PageQuery{Limit: 20, Offset: 40},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("boom"))

		res, err := repo.List(ctx, repository.ListFilter{PageQuery: repository.PageQuery{Limit: 10}})

		assert.Error(t, err)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("partial patch", func(t *testing.T) {
		title := "renamed"
		status := model.StatusPublished

		mock.ExpectExec("UPDATE documents SET").
			WithArgs("doc-1", "renamed", nil, "published", nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM documents d WHERE d.id = ?").
			WithArgs("doc-1").
			WillReturnRows(textDocumentRow(sqlmock.NewRows(documentColumnNames), "doc-1", time.Now()))

		doc, err := repo.Update(ctx, "doc-1", repository.DocumentPatch{Title: &title, Status: &status})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		doc, err := repo.Update(ctx, "gone", repository.DocumentPatch{})

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, doc)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "test-id")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_AppendVersion(t *testing.T) {
	ctx := context.Background()
	summary := "fix typos"
	nv := repository.NewVersion{
		DocumentID: "doc-1",
		File: repository.FileState{
			Kind:     model.KindText,
			FilePath: "owner-1/2026/10/new.md",
			FileName: "notes.md",
			FileSize: 42,
			MimeType: "text/markdown",
			Checksum: "newsum",
			Text:     &model.TextMetadata{Encoding: "utf-8"},
		},
		ChangeSummary: &summary,
		CreatedBy:     "owner-1",
	}

	t.Run("snapshots the locked state as the next number", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT file_path, file_size, checksum FROM documents WHERE id = $1 FOR UPDATE")).
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"file_path", "file_size", "checksum"}).
				AddRow("owner-1/2026/09/old.txt", 23, "oldsum"))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version_number), 0) + 1 FROM document_versions")).
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(2))
		mock.ExpectQuery("INSERT INTO document_versions").
			WithArgs("doc-1", 2, "owner-1/2026/09/old.txt", 23, "oldsum", "fix typos", "owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("ver-2", now))
		// document_type is not rewritten; the live file state and payload are
		mock.ExpectExec(`UPDATE documents SET\s+file_path = \$2, file_name = \$3`).
			WithArgs(append([]driver.Value{"doc-1", "owner-1/2026/10/new.md", "notes.md", int64(42), "text/markdown", "newsum"},
				anyArgs(18)...)...).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewDocumentPostgres(db)
		v, err := repo.AppendVersion(ctx, nv)

		require.NoError(t, err)
		assert.Equal(t, 2, v.VersionNumber)
		assert.Equal(t, "owner-1/2026/09/old.txt", v.FilePath)
		assert.Equal(t, "oldsum", v.Checksum)
		assert.Equal(t, int64(23), v.FileSize)
		assert.Equal(t, "owner-1", *v.CreatedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing document rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("doc-1").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		repo := NewDocumentPostgres(db)
		v, err := repo.AppendVersion(ctx, nv)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update failure rolls back the snapshot", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").
			WillReturnRows(sqlmock.NewRows([]string{"file_path", "file_size", "checksum"}).AddRow("old", 1, "sum"))
		mock.ExpectQuery("SELECT COALESCE").
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1))
		mock.ExpectQuery("INSERT INTO document_versions").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("ver-1", time.Now()))
		mock.ExpectExec("UPDATE documents SET").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		repo := NewDocumentPostgres(db)
		_, err = repo.AppendVersion(ctx, nv)

		assert.EqualError(t, err, "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure is reported", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").
			WillReturnRows(sqlmock.NewRows([]string{"file_path", "file_size", "checksum"}).AddRow("old", 1, "sum"))
		mock.ExpectQuery("SELECT COALESCE").
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1))
		mock.ExpectQuery("INSERT INTO document_versions").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("ver-1", time.Now()))
		mock.ExpectExec("UPDATE documents SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

		v, err := NewDocumentPostgres(db).AppendVersion(ctx, nv)

		assert.EqualError(t, err, "commit tx: connection reset")
		assert.Nil(t, v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_ListVersions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "document_id", "version_number", "file_path", "file_size", "checksum", "change_summary", "created_by", "created_at"}).
		AddRow("v2", "doc-1", 2, "p2", 20, "s2", "second", "owner-1", now).
		AddRow("v1", "doc-1", 1, "p1", 10, "s1", nil, nil, now)
	mock.ExpectQuery("SELECT (.+) FROM document_versions WHERE document_id = (.+) ORDER BY version_number DESC").
		WithArgs("doc-1").
		WillReturnRows(rows)

	versions, err := NewDocumentPostgres(db).ListVersions(context.Background(), "doc-1")

	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].VersionNumber)
	assert.Equal(t, "second", *versions[0].ChangeSummary)
	assert.Nil(t, versions[1].ChangeSummary)
	assert.Nil(t, versions[1].CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_IncrementDownloads(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)

	mock.ExpectExec("UPDATE documents SET download_count = download_count \\+ 1").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.IncrementDownloads(context.Background(), "doc-1"))

	mock.ExpectExec("UPDATE documents SET download_count").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.IncrementDownloads(context.Background(), "gone"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

package migration

import (
	"bytes"
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore/internal/logger"
)

func TestMigrations(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{
		"00001_documents.sql",
		"00002_document_versions.sql",
		"00003_tags_and_authors.sql",
		"00004_tagging_runs.sql",
	}, files)

	tests := []struct {
		file string
		want []string
	}{
		{file: "00001_documents.sql", want: []string{`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`, "payload_kind", "idx_documents_owner_created_at"}},
		{file: "00002_document_versions.sql", want: []string{"UNIQUE (document_id, version_number)", "ON DELETE CASCADE"}},
		{file: "00003_tags_and_authors.sql", want: []string{"name        TEXT NOT NULL UNIQUE", "PRIMARY KEY (document_id, author_id)"}},
		{file: "00004_tagging_runs.sql", want: []string{"outcome IN ('applied', 'not_found', 'failed')", "idx_tagging_runs_document_id"}},
	}
	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			b, err := fs.ReadFile(Migrations, tc.file)
			require.NoError(t, err)
			body := string(b)
			assert.True(t, strings.HasPrefix(body, "-- +goose Up\n"))
			assert.Contains(t, body, "-- +goose Down\n")
			for _, w := range tc.want {
				assert.Contains(t, body, w)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	provider, err := NewProvider(db)
	require.NoError(t, err)

	var versions []int64
	for _, src := range provider.ListSources() {
		versions = append(versions, src.Version)
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, versions)
	// building the provider does not touch the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigratedReportsFailure(t *testing.T) {
	// no expectations: the first statement goose issues fails
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	err = migrate(context.Background(), db, logger.NewWithWriter(&buf, "info", time.UTC))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate:")
	assert.Contains(t, buf.String(), "db_migration_check")
	assert.Contains(t, buf.String(), "db_migration_failed")
	assert.NotContains(t, buf.String(), "db_migration_success")
}

package postgres

import (
	"context"
	"database/sql"

	"docstore/internal/database"
	"docstore/internal/model"
	"docstore/internal/repository"
)

// TagPostgres is a PostgreSQL implementation of repository.TagRepository.
type TagPostgres struct {
	db *sql.DB
}

// NewTagPostgres creates a new TagPostgres repository.
func NewTagPostgres(db *sql.DB) *TagPostgres {
	return &TagPostgres{db: db}
}

var _ repository.TagRepository = (*TagPostgres)(nil)

// ListNames returns the full tag vocabulary.
func (r *TagPostgres) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *TagPostgres) List(ctx context.Context) ([]model.Tag, error) {
	const q = `SELECT id, name, description, color FROM tags ORDER BY name`
	return r.queryTags(ctx, q)
}

func (r *TagPostgres) ListForDocument(ctx context.Context, documentID string) ([]model.Tag, error) {
	const q = `
		SELECT t.id, t.name, t.description, t.color
		FROM tags t
		JOIN document_tags dt ON dt.tag_id = t.id
		WHERE dt.document_id = $1
		ORDER BY t.name
	`
	return r.queryTags(ctx, q, documentID)
}

func (r *TagPostgres) queryTags(ctx context.Context, q string, args ...any) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var (
			t                  model.Tag
			description, color sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &description, &color); err != nil {
			return nil, err
		}
		t.Description = stringPtr(description)
		t.Color = stringPtr(color)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Create inserts a tag with an explicit name, description and color.
func (r *TagPostgres) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	const q = `INSERT INTO tags (name, description, color) VALUES ($1, $2, $3) RETURNING id`
	out := *tag
	if err := r.db.QueryRowContext(ctx, q, tag.Name, nullString(tag.Description), nullString(tag.Color)).Scan(&out.ID); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// ApplyTags resolves each name to a tag row, creating it if needed, and links
// it to the document. Everything commits together or not at all.
func (r *TagPostgres) ApplyTags(ctx context.Context, documentID string, names []string) ([]model.Tag, error) {
	// The no-op update makes RETURNING yield the id of an existing row too.
	const qUpsert = `
		INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	const qLink = `
		INSERT INTO document_tags (document_id, tag_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	applied := make([]model.Tag, 0, len(names))
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, documentID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		for _, name := range names {
			t := model.Tag{Name: name}
			if err := tx.QueryRowContext(ctx, qUpsert, name).Scan(&t.ID); err != nil {
				return translate(err)
			}
			if _, err := tx.ExecContext(ctx, qLink, documentID, t.ID); err != nil {
				return translate(err)
			}
			applied = append(applied, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

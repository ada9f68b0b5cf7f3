package postgres

import (
	"context"
	"database/sql"

	"docstore/internal/model"
	"docstore/internal/repository"
)

// AuthorPostgres is a PostgreSQL implementation of repository.AuthorRepository.
type AuthorPostgres struct {
	db *sql.DB
}

// NewAuthorPostgres creates a new AuthorPostgres repository.
func NewAuthorPostgres(db *sql.DB) *AuthorPostgres {
	return &AuthorPostgres{db: db}
}

var _ repository.AuthorRepository = (*AuthorPostgres)(nil)

func (r *AuthorPostgres) Create(ctx context.Context, a *model.Author) (*model.Author, error) {
	const q = `
		INSERT INTO authors (name, email, bio) VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	out := *a
	if err := r.db.QueryRowContext(ctx, q, a.Name, nullString(a.Email), nullString(a.Bio)).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *AuthorPostgres) List(ctx context.Context) ([]model.Author, error) {
	const q = `SELECT id, name, email, bio, created_at FROM authors ORDER BY name`
	return r.queryAuthors(ctx, q)
}

func (r *AuthorPostgres) ListForDocument(ctx context.Context, documentID string) ([]model.Author, error) {
	const q = `
		SELECT a.id, a.name, a.email, a.bio, a.created_at
		FROM authors a
		JOIN document_authors da ON da.author_id = a.id
		WHERE da.document_id = $1
		ORDER BY a.name
	`
	return r.queryAuthors(ctx, q, documentID)
}

// AttachToDocument links the author; linking twice is a no-op.
func (r *AuthorPostgres) AttachToDocument(ctx context.Context, documentID, authorID string) error {
	const q = `
		INSERT INTO document_authors (document_id, author_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, documentID, authorID)
	return translate(err)
}

func (r *AuthorPostgres) queryAuthors(ctx context.Context, q string, args ...any) ([]model.Author, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := make([]model.Author, 0)
	for rows.Next() {
		var (
			a          model.Author
			email, bio sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &email, &bio, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Email = stringPtr(email)
		a.Bio = stringPtr(bio)
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

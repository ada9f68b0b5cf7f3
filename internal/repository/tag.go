package repository

import (
	"context"

	"docstore/internal/model"
)

// TagRepository manages the shared tag vocabulary and document associations.
type TagRepository interface {
	// ListNames returns every tag name, sorted.
	ListNames(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]model.Tag, error)
	// Create inserts a tag; a duplicate name yields ErrConflict.
	Create(ctx context.Context, tag *model.Tag) (*model.Tag, error)
	ListForDocument(ctx context.Context, documentID string) ([]model.Tag, error)

	// ApplyTags links the named tags to the document in a single transaction,
	// creating any tag that does not exist yet. Links that already exist are kept.
	// Returns ErrNotFound when the document is gone.
	ApplyTags(ctx context.Context, documentID string, names []string) ([]model.Tag, error)
}

// AuthorRepository manages authors and their document associations.
type AuthorRepository interface {
	// Create inserts an author; a duplicate email yields ErrConflict.
	Create(ctx context.Context, a *model.Author) (*model.Author, error)
	List(ctx context.Context) ([]model.Author, error)
	// AttachToDocument links an author to a document. Returns ErrNotFound if either side is missing.
	AttachToDocument(ctx context.Context, documentID, authorID string) error
	ListForDocument(ctx context.Context, documentID string) ([]model.Author, error)
}

// TaggingRunRepository stores acknowledgments of processed tagging tasks.
type TaggingRunRepository interface {
	Record(ctx context.Context, run *model.TaggingRun) error
	ListForDocument(ctx context.Context, documentID string, limit int) ([]model.TaggingRun, error)
}

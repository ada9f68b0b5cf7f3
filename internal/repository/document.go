package repository

import (
	"context"

	"docstore/internal/model"
)

// DocumentRepository defines data access for documents and their versions using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record together with its type-specific payload.
	// Returns the stored document with database defaults filled in.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a page of documents matching the filter and the total matching row count.
	List(ctx context.Context, f ListFilter) (*PageResult[model.Document], error)

	// Update applies a partial metadata patch and returns the updated document.
	Update(ctx context.Context, id string, p DocumentPatch) (*model.Document, error)

	// Delete removes a document by ID. Versions and associations go with it.
	// It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// AppendVersion snapshots the current file state of the document as a new
	// version row and replaces the live file state, atomically.
	AppendVersion(ctx context.Context, nv NewVersion) (*model.DocumentVersion, error)

	// ListVersions returns the snapshots of a document, newest first.
	ListVersions(ctx context.Context, documentID string) ([]model.DocumentVersion, error)

	// IncrementDownloads bumps the download counter.
	IncrementDownloads(ctx context.Context, id string) error
}

// ListFilter scopes a document listing. Nil filters match everything.
type ListFilter struct {
	OwnerID string
	Status  *model.DocumentStatus
	Type    *model.DocumentType
	PageQuery
}

// DocumentPatch is a partial metadata update. Nil fields are left unchanged.
type DocumentPatch struct {
	Title       *string
	Description *string
	Status      *model.DocumentStatus
	IsPublic    *bool
}

// FileState is everything about a document that changes when its file is
// replaced. Kind selects which payload columns are written.
type FileState struct {
	Kind     model.PayloadKind
	FilePath string
	FileName string
	FileSize int64
	MimeType string
	Checksum string
	Text     *model.TextMetadata
	PDF      *model.PDFMetadata
}

// NewVersion describes a re-upload of an existing document.
type NewVersion struct {
	DocumentID    string
	File          FileState
	ChangeSummary *string
	CreatedBy     string
}

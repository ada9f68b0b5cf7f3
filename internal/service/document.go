package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"docstore/internal/events"
	"docstore/internal/logger"
	"docstore/internal/model"
	"docstore/internal/repository"
	"docstore/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultMimeType = "application/octet-stream"
)

// Extractor produces the type-specific payload of a stored file.
type Extractor interface {
	Extract(ctx context.Context, kind model.PayloadKind, r io.Reader) (*model.TextMetadata, *model.PDFMetadata)
}

// TaggingQueue hands a document to the tagging worker and returns the task id.
type TaggingQueue interface {
	EnqueueTagging(ctx context.Context, req model.TaggingRequest) (string, error)
}

// UploadInput is a new document upload.
type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	// Size is the declared length of Reader, or 0 when unknown.
	Size        int64
	Title       string
	Description *string
	IsPublic    bool
	OwnerID     string
}

// VersionInput is a re-upload of an existing document.
type VersionInput struct {
	Reader        io.Reader
	Filename      string
	ContentType   string
	Size          int64
	ChangeSummary *string
}

// UpdateInput is a partial metadata patch; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	IsPublic    *bool
}

// ListQuery selects a page of the requester's documents.
type ListQuery struct {
	OwnerID  string
	Page     int
	PageSize int
	Status   string
	Type     string
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items    []model.Document
	Total    int
	Page     int
	PageSize int
}

// DocumentService defines the document use cases. Every call that touches a
// single document takes the requesting user's id and enforces ownership:
// reads need owner or public, writes need owner.
type DocumentService interface {
	// Upload validates, stores and hashes the file, extracts its metadata and
	// creates the record. The stored file is removed if the record cannot be saved.
	// Tagging is queued after the record exists; its outcome never affects the upload.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// List returns a page of the owner's documents and the total count.
	List(ctx context.Context, q ListQuery) (*DocumentListResult, error)

	// Get returns a single document with its tags and authors.
	Get(ctx context.Context, id, requesterID string) (*model.Document, error)

	Update(ctx context.Context, id, requesterID string, in UpdateInput) (*model.Document, error)

	// Delete removes the document's files from storage, then its record.
	Delete(ctx context.Context, id, requesterID string) error

	// UploadVersion replaces the document's file, keeping the previous file
	// state as a new version snapshot.
	UploadVersion(ctx context.Context, id, requesterID string, in VersionInput) (*model.Document, *model.DocumentVersion, error)

	ListVersions(ctx context.Context, id, requesterID string) ([]model.DocumentVersion, error)

	// Download counts the download and returns either a presigned link or an
	// open reader on the current file. The caller closes Body.
	Download(ctx context.Context, id, requesterID string) (*Download, error)

	Tags(ctx context.Context, id, requesterID string) ([]model.Tag, error)
	TaggingRuns(ctx context.Context, id, requesterID string, limit int) ([]model.TaggingRun, error)

	// Retag queues the tagging workflow again and returns the task id.
	Retag(ctx context.Context, id, requesterID string) (string, error)

	AttachAuthor(ctx context.Context, id, authorID, requesterID string) error
}

// Options are the upload limits and the presigned download lifetime.
type Options struct {
	MaxSize           int64
	AllowedExtensions []string
	DownloadURLTTL    time.Duration
}

// Download is the result of a download request. Exactly one of URL and Body is set.
type Download struct {
	Document *model.Document
	URL      string
	Body     io.ReadCloser
}

// Dependencies groups the collaborators of the document service.
// Queue, Events, Metrics and Log are optional.
type Dependencies struct {
	Store     storage.Storage
	Documents repository.DocumentRepository
	Tags      repository.TagRepository
	Authors   repository.AuthorRepository
	Runs      repository.TaggingRunRepository
	Extractor Extractor
	Queue     TaggingQueue
	Events    events.Publisher
	Metrics   *Metrics
	Log       *logger.Logger
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store     storage.Storage
	docs      repository.DocumentRepository
	tags      repository.TagRepository
	authors   repository.AuthorRepository
	runs      repository.TaggingRunRepository
	extractor Extractor
	queue     TaggingQueue
	publisher events.Publisher
	metrics   *Metrics
	log       *logger.Logger
	opts      Options
	now       func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(deps Dependencies, opts Options) DocumentService {
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &documentService{
		store:     deps.Store,
		docs:      deps.Documents,
		tags:      deps.Tags,
		authors:   deps.Authors,
		runs:      deps.Runs,
		extractor: deps.Extractor,
		queue:     deps.Queue,
		publisher: deps.Events,
		metrics:   deps.Metrics,
		log:       deps.Log.Named("documents"),
		opts:      opts,
		now:       time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if in.OwnerID == "" {
		return nil, ErrForbidden
	}
	ext, err := validateFilename(in.Filename, s.opts.AllowedExtensions)
	if err != nil {
		return nil, err
	}

	docType := ClassifyType(in.ContentType, in.Filename)
	kind := model.KindFor(docType)
	mimeType := in.ContentType
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	key := storage.ObjectKey(in.OwnerID, s.now().UTC(), ext)
	hr, err := s.storeFile(ctx, key, in.Reader, in.Size, in.Filename, mimeType)
	if err != nil {
		return nil, err
	}

	text, pdf := s.extractStored(ctx, key, kind)

	title := in.Title
	if title == "" {
		title = defaultTitle(in.Filename)
	}
	doc := &model.Document{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		Type:        docType,
		Status:      model.StatusDraft,
		FilePath:    key,
		FileName:    in.Filename,
		FileSize:    hr.Size(),
		MimeType:    mimeType,
		Checksum:    hr.Sum(),
		IsPublic:    in.IsPublic,
		OwnerID:     in.OwnerID,
		Kind:        kind,
	}
	doc.SetPayload(text, pdf)

	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the file from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.metrics.uploaded(docType)
	s.log.Infow("document_uploaded",
		"document_id", stored.ID,
		"owner_id", stored.OwnerID,
		"document_type", stored.Type,
		"file_size", stored.FileSize,
	)

	s.enqueueTagging(ctx, stored)
	s.publish(ctx, events.TypeDocumentUploaded, stored, nil)
	return stored, nil
}

// storeFile streams r into storage through the hashing reader. An oversized
// upload is reported as ErrTooLarge and leaves nothing behind. A declared size
// lets the backend pick its part size; the reader still enforces the ceiling.
func (s *documentService) storeFile(ctx context.Context, key string, r io.Reader, size int64, filename, mimeType string) (*hashingReader, error) {
	if s.opts.MaxSize > 0 && size > s.opts.MaxSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.opts.MaxSize)
	}
	if size <= 0 {
		size = -1
	}
	hr := newHashingReader(r, s.opts.MaxSize)
	_, err := s.store.Put(ctx, key, hr, storage.PutObjectOptions{
		Size:        size,
		ContentType: mimeType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		if hr.exceeded || errors.Is(err, ErrTooLarge) {
			_ = s.store.Delete(ctx, key)
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.opts.MaxSize)
		}
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	return hr, nil
}

// extractStored reads the stored file back and extracts its payload.
// A read failure yields the default payload for the kind.
func (s *documentService) extractStored(ctx context.Context, key string, kind model.PayloadKind) (*model.TextMetadata, *model.PDFMetadata) {
	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warnw("extract_open_failed", "key", key, "error", err)
		return nil, nil
	}
	defer rc.Close()
	return s.extractor.Extract(ctx, kind, rc)
}

func (s *documentService) enqueueTagging(ctx context.Context, doc *model.Document) {
	if s.queue == nil {
		s.log.Warnw("tagging_not_queued", "document_id", doc.ID, "reason", "no queue configured")
		return
	}
	taskID, err := s.queue.EnqueueTagging(ctx, taggingRequest(doc))
	if err != nil {
		s.log.Errorw("tagging_enqueue_failed", "document_id", doc.ID, "error", err)
		return
	}
	s.log.Infow("tagging_enqueued", "document_id", doc.ID, "task_id", taskID)
}

func taggingRequest(doc *model.Document) model.TaggingRequest {
	return model.TaggingRequest{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		Title:      doc.Title,
		Preview:    doc.Preview(),
	}
}

func (s *documentService) publish(ctx context.Context, typ string, doc *model.Document, data map[string]any) {
	ev := events.Event{
		Type:       typ,
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		Data:       data,
		At:         s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warnw("event_publish_failed", "type", typ, "document_id", doc.ID, "error", err)
	}
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, q ListQuery) (*DocumentListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	f := repository.ListFilter{
		OwnerID:   q.OwnerID,
		PageQuery: repository.PageQuery{Limit: q.PageSize, Offset: (q.Page - 1) * q.PageSize},
	}
	if q.Status != "" {
		st, err := parseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		f.Status = &st
	}
	if q.Type != "" {
		t, err := parseType(q.Type)
		if err != nil {
			return nil, err
		}
		f.Type = &t
	}

	res, err := s.docs.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total, Page: q.Page, PageSize: q.PageSize}, nil
}

// find loads a document and maps missing rows and malformed ids to ErrNotFound.
func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) findReadable(ctx context.Context, id, requesterID string) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.CanRead(requesterID) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *documentService) findOwned(ctx context.Context, id, requesterID string) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.OwnedBy(requesterID) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, id, requesterID string) (*model.Document, error) {
	doc, err := s.findReadable(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if doc.Tags, err = s.tags.ListForDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	if doc.Authors, err = s.authors.ListForDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, id, requesterID string, in UpdateInput) (*model.Document, error) {
	if _, err := s.findOwned(ctx, id, requesterID); err != nil {
		return nil, err
	}
	patch := repository.DocumentPatch{
		Title:       in.Title,
		Description: in.Description,
		IsPublic:    in.IsPublic,
	}
	if in.Status != nil {
		st, err := parseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &st
	}

	doc, err := s.docs.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes the current file and every version file, then the row.
// Version rows and tag links go with the row.
func (s *documentService) Delete(ctx context.Context, id, requesterID string) error {
	doc, err := s.findOwned(ctx, id, requesterID)
	if err != nil {
		return err
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, doc.FilePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}

	versions, err := s.docs.ListVersions(ctx, id)
	if err != nil {
		s.log.Warnw("version_files_not_listed", "document_id", id, "error", err)
	}
	for _, v := range versions {
		if err := s.store.Delete(ctx, v.FilePath); err != nil {
			s.log.Warnw("version_file_not_deleted", "document_id", id, "key", v.FilePath, "error", err)
		}
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TypeDocumentDeleted, doc, nil)
	return nil
}

func (s *documentService) UploadVersion(ctx context.Context, id, requesterID string, in VersionInput) (*model.Document, *model.DocumentVersion, error) {
	if in.Reader == nil {
		return nil, nil, ErrReaderNil
	}
	doc, err := s.findOwned(ctx, id, requesterID)
	if err != nil {
		return nil, nil, err
	}
	ext, err := validateFilename(in.Filename, s.opts.AllowedExtensions)
	if err != nil {
		return nil, nil, err
	}
	if model.KindFor(ClassifyType(in.ContentType, in.Filename)) != doc.Kind {
		return nil, nil, ErrKindMismatch
	}
	mimeType := in.ContentType
	if mimeType == "" {
		mimeType = doc.MimeType
	}
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	key := storage.ObjectKey(doc.OwnerID, s.now().UTC(), ext)
	hr, err := s.storeFile(ctx, key, in.Reader, in.Size, in.Filename, mimeType)
	if err != nil {
		return nil, nil, err
	}
	text, pdf := s.extractStored(ctx, key, doc.Kind)

	file := repository.FileState{
		Kind:     doc.Kind,
		FilePath: key,
		FileName: in.Filename,
		FileSize: hr.Size(),
		MimeType: mimeType,
		Checksum: hr.Sum(),
	}
	staged := model.Document{Kind: doc.Kind}
	staged.SetPayload(text, pdf)
	file.Text, file.PDF = staged.Text, staged.PDF

	version, err := s.docs.AppendVersion(ctx, repository.NewVersion{
		DocumentID:    id,
		File:          file,
		ChangeSummary: in.ChangeSummary,
		CreatedBy:     requesterID,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Errorw("version_rollback_failed", "document_id", id, "key", key, "error", delErr)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("save version: %w", err)
	}

	s.metrics.versioned()
	s.log.Infow("document_versioned",
		"document_id", id,
		"version_number", version.VersionNumber,
		"file_size", file.FileSize,
	)

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.TypeDocumentVersioned, updated, map[string]any{"version_number": version.VersionNumber})
	return updated, version, nil
}

func (s *documentService) ListVersions(ctx context.Context, id, requesterID string) ([]model.DocumentVersion, error) {
	if _, err := s.findReadable(ctx, id, requesterID); err != nil {
		return nil, err
	}
	return s.docs.ListVersions(ctx, id)
}

func (s *documentService) Download(ctx context.Context, id, requesterID string) (*Download, error) {
	doc, err := s.findReadable(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	out := &Download{Document: doc, URL: s.presign(ctx, doc)}
	if out.URL == "" {
		rc, _, err := s.store.Get(ctx, doc.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		out.Body = rc
	}
	if err := s.docs.IncrementDownloads(ctx, id); err != nil {
		if out.Body != nil {
			out.Body.Close()
		}
		return nil, err
	}
	doc.DownloadCount++
	return out, nil
}

// presign asks the store for a download link. An empty result means the file
// is streamed instead.
func (s *documentService) presign(ctx context.Context, doc *model.Document) string {
	if s.opts.DownloadURLTTL <= 0 {
		return ""
	}
	u, err := s.store.PresignGet(ctx, doc.FilePath, s.opts.DownloadURLTTL)
	if err != nil {
		if !errors.Is(err, storage.ErrPresignUnsupported) {
			s.log.Warnw("presign_failed", "document_id", doc.ID, "error", err)
		}
		return ""
	}
	return u
}

func (s *documentService) Tags(ctx context.Context, id, requesterID string) ([]model.Tag, error) {
	if _, err := s.findReadable(ctx, id, requesterID); err != nil {
		return nil, err
	}
	return s.tags.ListForDocument(ctx, id)
}

func (s *documentService) TaggingRuns(ctx context.Context, id, requesterID string, limit int) ([]model.TaggingRun, error) {
	if _, err := s.findReadable(ctx, id, requesterID); err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return s.runs.ListForDocument(ctx, id, limit)
}

func (s *documentService) Retag(ctx context.Context, id, requesterID string) (string, error) {
	doc, err := s.findOwned(ctx, id, requesterID)
	if err != nil {
		return "", err
	}
	if s.queue == nil {
		return "", ErrQueueUnavailable
	}
	taskID, err := s.queue.EnqueueTagging(ctx, taggingRequest(doc))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	return taskID, nil
}

func (s *documentService) AttachAuthor(ctx context.Context, id, authorID, requesterID string) error {
	if _, err := s.findOwned(ctx, id, requesterID); err != nil {
		return err
	}
	if _, err := uuid.Parse(authorID); err != nil {
		return ErrNotFound
	}
	if err := s.authors.AttachToDocument(ctx, id, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

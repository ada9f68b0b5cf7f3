package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"docstore/internal/model"
	"docstore/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, q service.ListQuery) (*service.DocumentListResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id, requesterID string) (*model.Document, error) {
	args := m.Called(ctx, id, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, id, requesterID string, in service.UpdateInput) (*model.Document, error) {
	args := m.Called(ctx, id, requesterID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id, requesterID string) error {
	args := m.Called(ctx, id, requesterID)
	return args.Error(0)
}

func (m *MockDocumentService) UploadVersion(ctx context.Context, id, requesterID string, in service.VersionInput) (*model.Document, *model.DocumentVersion, error) {
	args := m.Called(ctx, id, requesterID, in)
	var (
		doc *model.Document
		v   *model.DocumentVersion
	)
	if d, ok := args.Get(0).(*model.Document); ok {
		doc = d
	}
	if dv, ok := args.Get(1).(*model.DocumentVersion); ok {
		v = dv
	}
	return doc, v, args.Error(2)
}

func (m *MockDocumentService) ListVersions(ctx context.Context, id, requesterID string) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, id, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentVersion), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, id, requesterID string) (*service.Download, error) {
	args := m.Called(ctx, id, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockDocumentService) Tags(ctx context.Context, id, requesterID string) ([]model.Tag, error) {
	args := m.Called(ctx, id, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockDocumentService) TaggingRuns(ctx context.Context, id, requesterID string, limit int) ([]model.TaggingRun, error) {
	args := m.Called(ctx, id, requesterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TaggingRun), args.Error(1)
}

func (m *MockDocumentService) Retag(ctx context.Context, id, requesterID string) (string, error) {
	args := m.Called(ctx, id, requesterID)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) AttachAuthor(ctx context.Context, id, authorID, requesterID string) error {
	args := m.Called(ctx, id, authorID, requesterID)
	return args.Error(0)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockCatalogService) CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockCatalogService) ListAuthors(ctx context.Context) ([]model.Author, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Author), args.Error(1)
}

func (m *MockCatalogService) CreateAuthor(ctx context.Context, author model.Author) (*model.Author, error) {
	args := m.Called(ctx, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Author), args.Error(1)
}

// MockExtractor returns whatever payload the test configures.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, kind model.PayloadKind, r io.Reader) (*model.TextMetadata, *model.PDFMetadata) {
	args := m.Called(ctx, kind, r)
	var (
		text *model.TextMetadata
		pdf  *model.PDFMetadata
	)
	if t, ok := args.Get(0).(*model.TextMetadata); ok {
		text = t
	}
	if p, ok := args.Get(1).(*model.PDFMetadata); ok {
		pdf = p
	}
	return text, pdf
}

type MockTaggingQueue struct {
	mock.Mock
}

func (m *MockTaggingQueue) EnqueueTagging(ctx context.Context, req model.TaggingRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docstore/internal/model"
)

type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) ListNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTagRepository) List(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockTagRepository) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagRepository) ListForDocument(ctx context.Context, documentID string) ([]model.Tag, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockTagRepository) ApplyTags(ctx context.Context, documentID string, names []string) ([]model.Tag, error) {
	args := m.Called(ctx, documentID, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

type MockAuthorRepository struct {
	mock.Mock
}

func (m *MockAuthorRepository) Create(ctx context.Context, a *model.Author) (*model.Author, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Author), args.Error(1)
}

func (m *MockAuthorRepository) List(ctx context.Context) ([]model.Author, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Author), args.Error(1)
}

func (m *MockAuthorRepository) AttachToDocument(ctx context.Context, documentID, authorID string) error {
	args := m.Called(ctx, documentID, authorID)
	return args.Error(0)
}

func (m *MockAuthorRepository) ListForDocument(ctx context.Context, documentID string) ([]model.Author, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Author), args.Error(1)
}

type MockTaggingRunRepository struct {
	mock.Mock
}

func (m *MockTaggingRunRepository) Record(ctx context.Context, run *model.TaggingRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockTaggingRunRepository) ListForDocument(ctx context.Context, documentID string, limit int) ([]model.TaggingRun, error) {
	args := m.Called(ctx, documentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TaggingRun), args.Error(1)
}

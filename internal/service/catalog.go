package service

import (
	"context"
	"errors"
	"strings"

	"docstore/internal/model"
	"docstore/internal/repository"
)

// CatalogService manages the shared tag and author vocabularies.
type CatalogService interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	// CreateTag stores a tag under its trimmed, lower-cased name.
	CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	CreateAuthor(ctx context.Context, author model.Author) (*model.Author, error)
}

type catalogService struct {
	tags    repository.TagRepository
	authors repository.AuthorRepository
}

func NewCatalogService(tags repository.TagRepository, authors repository.AuthorRepository) CatalogService {
	return &catalogService{tags: tags, authors: authors}
}

func (s *catalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tags.List(ctx)
}

func (s *catalogService) CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error) {
	tag.Name = strings.ToLower(strings.TrimSpace(tag.Name))
	if tag.Name == "" {
		return nil, ErrNameRequired
	}
	out, err := s.tags.Create(ctx, &tag)
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrConflict
	}
	return out, err
}

func (s *catalogService) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.authors.List(ctx)
}

func (s *catalogService) CreateAuthor(ctx context.Context, author model.Author) (*model.Author, error) {
	author.Name = strings.TrimSpace(author.Name)
	if author.Name == "" {
		return nil, ErrNameRequired
	}
	if author.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*author.Email))
		author.Email = &email
		if email == "" {
			author.Email = nil
		}
	}
	out, err := s.authors.Create(ctx, &author)
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrConflict
	}
	return out, err
}

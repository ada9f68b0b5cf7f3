package service

import "errors"

var (
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("document not found")
	ErrReaderNil        = errors.New("reader is nil")
	ErrForbidden        = errors.New("not enough permissions")
	ErrFilenameRequired = errors.New("no filename provided")
	ErrInvalidFile      = errors.New("file type not allowed")
	ErrTooLarge         = errors.New("file too large")
	ErrInvalidStatus    = errors.New("invalid document status")
	ErrInvalidType      = errors.New("invalid document type")
	ErrKindMismatch     = errors.New("new version must keep the document's file kind")
	ErrNameRequired     = errors.New("name is required")
	ErrConflict         = errors.New("already exists")
	ErrQueueUnavailable = errors.New("tagging queue unavailable")
)

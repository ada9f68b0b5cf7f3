// Package storage contains file/object storage abstractions and their backends:
// a local disk tree (default) and an S3-compatible object store (MinIO).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"docstore/internal/config"
)

var (
	// ErrObjectNotFound is returned by Get when the key does not exist.
	ErrObjectNotFound = errors.New("object not found")
	// ErrPresignUnsupported is returned by backends that cannot mint download URLs.
	ErrPresignUnsupported = errors.New("presigned urls not supported by this backend")
	// ErrInvalidKey is returned for keys that would escape the storage root.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the file store used for document contents.
// Methods use context and streaming readers; callers never see backend paths.
type Storage interface {
	// Put writes the reader under key. A failed Put leaves nothing behind.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New builds the backend selected by cfg.Upload.Driver.
func New(ctx context.Context, cfg *config.AppConfig) (Storage, error) {
	switch cfg.Upload.Driver {
	case "", "disk":
		return NewDisk(cfg.Upload.Dir)
	case "minio":
		return NewMinIO(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Upload.Driver)
	}
}

// ObjectKey lays out a new document file as <owner>/<yyyy>/<mm>/<uuid><ext>.
// The original filename is kept only as document metadata.
func ObjectKey(ownerID string, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%04d/%02d/%s%s", ownerID, at.Year(), int(at.Month()), uuid.NewString(), ext)
}

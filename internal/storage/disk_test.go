package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	data []byte
	err  error
	done bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.done {
		return 0, f.err
	}
	f.done = true
	return copy(p, f.data), nil
}

func TestDiskStorage_PutGetDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewDisk(root)
	require.NoError(t, err)
	ctx := context.Background()

	content := bytes.Repeat([]byte("a"), 3*chunkSize+17)
	info, err := s.Put(ctx, "owner/2026/10/file.txt", bytes.NewReader(content), PutObjectOptions{Size: -1, ContentType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)

	onDisk, err := os.ReadFile(filepath.Join(root, "owner", "2026", "10", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)

	rc, got, err := s.Get(ctx, "owner/2026/10/file.txt")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, content, b)
	assert.Equal(t, int64(len(content)), got.Size)

	require.NoError(t, s.Delete(ctx, "owner/2026/10/file.txt"))
	_, _, err = s.Get(ctx, "owner/2026/10/file.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// deleting again is fine
	assert.NoError(t, s.Delete(ctx, "owner/2026/10/file.txt"))
}

func TestDiskStorage_PutRemovesPartialFile(t *testing.T) {
	root := t.TempDir()
	s, err := NewDisk(root)
	require.NoError(t, err)

	boom := errors.New("payload too large")
	_, err = s.Put(context.Background(), "owner/x.txt", &failingReader{data: []byte("partial"), err: boom}, PutObjectOptions{Size: -1})
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(filepath.Join(root, "owner", "x.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDiskStorage_PutHonoursContext(t *testing.T) {
	s, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, "owner/y.txt", strings.NewReader("data"), PutObjectOptions{Size: -1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiskStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../outside.txt", strings.NewReader("x"), PutObjectOptions{})
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, _, err = s.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDiskStorage_PresignUnsupported(t *testing.T) {
	s, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	_, err = s.PresignGet(context.Background(), "k", time.Minute)
	assert.ErrorIs(t, err, ErrPresignUnsupported)
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	key := ObjectKey("owner-1", at, ".pdf")

	pattern := regexp.MustCompile(`^owner-1/2026/03/[0-9a-f-]{36}\.pdf$`)
	assert.Regexp(t, pattern, key)
	assert.NotEqual(t, key, ObjectKey("owner-1", at, ".pdf"))
}

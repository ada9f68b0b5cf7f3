package service

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingReader(t *testing.T) {
	content := strings.Repeat("abcdefgh", 4096)
	hr := newHashingReader(iotest.HalfReader(strings.NewReader(content)), 0)

	n, err := io.Copy(io.Discard, hr)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(content))
	assert.Equal(t, int64(len(content)), n)
	assert.Equal(t, int64(len(content)), hr.Size())
	assert.Equal(t, hex.EncodeToString(sum[:]), hr.Sum())
}

func TestHashingReaderEmpty(t *testing.T) {
	hr := newHashingReader(strings.NewReader(""), 10)
	_, err := io.Copy(io.Discard, hr)
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hr.Sum())
}

func TestHashingReaderLimit(t *testing.T) {
	t.Run("exactly at limit", func(t *testing.T) {
		hr := newHashingReader(strings.NewReader("0123456789"), 10)
		_, err := io.Copy(io.Discard, hr)
		assert.NoError(t, err)
		assert.False(t, hr.exceeded)
	})

	t.Run("over limit", func(t *testing.T) {
		hr := newHashingReader(strings.NewReader("0123456789A"), 10)
		_, err := io.Copy(io.Discard, hr)
		assert.ErrorIs(t, err, ErrTooLarge)
		assert.True(t, hr.exceeded)

		_, err = hr.Read(make([]byte, 4))
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}

package service

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// hashingReader digests and counts every byte handed to its consumer and
// fails with ErrTooLarge once more than limit bytes have passed through.
type hashingReader struct {
	r        io.Reader
	h        hash.Hash
	n        int64
	limit    int64
	exceeded bool
}

func newHashingReader(r io.Reader, limit int64) *hashingReader {
	return &hashingReader{r: r, h: sha256.New(), limit: limit}
}

func (h *hashingReader) Read(p []byte) (int, error) {
	if h.exceeded {
		return 0, ErrTooLarge
	}
	n, err := h.r.Read(p)
	if n > 0 {
		if h.limit > 0 && h.n+int64(n) > h.limit {
			h.exceeded = true
			return 0, ErrTooLarge
		}
		h.n += int64(n)
		h.h.Write(p[:n])
	}
	return n, err
}

// Sum returns the hex SHA-256 of the bytes read so far.
func (h *hashingReader) Sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

func (h *hashingReader) Size() int64 { return h.n }

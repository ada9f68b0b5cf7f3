package model

import "time"

// DocumentVersion is an immutable snapshot of a document's superseded file state.
type DocumentVersion struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	VersionNumber int       `json:"version_number"`
	FilePath      string    `json:"-"`
	FileSize      int64     `json:"file_size"`
	Checksum      string    `json:"checksum"`
	ChangeSummary *string   `json:"change_summary"`
	CreatedBy     *string   `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

package model

import "time"

// DocumentType is the user-facing classification of an uploaded file.
type DocumentType string

const (
	TypeText     DocumentType = "text"
	TypePDF      DocumentType = "pdf"
	TypeMarkdown DocumentType = "markdown"
	TypeHTML     DocumentType = "html"
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case TypeText, TypePDF, TypeMarkdown, TypeHTML:
		return true
	}
	return false
}

// DocumentStatus is the publication lifecycle of a document.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusPublished DocumentStatus = "published"
	StatusArchived  DocumentStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// PayloadKind selects which type-specific payload a Document carries.
// It is fixed when the document is created.
type PayloadKind string

const (
	KindText PayloadKind = "text"
	KindPDF  PayloadKind = "pdf"
)

// KindFor maps a document type to its payload kind. Markdown and HTML are text.
func KindFor(t DocumentType) PayloadKind {
	if t == TypePDF {
		return KindPDF
	}
	return KindText
}

// Document represents a stored file in the system together with its metadata.
// This is a pure domain model with no database-specific dependencies or tags.
//
// Exactly one of Text or PDF is set, matching Kind.
type Document struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   *string        `json:"description"`
	Type          DocumentType   `json:"document_type"`
	Status        DocumentStatus `json:"status"`
	FilePath      string         `json:"-"`
	FileName      string         `json:"file_name"`
	FileSize      int64          `json:"file_size"`
	MimeType      string         `json:"mime_type"`
	Checksum      string         `json:"checksum"`
	IsPublic      bool           `json:"is_public"`
	DownloadCount int            `json:"download_count"`
	OwnerID       string         `json:"owner_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Kind PayloadKind   `json:"-"`
	Text *TextMetadata `json:"-"`
	PDF  *PDFMetadata  `json:"-"`

	// CurrentVersion is the number the live file state will receive once it is
	// superseded; it is one past the newest snapshot.
	CurrentVersion int      `json:"-"`
	Tags           []Tag    `json:"-"`
	Authors        []Author `json:"-"`
}

// TextMetadata is the payload for text, markdown and HTML documents.
type TextMetadata struct {
	Encoding       string  `json:"encoding"`
	LineCount      *int    `json:"line_count"`
	WordCount      *int    `json:"word_count"`
	CharacterCount *int    `json:"character_count"`
	Language       *string `json:"language"`
	ContentPreview *string `json:"content_preview"`
}

// PDFMetadata is the payload for PDF documents.
type PDFMetadata struct {
	PageCount        *int       `json:"page_count"`
	PDFVersion       *string    `json:"pdf_version"`
	IsEncrypted      bool       `json:"is_encrypted"`
	IsSearchable     bool       `json:"is_searchable"`
	Title            *string    `json:"pdf_title"`
	Author           *string    `json:"pdf_author"`
	Subject          *string    `json:"pdf_subject"`
	Creator          *string    `json:"pdf_creator"`
	Producer         *string    `json:"pdf_producer"`
	CreationDate     *time.Time `json:"creation_date"`
	ModificationDate *time.Time `json:"modification_date"`
	TextPreview      *string    `json:"text_preview"`
}

// SetPayload attaches the payload matching d.Kind and clears the other one.
func (d *Document) SetPayload(text *TextMetadata, pdf *PDFMetadata) {
	switch d.Kind {
	case KindPDF:
		if pdf == nil {
			pdf = &PDFMetadata{IsSearchable: true}
		}
		d.PDF, d.Text = pdf, nil
	default:
		if text == nil {
			text = &TextMetadata{Encoding: "utf-8"}
		}
		d.Text, d.PDF = text, nil
	}
}

// Preview returns the extracted text excerpt regardless of payload kind.
func (d *Document) Preview() string {
	switch {
	case d.Kind == KindPDF && d.PDF != nil && d.PDF.TextPreview != nil:
		return *d.PDF.TextPreview
	case d.Kind == KindText && d.Text != nil && d.Text.ContentPreview != nil:
		return *d.Text.ContentPreview
	}
	return ""
}

// CanRead reports whether userID may view the document.
func (d *Document) CanRead(userID string) bool {
	return d.OwnerID == userID || d.IsPublic
}

// OwnedBy reports whether userID owns the document.
func (d *Document) OwnedBy(userID string) bool {
	return d.OwnerID == userID
}

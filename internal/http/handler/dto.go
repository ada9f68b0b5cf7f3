package handler

import (
	"time"

	"docstore/internal/model"
	"docstore/internal/service"
)

// uploadResponse is returned by document and version uploads.
type uploadResponse struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	FileName     string               `json:"file_name"`
	FileSize     int64                `json:"file_size"`
	MimeType     string               `json:"mime_type"`
	DocumentType model.DocumentType   `json:"document_type"`
	Status       model.DocumentStatus `json:"status"`
	Checksum     string               `json:"checksum"`
	CreatedAt    time.Time            `json:"created_at"`
	// Version is the snapshot a version upload produced.
	Version *model.DocumentVersion `json:"version,omitempty"`
}

func newUploadResponse(d *model.Document) uploadResponse {
	return uploadResponse{
		ID:           d.ID,
		Title:        d.Title,
		FileName:     d.FileName,
		FileSize:     d.FileSize,
		MimeType:     d.MimeType,
		DocumentType: d.Type,
		Status:       d.Status,
		Checksum:     d.Checksum,
		CreatedAt:    d.CreatedAt,
	}
}

// documentResponse is the detail shape. Exactly one of text_metadata and
// pdf_metadata is present.
type documentResponse struct {
	*model.Document
	CurrentVersion int                 `json:"current_version"`
	Text           *model.TextMetadata `json:"text_metadata,omitempty"`
	PDF            *model.PDFMetadata  `json:"pdf_metadata,omitempty"`
	Tags           []model.Tag         `json:"tags,omitempty"`
	Authors        []model.Author      `json:"authors,omitempty"`
}

func newDocumentResponse(d *model.Document) documentResponse {
	return documentResponse{
		Document:       d,
		CurrentVersion: d.CurrentVersion,
		Text:           d.Text,
		PDF:            d.PDF,
		Tags:           d.Tags,
		Authors:        d.Authors,
	}
}

type listResponse struct {
	Documents []documentResponse `json:"documents"`
	Total     int                `json:"total"`
	Page      int                `json:"page"`
	PageSize  int                `json:"page_size"`
}

func newListResponse(res *service.DocumentListResult) listResponse {
	out := listResponse{
		Documents: make([]documentResponse, 0, len(res.Items)),
		Total:     res.Total,
		Page:      res.Page,
		PageSize:  res.PageSize,
	}
	for i := range res.Items {
		out.Documents = append(out.Documents, newDocumentResponse(&res.Items[i]))
	}
	return out
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	IsPublic    *bool   `json:"is_public"`
}

type tagRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type authorRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Bio   *string `json:"bio"`
}

type retagResponse struct {
	TaskID string `json:"task_id"`
}

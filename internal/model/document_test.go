package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindFor(t *testing.T) {
	assert.Equal(t, KindPDF, KindFor(TypePDF))
	assert.Equal(t, KindText, KindFor(TypeText))
	assert.Equal(t, KindText, KindFor(TypeMarkdown))
	assert.Equal(t, KindText, KindFor(TypeHTML))
}

func TestSetPayload(t *testing.T) {
	d := &Document{Kind: KindPDF}
	d.SetPayload(&TextMetadata{Encoding: "utf-8"}, nil)

	assert.Nil(t, d.Text)
	if assert.NotNil(t, d.PDF) {
		assert.True(t, d.PDF.IsSearchable)
	}

	d = &Document{Kind: KindText}
	d.SetPayload(nil, &PDFMetadata{})
	assert.Nil(t, d.PDF)
	if assert.NotNil(t, d.Text) {
		assert.Equal(t, "utf-8", d.Text.Encoding)
	}
}

func TestPreview(t *testing.T) {
	preview := "hello"
	assert.Equal(t, "hello", (&Document{Kind: KindText, Text: &TextMetadata{ContentPreview: &preview}}).Preview())
	assert.Equal(t, "hello", (&Document{Kind: KindPDF, PDF: &PDFMetadata{TextPreview: &preview}}).Preview())
	assert.Equal(t, "", (&Document{Kind: KindPDF, Text: &TextMetadata{ContentPreview: &preview}}).Preview())
}

func TestAccess(t *testing.T) {
	d := &Document{OwnerID: "owner"}
	assert.True(t, d.CanRead("owner"))
	assert.False(t, d.CanRead("stranger"))
	assert.False(t, d.OwnedBy("stranger"))

	d.IsPublic = true
	assert.True(t, d.CanRead("stranger"))
	assert.False(t, d.OwnedBy("stranger"))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, StatusArchived.Valid())
	assert.False(t, DocumentStatus("deleted").Valid())
	assert.True(t, TypeHTML.Valid())
	assert.False(t, DocumentType("docx").Valid())
}

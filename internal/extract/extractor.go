package extract

import (
	"context"
	"io"

	"docstore/internal/logger"
	"docstore/internal/model"
)

// Extractor reads a stored file and produces the payload for its kind.
type Extractor struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Extractor {
	return &Extractor{log: log.Named("extract")}
}

// Extract returns exactly one non-nil payload, matching kind. Read failures
// yield the default payload for the kind.
func (e *Extractor) Extract(_ context.Context, kind model.PayloadKind, r io.Reader) (*model.TextMetadata, *model.PDFMetadata) {
	data, err := io.ReadAll(r)
	if err != nil {
		e.log.Warnw("extract_read_failed", "kind", kind, "error", err)
		if kind == model.KindPDF {
			return nil, degradedPDF()
		}
		return &model.TextMetadata{Encoding: EncodingBinary}, nil
	}

	if kind == model.KindPDF {
		meta := PDF(data)
		if meta.PageCount == nil {
			e.log.Warnw("pdf_extract_degraded", "size", len(data))
		}
		return nil, meta
	}
	return Text(data), nil
}

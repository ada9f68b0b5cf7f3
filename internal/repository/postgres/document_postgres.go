package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docstore/internal/database"
	"docstore/internal/model"
	"docstore/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
//
// Documents live in a single table; payload_kind decides which of the text_* or
// pdf_* column groups carries data.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `d.id, d.title, d.description, d.document_type, d.status,
	d.file_path, d.file_name, d.file_size, d.mime_type, d.checksum,
	d.is_public, d.download_count, d.owner_id, d.payload_kind,
	d.text_encoding, d.text_line_count, d.text_word_count, d.text_character_count,
	d.text_language, d.text_content_preview,
	d.pdf_page_count, d.pdf_version, d.pdf_is_encrypted, d.pdf_is_searchable,
	d.pdf_title, d.pdf_author, d.pdf_subject, d.pdf_creator, d.pdf_producer,
	d.pdf_creation_date, d.pdf_modification_date, d.pdf_text_preview,
	d.created_at, d.updated_at,
	COALESCE((SELECT MAX(v.version_number) FROM document_versions v WHERE v.document_id = d.id), 0) + 1`

const payloadColumns = `text_encoding, text_line_count, text_word_count, text_character_count,
	text_language, text_content_preview,
	pdf_page_count, pdf_version, pdf_is_encrypted, pdf_is_searchable,
	pdf_title, pdf_author, pdf_subject, pdf_creator, pdf_producer,
	pdf_creation_date, pdf_modification_date, pdf_text_preview`

// payloadArgs flattens the payload matching kind into the payloadColumns order.
// Columns of the other variant are written as NULL (or their defaults).
func payloadArgs(kind model.PayloadKind, text *model.TextMetadata, pdf *model.PDFMetadata) []any {
	args := make([]any, 0, 18)
	if kind == model.KindText && text != nil {
		args = append(args,
			text.Encoding, nullInt(text.LineCount), nullInt(text.WordCount), nullInt(text.CharacterCount),
			nullString(text.Language), nullString(text.ContentPreview),
		)
	} else {
		args = append(args, nil, nil, nil, nil, nil, nil)
	}
	if kind == model.KindPDF && pdf != nil {
		args = append(args,
			nullInt(pdf.PageCount), nullString(pdf.PDFVersion), pdf.IsEncrypted, pdf.IsSearchable,
			nullString(pdf.Title), nullString(pdf.Author), nullString(pdf.Subject),
			nullString(pdf.Creator), nullString(pdf.Producer),
			nullTime(pdf.CreationDate), nullTime(pdf.ModificationDate), nullString(pdf.TextPreview),
		)
	} else {
		args = append(args, nil, nil, false, true, nil, nil, nil, nil, nil, nil, nil, nil)
	}
	return args
}

func scanDocument(s scanner) (*model.Document, error) {
	var (
		d           model.Document
		description sql.NullString

		textEncoding, textLanguage, textPreview sql.NullString
		textLines, textWords, textChars         sql.NullInt64

		pdfPages                                    sql.NullInt64
		pdfVersion, pdfTitle, pdfAuthor, pdfSubject sql.NullString
		pdfCreator, pdfProducer, pdfPreview         sql.NullString
		pdfEncrypted, pdfSearchable                 bool
		pdfCreated, pdfModified                     sql.NullTime
	)
	if err := s.Scan(
		&d.ID, &d.Title, &description, &d.Type, &d.Status,
		&d.FilePath, &d.FileName, &d.FileSize, &d.MimeType, &d.Checksum,
		&d.IsPublic, &d.DownloadCount, &d.OwnerID, &d.Kind,
		&textEncoding, &textLines, &textWords, &textChars,
		&textLanguage, &textPreview,
		&pdfPages, &pdfVersion, &pdfEncrypted, &pdfSearchable,
		&pdfTitle, &pdfAuthor, &pdfSubject, &pdfCreator, &pdfProducer,
		&pdfCreated, &pdfModified, &pdfPreview,
		&d.CreatedAt, &d.UpdatedAt,
		&d.CurrentVersion,
	); err != nil {
		return nil, err
	}
	d.Description = stringPtr(description)

	switch d.Kind {
	case model.KindPDF:
		d.PDF = &model.PDFMetadata{
			PageCount:        intPtr(pdfPages),
			PDFVersion:       stringPtr(pdfVersion),
			IsEncrypted:      pdfEncrypted,
			IsSearchable:     pdfSearchable,
			Title:            stringPtr(pdfTitle),
			Author:           stringPtr(pdfAuthor),
			Subject:          stringPtr(pdfSubject),
			Creator:          stringPtr(pdfCreator),
			Producer:         stringPtr(pdfProducer),
			CreationDate:     timePtr(pdfCreated),
			ModificationDate: timePtr(pdfModified),
			TextPreview:      stringPtr(pdfPreview),
		}
	default:
		d.Kind = model.KindText
		d.Text = &model.TextMetadata{
			Encoding:       textEncoding.String,
			LineCount:      intPtr(textLines),
			WordCount:      intPtr(textWords),
			CharacterCount: intPtr(textChars),
			Language:       stringPtr(textLanguage),
			ContentPreview: stringPtr(textPreview),
		}
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	q := `
		INSERT INTO documents (id, title, description, document_type, status,
			file_path, file_name, file_size, mime_type, checksum,
			is_public, owner_id, payload_kind, ` + payloadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)
		RETURNING created_at, updated_at
	`
	args := []any{
		doc.ID, doc.Title, nullString(doc.Description), doc.Type, doc.Status,
		doc.FilePath, doc.FileName, doc.FileSize, doc.MimeType, doc.Checksum,
		doc.IsPublic, doc.OwnerID, doc.Kind,
	}
	args = append(args, payloadArgs(doc.Kind, doc.Text, doc.PDF)...)

	out := *doc
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	out.DownloadCount = 0
	out.CurrentVersion = 1
	return &out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents d WHERE d.id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

// List returns documents using LIMIT/OFFSET pagination and a total count for the same filter.
func (r *DocumentPostgres) List(ctx context.Context, f repository.ListFilter) (*repository.PageResult[model.Document], error) {
	where, args := listWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents d`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	qList := fmt.Sprintf(`SELECT %s FROM documents d%s ORDER BY d.created_at DESC, d.id DESC LIMIT $%d OFFSET $%d`,
		documentColumns, where, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

func listWhere(f repository.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		conds = append(conds, fmt.Sprintf("d.owner_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("d.status = $%d", len(args)))
	}
	if f.Type != nil {
		args = append(args, *f.Type)
		conds = append(conds, fmt.Sprintf("d.document_type = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update applies the non-nil fields of p and returns the fresh row.
func (r *DocumentPostgres) Update(ctx context.Context, id string, p repository.DocumentPatch) (*model.Document, error) {
	const q = `
		UPDATE documents SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			status      = COALESCE($4, status),
			is_public   = COALESCE($5, is_public),
			updated_at  = now()
		WHERE id = $1
	`
	var status, isPublic any
	if p.Status != nil {
		status = string(*p.Status)
	}
	if p.IsPublic != nil {
		isPublic = *p.IsPublic
	}
	res, err := r.db.ExecContext(ctx, q, id, nullString(p.Title), nullString(p.Description), status, isPublic)
	if err != nil {
		return nil, translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// AppendVersion locks the document row, records its current file state as
// version max+1 and overwrites the live file state, all in one transaction.
// The row lock serializes concurrent re-uploads of the same document. The
// document type set at first upload is left as it is.
func (r *DocumentPostgres) AppendVersion(ctx context.Context, nv repository.NewVersion) (*model.DocumentVersion, error) {
	v := model.DocumentVersion{
		DocumentID:    nv.DocumentID,
		ChangeSummary: nv.ChangeSummary,
	}
	if nv.CreatedBy != "" {
		createdBy := nv.CreatedBy
		v.CreatedBy = &createdBy
	}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const qLock = `SELECT file_path, file_size, checksum FROM documents WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRowContext(ctx, qLock, nv.DocumentID).Scan(&v.FilePath, &v.FileSize, &v.Checksum); err != nil {
			return translate(err)
		}

		const qNext = `SELECT COALESCE(MAX(version_number), 0) + 1 FROM document_versions WHERE document_id = $1`
		if err := tx.QueryRowContext(ctx, qNext, nv.DocumentID).Scan(&v.VersionNumber); err != nil {
			return err
		}

		const qInsert = `
			INSERT INTO document_versions (document_id, version_number, file_path, file_size, checksum, change_summary, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`
		if err := tx.QueryRowContext(ctx, qInsert,
			v.DocumentID, v.VersionNumber, v.FilePath, v.FileSize, v.Checksum,
			nullString(v.ChangeSummary), nullString(v.CreatedBy),
		).Scan(&v.ID, &v.CreatedAt); err != nil {
			return translate(err)
		}

		qUpdate := `
			UPDATE documents SET
				file_path = $2, file_name = $3, file_size = $4,
				mime_type = $5, checksum = $6, updated_at = now(),
				(` + payloadColumns + `) = ($7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
			WHERE id = $1
		`
		f := nv.File
		args := []any{nv.DocumentID, f.FilePath, f.FileName, f.FileSize, f.MimeType, f.Checksum}
		args = append(args, payloadArgs(f.Kind, f.Text, f.PDF)...)
		if _, err := tx.ExecContext(ctx, qUpdate, args...); err != nil {
			return translate(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVersions returns all snapshots of a document ordered from newest to oldest.
func (r *DocumentPostgres) ListVersions(ctx context.Context, documentID string) ([]model.DocumentVersion, error) {
	const q = `
		SELECT id, document_id, version_number, file_path, file_size, checksum, change_summary, created_by, created_at
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version_number DESC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.DocumentVersion, 0)
	for rows.Next() {
		var (
			v                        model.DocumentVersion
			changeSummary, createdBy sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &v.FilePath, &v.FileSize,
			&v.Checksum, &changeSummary, &createdBy, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.ChangeSummary = stringPtr(changeSummary)
		v.CreatedBy = stringPtr(createdBy)
		out = append(out, v)
	}
	return out, rows.Err()
}

// IncrementDownloads bumps download_count by one.
func (r *DocumentPostgres) IncrementDownloads(ctx context.Context, id string) error {
	const q = `UPDATE documents SET download_count = download_count + 1 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

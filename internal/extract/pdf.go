package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docstore/internal/model"
)

var headerVersion = regexp.MustCompile(`^%PDF-(\d+\.\d+)`)

// PDF reports page count, encryption, header version, info dictionary fields
// and a text preview. Pages whose text cannot be extracted are skipped. When
// the file cannot be parsed at all the result is degraded: unknown page count,
// not encrypted, assumed searchable.
func PDF(data []byte) *model.PDFMetadata {
	meta := degradedPDF()
	meta.PDFVersion = pdfVersion(data)

	pages, pcErr := pageCount(data)

	r, err := openPDF(data)
	if err != nil {
		if pcErr == nil {
			meta.PageCount = &pages
		}
		return meta
	}
	if pcErr != nil {
		pages = r.NumPage()
	}
	meta.PageCount = &pages

	trailer := r.Trailer()
	meta.IsEncrypted = !trailer.Key("Encrypt").IsNull()

	info := trailer.Key("Info")
	meta.Title = infoString(info, "Title")
	meta.Author = infoString(info, "Author")
	meta.Subject = infoString(info, "Subject")
	meta.Creator = infoString(info, "Creator")
	meta.Producer = infoString(info, "Producer")
	meta.CreationDate = infoDate(info, "CreationDate")
	meta.ModificationDate = infoDate(info, "ModDate")

	texts := pageTexts(r)
	meta.IsSearchable = len(texts) > 0
	meta.TextPreview = preview(strings.Join(texts, "\n"))

	return meta
}

func degradedPDF() *model.PDFMetadata {
	return &model.PDFMetadata{IsEncrypted: false, IsSearchable: true}
}

func pdfVersion(data []byte) *string {
	m := headerVersion.FindSubmatch(data)
	if m == nil {
		return nil
	}
	v := string(m[1])
	return &v
}

// pageCount asks pdfcpu first; it validates the cross-reference structure more
// strictly than the text reader does.
func pageCount(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}

func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("pdf reader panic: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// pageTexts returns the non-blank text of every page that could be read.
func pageTexts(r *pdf.Reader) []string {
	var texts []string
	for i := 1; i <= r.NumPage(); i++ {
		text, ok := pageText(r, i)
		if ok && strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func pageText(r *pdf.Reader, i int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()
	p := r.Page(i)
	if p.V.IsNull() {
		return "", false
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return text, true
}

func infoString(info pdf.Value, key string) *string {
	v := info.Key(key)
	if v.IsNull() {
		return nil
	}
	s := strings.TrimSpace(v.Text())
	if s == "" {
		return nil
	}
	return &s
}

func infoDate(info pdf.Value, key string) *time.Time {
	s := infoString(info, key)
	if s == nil {
		return nil
	}
	t, ok := parsePDFDate(*s)
	if !ok {
		return nil
	}
	return &t
}

// parsePDFDate understands the PDF date format D:YYYYMMDDHHmmSSOHH'mm'.
// Every component after the year is optional.
func parsePDFDate(s string) (time.Time, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "D:")
	digits := 0
	for digits < len(s) && digits < 14 && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits < 4 {
		return time.Time{}, false
	}

	parts := []int{0, 1, 1, 0, 0, 0}
	widths := []int{4, 2, 2, 2, 2, 2}
	pos := 0
	for i, w := range widths {
		if pos+w > digits {
			break
		}
		v, err := strconv.Atoi(s[pos : pos+w])
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = v
		pos += w
	}

	loc := time.UTC
	rest := s[pos:]
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		zone := strings.ReplaceAll(rest[1:], "'", "")
		if len(zone) >= 2 {
			hh, err1 := strconv.Atoi(zone[:2])
			mm := 0
			var err2 error
			if len(zone) >= 4 {
				mm, err2 = strconv.Atoi(zone[2:4])
			}
			if err1 == nil && err2 == nil {
				offset := hh*3600 + mm*60
				if rest[0] == '-' {
					offset = -offset
				}
				loc = time.FixedZone("", offset)
			}
		}
	}

	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, loc), true
}

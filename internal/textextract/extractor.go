// Package textextract turns uploaded claim files into raw text.
package textextract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"claimflow/internal/domain"
)

// Extractor implements port.TextExtractor for plain text and PDFs with a text layer.
// Scanned images have no text layer and are reported as ErrNoTextLayer.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, doc domain.RawDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Text) != "" {
		return doc.Text, nil
	}

	var (
		text string
		err  error
	)
	switch fileType(doc) {
	case domain.FileTypeTXT:
		text = plainText(doc.Content)
	case domain.FileTypePDF:
		text, err = pdfText(doc.Content)
	case domain.FileTypeJPG, domain.FileTypePNG:
		return "", fmt.Errorf("%s: %w", doc.FileName, domain.ErrNoTextLayer)
	default:
		return "", fmt.Errorf("%s: %w", doc.FileName, domain.ErrUnsupportedFileType)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", doc.FileName, err)
	}
	if blank(text) {
		return "", fmt.Errorf("%s: %w", doc.FileName, domain.ErrEmptyText)
	}
	return text, nil
}

// fileType prefers the extension and falls back to the declared content type.
func fileType(doc domain.RawDocument) domain.FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(doc.FileName), "."))
	if ft, ok := domain.AllowedExtensions[ext]; ok {
		return ft
	}
	ct := strings.TrimSpace(strings.SplitN(doc.ContentType, ";", 2)[0])
	if ft, ok := domain.AllowedContentTypes[strings.ToLower(ct)]; ok {
		return ft
	}
	if bytes.HasPrefix(doc.Content, []byte("%PDF-")) {
		return domain.FileTypePDF
	}
	return ""
}

// plainText decodes leniently: invalid byte runs become U+FFFD so
// Latin-1 or mixed encodings still reach extraction.
func plainText(b []byte) string {
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// blank reports text with nothing but whitespace and replacement characters.
func blank(text string) bool {
	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == utf8.RuneError
	}) == ""
}

func pdfText(b []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text layer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading pdf text layer: %w", err)
	}
	if strings.TrimSpace(buf.String()) == "" {
		return "", domain.ErrNoTextLayer
	}
	return buf.String(), nil
}

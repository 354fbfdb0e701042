package application

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/honeycarbs/jobboard-client/internal/domain"
)

// DefaultMaxFileSize is the upload ceiling when none is configured
const DefaultMaxFileSize int64 = 10 << 20

// Inspector opens a document and returns its page count
type Inspector func(content []byte) (int, error)

// Policy decides whether an upload may enter the application. Rejections are
// *domain.ValidationError and happen before any network call.
type Policy struct {
	MaxFileSize int64
	Extensions  []string
	Inspect     Inspector
}

// DefaultPolicy accepts PDF files up to maxSize bytes that parse as PDF
func DefaultPolicy(maxSize int64) Policy {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return Policy{
		MaxFileSize: maxSize,
		Extensions:  []string{".pdf"},
		Inspect:     PDFPageCount,
	}
}

// Check validates an upload by name, size and content
func (p Policy) Check(name string, content []byte) error {
	if strings.TrimSpace(name) == "" {
		return &domain.ValidationError{Field: "file_name", Msg: "file name is required"}
	}

	ext := strings.ToLower(filepath.Ext(name))
	if len(p.Extensions) > 0 && !containsFold(p.Extensions, ext) {
		return &domain.ValidationError{
			Field: "file_name",
			Msg:   fmt.Sprintf("%q is not an accepted file type (allowed: %s)", name, strings.Join(p.Extensions, ", ")),
		}
	}

	size := int64(len(content))
	if size == 0 {
		return &domain.ValidationError{Field: "content", Msg: "file is empty"}
	}
	if p.MaxFileSize > 0 && size > p.MaxFileSize {
		return &domain.ValidationError{
			Field: "content",
			Msg:   fmt.Sprintf("file is %d bytes, limit is %d", size, p.MaxFileSize),
		}
	}

	if p.Inspect != nil {
		pages, err := p.Inspect(content)
		if err != nil {
			return &domain.ValidationError{Field: "content", Msg: "file could not be read: " + err.Error()}
		}
		if pages < 1 {
			return &domain.ValidationError{Field: "content", Msg: "document has no pages"}
		}
	}

	return nil
}

// PDFPageCount parses content as a PDF document
func PDFPageCount(content []byte) (pages int, err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return r.NumPage(), nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

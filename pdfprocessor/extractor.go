package pdfprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrEmptyInput is reported when the upload has no bytes.
var ErrEmptyInput = errors.New("empty PDF data")

// PageSeparator joins page texts in the extracted document text.
const PageSeparator = "\n\n"

// ExtractionResult is the outcome of one extraction. Error is non-empty
// when the document could not be opened; TotalPages, Text and PageTexts are
// then zero values.
type ExtractionResult struct {
	// TotalPages is the page count of the document, regardless of the cap
	TotalPages int

	// Text is PageTexts joined with PageSeparator and trimmed
	Text string

	// PageTexts holds one entry per processed page; failed pages are ""
	PageTexts []string

	// FailedPages lists the 1-indexed pages whose text could not be read
	FailedPages []int

	Error string
}

// Failed reports whether the document could not be opened.
func (r *ExtractionResult) Failed() bool {
	return r.Error != ""
}

// pageSource is the view of a parsed document the extractor needs.
type pageSource interface {
	NumPage() int
	PageText(page int) (string, error)
}

type readerSource struct {
	r *pdf.Reader
}

func (s readerSource) NumPage() int {
	return s.r.NumPage()
}

func (s readerSource) PageText(page int) (string, error) {
	p := s.r.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func openReader(data []byte) (pageSource, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return readerSource{r: r}, nil
}

// Extractor pulls the text layer out of PDF documents held in memory.
type Extractor struct {
	open func([]byte) (pageSource, error)
}

// NewExtractor creates an Extractor backed by ledongthuc/pdf.
func NewExtractor() *Extractor {
	return &Extractor{open: openReader}
}

// ExtractBytes extracts the first maxPages pages of the document, or every
// page when maxPages is zero or negative. It never panics and never returns
// a Go error: structural problems are described in the result's Error field
// and unreadable pages contribute empty text.
func (e *Extractor) ExtractBytes(data []byte, maxPages int) (result *ExtractionResult) {
	if len(data) == 0 {
		return &ExtractionResult{Error: ErrEmptyInput.Error()}
	}

	defer func() {
		if r := recover(); r != nil {
			result = &ExtractionResult{Error: fmt.Sprintf("malformed PDF: %v", r)}
		}
	}()

	src, err := e.open(data)
	if err != nil {
		return &ExtractionResult{Error: fmt.Sprintf("failed to open PDF: %v", err)}
	}

	total := src.NumPage()
	n := normalizeMaxPages(maxPages, total)

	result = &ExtractionResult{
		TotalPages: total,
		PageTexts:  make([]string, 0, n),
	}
	// ledongthuc/pdf pages are 1-indexed
	for page := 1; page <= n; page++ {
		text, err := pageText(src, page)
		if err != nil {
			result.FailedPages = append(result.FailedPages, page)
			text = ""
		}
		result.PageTexts = append(result.PageTexts, text)
	}
	result.Text = strings.TrimSpace(strings.Join(result.PageTexts, PageSeparator))
	return result
}

// pageText reads one page, turning a parser panic into an error so the
// remaining pages are still processed.
func pageText(src pageSource, page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", page, r)
		}
	}()
	return src.PageText(page)
}

// Package extract turns uploaded documents into plain text.
package extract

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format is a supported document format.
type Format string

const (
	PDF  Format = "pdf"
	DOCX Format = "docx"
	HTML Format = "html"
	Text Format = "text"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ErrUnsupported is wrapped by ExtractionError for unknown formats.
var ErrUnsupported = errors.New("unsupported document format")

// ExtractionError reports a document that could not be turned into text.
type ExtractionError struct {
	Name   string
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("extract text from %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("extract text from %q (%s): %v", e.Name, e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Detect picks the format of a document from its file extension, falling
// back to content sniffing.
func Detect(name string, data []byte) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return PDF, true
	case ".docx":
		return DOCX, true
	case ".html", ".htm":
		return HTML, true
	case ".txt", ".md", ".text":
		return Text, true
	}

	contentType := http.DetectContentType(data)
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch mediaType {
	case "application/pdf":
		return PDF, true
	case "text/html":
		return HTML, true
	case "text/plain":
		return Text, true
	case docxMIME:
		return DOCX, true
	}
	return "", false
}

// FromMIME maps a MIME type to a Format.
func FromMIME(mime string) (Format, bool) {
	mediaType, _, _ := strings.Cut(mime, ";")
	switch strings.TrimSpace(strings.ToLower(mediaType)) {
	case "application/pdf":
		return PDF, true
	case docxMIME:
		return DOCX, true
	case "text/html":
		return HTML, true
	case "text/plain", "text/markdown":
		return Text, true
	}
	return "", false
}

// Document extracts the text of a document named name. Failures are always
// *ExtractionError.
func Document(name string, data []byte) (string, error) {
	format, ok := Detect(name, data)
	if !ok {
		return "", &ExtractionError{Name: name, Err: ErrUnsupported}
	}
	return As(format, name, data)
}

// As extracts text assuming the given format.
func As(format Format, name string, data []byte) (text string, err error) {
	defer func() {
		// The PDF reader panics on some malformed files.
		if r := recover(); r != nil {
			text, err = "", &ExtractionError{Name: name, Format: format, Err: fmt.Errorf("corrupted document: %v", r)}
		}
	}()

	switch format {
	case PDF:
		text, err = pdfText(data)
	case DOCX:
		text, err = docxText(data)
	case HTML:
		text, err = HTMLText(string(data), nil)
	case Text:
		if !utf8.Valid(data) {
			err = errors.New("text is not valid UTF-8")
		}
		text = string(data)
	default:
		err = ErrUnsupported
	}
	if err != nil {
		return "", &ExtractionError{Name: name, Format: format, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ExtractionError{Name: name, Format: format, Err: errors.New("document contains no text")}
	}
	return text, nil
}

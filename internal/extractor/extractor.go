// Package extractor converts raw document bytes into ordered plain-text
// page/unit sequences, one extractor per supported file format.
package extractor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFileType is returned for extensions outside the supported set,
	// before any parsing is attempted.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrExtractionFailed is returned when the source bytes cannot be parsed.
	ErrExtractionFailed = errors.New("failed to extract text")
)

// supportedExtensions is the set of file extensions the extractor handles.
var supportedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"docx": {},
	"md":   {},
}

// NormalizeExtension lowercases an extension and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// Supported reports whether the given file extension can be extracted.
func Supported(ext string) bool {
	_, ok := supportedExtensions[NormalizeExtension(ext)]
	return ok
}

// Extract converts raw document bytes into an ordered sequence of per-page
// (or per-unit) plain-text strings. PDFs produce one string per page; TXT,
// DOCX and MD produce a single-element sequence. Page numbering is owned by
// the caller and is 1-based.
//
// An all-empty sequence is a legal result here; the ingestion pipeline is
// responsible for treating it as "no text content".
func Extract(data []byte, ext string) ([]string, error) {
	switch NormalizeExtension(ext) {
	case "pdf":
		return extractPDF(data)
	case "txt":
		return []string{string(data)}, nil
	case "docx":
		return extractDOCX(data)
	case "md":
		return extractMarkdown(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
}

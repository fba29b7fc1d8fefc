package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF walks every page in order and joins each page's text tokens
// with single spaces. Page order is preserved; empty pages stay in the
// sequence as empty strings so page numbers remain stable.
func extractPDF(data []byte) (pages []string, err error) {
	// The pdf parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		var sb strings.Builder
		for _, token := range page.Content().Text {
			if token.S == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(token.S)
		}
		pages = append(pages, sb.String())
	}

	return pages, nil
}

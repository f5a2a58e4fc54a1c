// Package pdfpage wraps pdfcpu for the two PDF operations the pipeline
// needs: counting pages at upload time and carving out a single page for
// a vision call.
package pdfpage

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("counting pdf pages: %w", err)
	}
	return count, nil
}

// ExtractPage returns a single-page PDF containing only the requested
// 1-based page. The vision model accepts single-page PDFs directly, so no
// rasterization happens here.
func ExtractPage(data []byte, page int) ([]byte, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page number %d", page)
	}
	var buf bytes.Buffer
	if err := api.Trim(bytes.NewReader(data), &buf, []string{strconv.Itoa(page)}, nil); err != nil {
		return nil, fmt.Errorf("extracting pdf page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}

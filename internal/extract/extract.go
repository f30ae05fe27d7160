package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extractor turns raw document bytes into plain text plus a page count.
type Extractor interface {
	Extract(data []byte) (text string, pages int, err error)
}

// charsPerPageEstimate is used for formats with no native page concept.
const charsPerPageEstimate = 3000

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".docx": true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, pdfFallback bool) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: pdfFallback}, nil
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".csv":
		return &CSVExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// estimatePages approximates a page count for formats without real pages.
func estimatePages(textLen int) int {
	if textLen == 0 {
		return 1
	}
	pages := (textLen + charsPerPageEstimate - 1) / charsPerPageEstimate
	if pages < 1 {
		pages = 1
	}
	return pages
}

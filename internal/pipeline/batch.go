package pipeline

import (
	"strings"
	"unicode/utf8"
)

// Batch is a contiguous page range of a document processed as one unit
// through the conversion step. Markdown and Err are mutually exclusive
// outcomes written by the converter; on failure Markdown falls back to
// the raw Text so the stitcher never operates on a hole.
type Batch struct {
	Number    int
	StartPage int
	EndPage   int
	Text      string
	Markdown  string
	Err       error
}

// batchSeparator joins stitched batches.
const batchSeparator = "\n\n"

// SplitBatches divides text and its page count into batches of at most
// pagesPerBatch pages. Page ranges partition [1, numPages] contiguously;
// text is sliced proportionally by estimated characters per page, with
// the last batch absorbing any remainder. Zero pages yields zero batches.
func SplitBatches(text string, numPages, pagesPerBatch int) []Batch {
	if numPages <= 0 {
		return nil
	}
	if pagesPerBatch <= 0 {
		pagesPerBatch = 20
	}

	// ceil(len/numPages)
	charsPerPage := (len(text) + numPages - 1) / numPages

	numBatches := (numPages + pagesPerBatch - 1) / pagesPerBatch
	batches := make([]Batch, 0, numBatches)

	for i := 0; i < numBatches; i++ {
		startPage := i*pagesPerBatch + 1
		endPage := startPage + pagesPerBatch - 1
		if endPage > numPages {
			endPage = numPages
		}

		textStart := runeBoundary(text, (startPage-1)*charsPerPage)
		textEnd := endPage * charsPerPage
		if i == numBatches-1 || textEnd > len(text) {
			textEnd = len(text)
		} else {
			textEnd = runeBoundary(text, textEnd)
		}

		batches = append(batches, Batch{
			Number:    i + 1,
			StartPage: startPage,
			EndPage:   endPage,
			Text:      text[textStart:textEnd],
		})
	}

	return batches
}

// runeBoundary clamps i to [0, len(s)] and moves it back to the start of
// the rune it lands inside, so proportional cuts never split a UTF-8
// sequence. Adjacent batches cut at the same index stay contiguous.
func runeBoundary(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// Stitch reassembles batches in Number order into one document, taking
// each batch's converted markdown or, when conversion failed, its raw
// text. The input slice is already ordered by Number; conversion may
// finish out of order but stitching runs only after every batch resolved.
func Stitch(batches []Batch) string {
	parts := make([]string, 0, len(batches))
	for _, b := range batches {
		content := b.Markdown
		if content == "" {
			content = b.Text
		}
		if content == "" {
			continue
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, batchSeparator)
}

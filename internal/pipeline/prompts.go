package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mrafey292/smartpdf-sub000/internal/chunker"
)

const conversionPrompt = `Convert the following raw extracted document text into clean, well-structured markdown.

Rules:
- Normalize all headings to ATX syntax ("#", "##", "###") based on their apparent level
- Preserve the original wording of body text; fix only broken line wrapping and hyphenation artifacts
- Replace any image with a one-sentence textual description; do not keep image markup
- Replace any table with a short prose description of what it shows; do not keep table markup
- This text covers pages %d through %d. Insert the marker %s on its own line at each page boundary, starting with %s at the beginning of the first page and incrementing by one per page
- Output ONLY the markdown, with no commentary and no code fences`

// buildConversionPrompt assembles the conversion request for one batch.
func buildConversionPrompt(b Batch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, conversionPrompt,
		b.StartPage, b.EndPage,
		"<!-- page:N -->",
		chunker.PageMarker(b.StartPage),
	)
	sb.WriteString("\n\n---\n")
	sb.WriteString(b.Text)
	return sb.String()
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:markdown|md)?\\s*(.*?)\\s*```$")

// stripFence removes a wrapping markdown code fence, which models add
// despite instructions often enough to matter.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

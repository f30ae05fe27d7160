package chunker

import (
	"fmt"
	"regexp"
	"strconv"
)

// Page-break markers are embedded in converted markdown as HTML comments,
// one per page boundary, so they survive rendering unseen.
var pageMarkerRe = regexp.MustCompile(`<!--\s*page:(\d+)\s*-->`)

// PageMarker renders the page-break marker for page n.
func PageMarker(n int) string {
	return fmt.Sprintf("<!-- page:%d -->", n)
}

// PageForOffset returns the page number of the last page marker that occurs
// before offset in doc, or 1 if none precedes it. A linear scan over marker
// occurrences is fine at the scale this runs at (hundreds of chunks).
func PageForOffset(doc string, offset int) int {
	page := 1
	for _, m := range pageMarkerRe.FindAllStringSubmatchIndex(doc, -1) {
		if m[0] >= offset {
			break
		}
		if n, err := strconv.Atoi(doc[m[2]:m[3]]); err == nil {
			page = n
		}
	}
	return page
}

// CountPageMarkers reports how many page markers doc contains.
func CountPageMarkers(doc string) int {
	return len(pageMarkerRe.FindAllStringIndex(doc, -1))
}

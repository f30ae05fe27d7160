package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func TestPageForOffset(t *testing.T) {
	doc := "intro before any marker\n\n" +
		"<!-- page:1 -->\n\nfirst page text\n\n" +
		"<!-- page:2 -->\n\nsecond page text\n\n" +
		"<!--  page:37  -->\n\nspaced marker text"

	cases := []struct {
		name   string
		offset int
		want   int
	}{
		{"before first marker", 0, 1},
		{"inside first page", strings.Index(doc, "first page"), 1},
		{"inside second page", strings.Index(doc, "second page"), 2},
		{"marker with inner spaces", strings.Index(doc, "spaced marker"), 37},
		{"at a marker start", strings.Index(doc, "<!-- page:2 -->"), 1},
		{"end of document", len(doc), 37},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PageForOffset(doc, tc.offset); got != tc.want {
				t.Errorf("PageForOffset(%d) = %d, want %d", tc.offset, got, tc.want)
			}
		})
	}
}

func TestPageForOffset_NoMarkers(t *testing.T) {
	doc := "a document that was never converted, so it has no markers at all"
	for _, off := range []int{0, len(doc) / 2, len(doc)} {
		if got := PageForOffset(doc, off); got != 1 {
			t.Errorf("PageForOffset(%d) = %d, want 1", off, got)
		}
	}
}

func TestPageAttribution_MonotonicAcrossChunks(t *testing.T) {
	var sb strings.Builder
	for p := 1; p <= 12; p++ {
		fmt.Fprintf(&sb, "%s\n\n## Part %d\n\n%s\n\n", PageMarker(p), p, strings.Repeat("text ", 30))
	}
	doc := sb.String()

	chunks := Split(doc, 200)
	if len(chunks) < 12 {
		t.Fatalf("expected at least one chunk per page, got %d", len(chunks))
	}

	prev := 0
	for i, c := range chunks {
		page := PageForOffset(doc, c.StartChar)
		if page < prev {
			t.Errorf("chunk %d: page %d after page %d, attribution went backwards", i, page, prev)
		}
		prev = page
	}
}

func TestPageMarkerRoundTrip(t *testing.T) {
	doc := PageMarker(1) + "\nx\n" + PageMarker(2) + "\ny\n" + PageMarker(3)
	if got := CountPageMarkers(doc); got != 3 {
		t.Errorf("CountPageMarkers = %d, want 3", got)
	}
	if got := PageForOffset(doc, len(doc)); got != 3 {
		t.Errorf("last page = %d, want 3", got)
	}
}

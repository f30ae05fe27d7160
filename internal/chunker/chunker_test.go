package chunker

import (
	"strings"
	"testing"
)

func para(word string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = word
	}
	return strings.Join(parts, " ")
}

func TestSplit_EmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "   \n\n  \t"} {
		if got := Split(doc, 1000); got != nil {
			t.Errorf("Split(%q) = %d chunks, want none", doc, len(got))
		}
	}
}

func TestSplit_SmallSectionIsOneChunk(t *testing.T) {
	doc := "# Title\n\nA single short paragraph."
	chunks := Split(doc, 1000)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Heading != "Title" {
		t.Errorf("heading = %q, want %q", c.Heading, "Title")
	}
	if doc[c.StartChar:c.EndChar] != c.Text {
		t.Errorf("offsets do not reproduce the chunk text")
	}
}

func TestSplit_RespectsSizeBudget(t *testing.T) {
	const max = 200
	var sb strings.Builder
	sb.WriteString("# Section\n\n")
	for i := 0; i < 12; i++ {
		sb.WriteString(para("word", 15)) // ~74 chars
		sb.WriteString("\n\n")
	}
	doc := sb.String()

	for _, c := range Split(doc, max) {
		if len(c.Text) > max {
			t.Errorf("chunk of %d chars exceeds budget %d", len(c.Text), max)
		}
	}
}

func TestSplit_OversizedParagraphEmittedWhole(t *testing.T) {
	const max = 100
	big := para("sentence", 40) // well over max, no blank lines inside
	doc := "# H\n\nshort one\n\n" + big + "\n\nshort two"

	chunks := Split(doc, max)

	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, big) {
			found = true
			if c.Text != big {
				t.Errorf("oversized paragraph was merged with neighbors")
			}
		}
	}
	if !found {
		t.Fatalf("oversized paragraph missing from %d chunks", len(chunks))
	}
}

func TestSplit_CoversAllContent(t *testing.T) {
	doc := "Intro text before any heading.\n\n" +
		"# First\n\n" + para("alpha", 30) + "\n\n" + para("beta", 30) + "\n\n" +
		"## Nested\n\nshort\n\n" +
		"# Second\n\n" + para("gamma", 80)

	chunks := Split(doc, 150)

	// Concatenated chunk spans must cover every non-space character of the
	// document, in order.
	var got strings.Builder
	prevEnd := 0
	for i, c := range chunks {
		if c.StartChar < prevEnd {
			t.Errorf("chunk %d overlaps previous (start %d < prev end %d)", i, c.StartChar, prevEnd)
		}
		if gap := doc[prevEnd:c.StartChar]; strings.TrimSpace(gap) != "" {
			t.Errorf("content lost between chunks: %q", gap)
		}
		got.WriteString(c.Text)
		prevEnd = c.EndChar
	}
	if tail := doc[prevEnd:]; strings.TrimSpace(tail) != "" {
		t.Errorf("content lost after last chunk: %q", tail)
	}

	strip := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}
	if strip(got.String()) != strip(doc) {
		t.Errorf("chunk texts do not cover the document")
	}
}

func TestSplit_HeadingAttribution(t *testing.T) {
	doc := "preamble\n\n# One\n\nfirst body\n\n# Two\n\nsecond body\n\n### Deep\n\nthird body"
	chunks := Split(doc, 1000)

	wantHeadings := map[string]string{
		"preamble":    "",
		"first body":  "One",
		"second body": "Two",
		"third body":  "Deep",
	}
	for body, want := range wantHeadings {
		found := false
		for _, c := range chunks {
			if strings.Contains(c.Text, body) {
				found = true
				if c.Heading != want {
					t.Errorf("chunk with %q has heading %q, want %q", body, c.Heading, want)
				}
			}
		}
		if !found {
			t.Errorf("no chunk contains %q", body)
		}
	}
}

func TestSplit_HeadingLineStaysWithItsSection(t *testing.T) {
	doc := "# Alpha\n\nbody a\n\n# Beta\n\nbody b"
	for _, c := range Split(doc, 1000) {
		if strings.Contains(c.Text, "# Beta") && !strings.Contains(c.Text, "body b") {
			t.Errorf("heading separated from its section body: %q", c.Text)
		}
	}
}

func TestSplit_DefaultBudget(t *testing.T) {
	big := para("word", 400) // ~2000 chars, over the default budget
	doc := "# H\n\n" + big
	chunks := Split(doc, 0)

	found := false
	for _, c := range chunks {
		if c.Text == big {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized paragraph not emitted whole under default budget")
	}
}

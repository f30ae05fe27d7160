package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxChunkSize is the retrieval chunk budget in characters.
const DefaultMaxChunkSize = 1000

// Chunk is a retrieval-sized span of the stitched document. StartChar and
// EndChar are offsets into the document it was cut from.
type Chunk struct {
	Text      string
	StartChar int
	EndChar   int
	Heading   string
}

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

// Split cuts markdown into chunks of at most maxChunkSize characters,
// respecting heading and paragraph boundaries. A single paragraph larger
// than the budget is emitted whole rather than cut mid-sentence. Chunks
// partition the document with only whitespace between them.
func Split(doc string, maxChunkSize int) []Chunk {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if strings.TrimSpace(doc) == "" {
		return nil
	}

	var chunks []Chunk
	for _, sec := range splitSections(doc) {
		chunks = append(chunks, chunkSection(doc, sec, maxChunkSize)...)
	}
	return chunks
}

type section struct {
	heading string
	start   int
	end     int
}

// splitSections cuts the document at heading lines. A heading line belongs
// to the section it opens; text before the first heading forms a section
// with no heading.
func splitSections(doc string) []section {
	var sections []section
	cur := section{start: 0}

	lineStart := 0
	for lineStart < len(doc) {
		lineEnd := strings.IndexByte(doc[lineStart:], '\n')
		var next int
		if lineEnd < 0 {
			lineEnd = len(doc)
			next = lineEnd
		} else {
			lineEnd += lineStart
			next = lineEnd + 1
		}

		if m := headingRe.FindStringSubmatch(doc[lineStart:lineEnd]); m != nil {
			if lineStart > cur.start && strings.TrimSpace(doc[cur.start:lineStart]) != "" {
				cur.end = lineStart
				sections = append(sections, cur)
			}
			cur = section{heading: strings.TrimSpace(m[2]), start: lineStart}
		}

		lineStart = next
	}

	cur.end = len(doc)
	if strings.TrimSpace(doc[cur.start:cur.end]) != "" {
		sections = append(sections, cur)
	}
	return sections
}

func chunkSection(doc string, sec section, max int) []Chunk {
	start, end := trimSpan(doc, sec.start, sec.end)
	if start >= end {
		return nil
	}

	if end-start <= max {
		return []Chunk{{Text: doc[start:end], StartChar: start, EndChar: end, Heading: sec.heading}}
	}

	var chunks []Chunk
	curStart, curEnd := -1, -1
	flush := func() {
		if curStart >= 0 {
			chunks = append(chunks, Chunk{Text: doc[curStart:curEnd], StartChar: curStart, EndChar: curEnd, Heading: sec.heading})
			curStart, curEnd = -1, -1
		}
	}

	for _, p := range paragraphSpans(doc, start, end) {
		if p.end-p.start > max {
			// Oversized paragraph: emit whole, never cut mid-sentence.
			flush()
			chunks = append(chunks, Chunk{Text: doc[p.start:p.end], StartChar: p.start, EndChar: p.end, Heading: sec.heading})
			continue
		}
		if curStart < 0 {
			curStart, curEnd = p.start, p.end
			continue
		}
		if p.end-curStart > max {
			flush()
			curStart, curEnd = p.start, p.end
		} else {
			curEnd = p.end
		}
	}
	flush()
	return chunks
}

type span struct {
	start int
	end   int
}

// paragraphSpans finds blank-line-delimited paragraph spans within
// doc[start:end], trimmed of surrounding whitespace.
func paragraphSpans(doc string, start, end int) []span {
	var spans []span
	pStart := -1

	lineStart := start
	for lineStart < end {
		lineEnd := strings.IndexByte(doc[lineStart:end], '\n')
		var next int
		if lineEnd < 0 {
			lineEnd = end
			next = end
		} else {
			lineEnd += lineStart
			next = lineEnd + 1
		}

		if strings.TrimSpace(doc[lineStart:lineEnd]) == "" {
			if pStart >= 0 {
				if s, e := trimSpan(doc, pStart, lineStart); s < e {
					spans = append(spans, span{s, e})
				}
				pStart = -1
			}
		} else if pStart < 0 {
			pStart = lineStart
		}

		lineStart = next
	}
	if pStart >= 0 {
		if s, e := trimSpan(doc, pStart, end); s < e {
			spans = append(spans, span{s, e})
		}
	}
	return spans
}

func trimSpan(doc string, start, end int) (int, int) {
	for start < end && isSpace(doc[start]) {
		start++
	}
	for end > start && isSpace(doc[end-1]) {
		end--
	}
	return start, end
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

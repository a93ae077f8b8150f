package service

import (
	"strings"
	"unicode"

	"github.com/cloo-solutions/linkdigest/internal/domain"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Splitter cuts fragments into overlapping rune windows. Chunks are exact
// substrings of their fragment, so dropping each chunk's leading
// OverlapWithPrevious runes and concatenating restores the fragment.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// NewSplitter normalizes size and overlap. Non-positive sizes use the
// defaults; an overlap that does not fit inside a chunk is reduced.
func NewSplitter(size, overlap int) Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 5
	}
	return Splitter{ChunkSize: size, Overlap: overlap}
}

// Split chunks every fragment in order. Blank fragments yield nothing.
func (s Splitter) Split(fragments []domain.ContentFragment) []domain.TextChunk {
	s = NewSplitter(s.ChunkSize, s.Overlap)

	var chunks []domain.TextChunk
	for fi, f := range fragments {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		for _, w := range s.windows([]rune(f.Text)) {
			chunks = append(chunks, domain.TextChunk{
				Text:                w.text,
				Index:               len(chunks),
				SourceFragmentIndex: fi,
				OverlapWithPrevious: w.overlap,
			})
		}
	}
	return chunks
}

type window struct {
	text    string
	overlap int
}

func (s Splitter) windows(runes []rune) []window {
	n := len(runes)
	if n <= s.ChunkSize {
		return []window{{text: string(runes)}}
	}

	out := make([]window, 0, n/(s.ChunkSize-s.Overlap)+1)
	start, overlap := 0, 0
	for {
		end := start + s.ChunkSize
		if end >= n {
			out = append(out, window{text: string(runes[start:]), overlap: overlap})
			return out
		}

		cut := s.cut(runes, start, end)
		out = append(out, window{text: string(runes[start:cut]), overlap: overlap})

		next := s.nextStart(runes, start, cut)
		overlap = cut - next
		start = next
	}
}

// cut picks where the window [start, end) ends. A boundary must leave the
// next window starting after start, so it has to lie beyond start+Overlap.
func (s Splitter) cut(runes []rune, start, end int) int {
	minCut := start + s.Overlap + 1

	// paragraph break
	for k := end - 2; k >= start && k+2 >= minCut; k-- {
		if runes[k] == '\n' && runes[k+1] == '\n' {
			return k + 2
		}
	}
	// line break
	for k := end - 1; k >= start && k+1 >= minCut; k-- {
		if runes[k] == '\n' {
			return k + 1
		}
	}
	// sentence end
	for k := end - 2; k >= start && k+2 >= minCut; k-- {
		if isSentenceEnd(runes[k]) && unicode.IsSpace(runes[k+1]) {
			return k + 2
		}
	}
	// whitespace in the back half
	half := start + s.ChunkSize/2
	if half < minCut {
		half = minCut
	}
	for k := end - 1; k >= start && k+1 >= half; k-- {
		if unicode.IsSpace(runes[k]) {
			return k + 1
		}
	}
	return end
}

// nextStart backs up Overlap runes from cut and moves forward to the first
// word start inside the overlap, if there is one.
func (s Splitter) nextStart(runes []rune, start, cut int) int {
	if s.Overlap == 0 {
		return cut
	}
	next := cut - s.Overlap
	if next <= start {
		next = start + 1
	}
	for j := next; j < cut; j++ {
		if j > 0 && unicode.IsSpace(runes[j-1]) && !unicode.IsSpace(runes[j]) {
			return j
		}
	}
	return next
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

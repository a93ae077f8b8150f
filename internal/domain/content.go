package domain

import "strings"

// Fragment metadata keys
const (
	MetaSource   = "source"
	MetaTitle    = "title"
	MetaAuthor   = "author"
	MetaVideoID  = "video_id"
	MetaSiteName = "site_name"
	MetaLanguage = "language"
)

// ContentFragment is one piece of loaded content, in document order.
type ContentFragment struct {
	Text     string
	Metadata map[string]string
}

// NewContentFragment creates a fragment, dropping empty metadata values.
func NewContentFragment(text string, metadata map[string]string) ContentFragment {
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if v = strings.TrimSpace(v); v != "" {
			meta[k] = v
		}
	}
	return ContentFragment{Text: text, Metadata: meta}
}

// Title returns the fragment title metadata, if any.
func (f ContentFragment) Title() string {
	return f.Metadata[MetaTitle]
}

// TextChunk is a window over a fragment's text.
// OverlapWithPrevious counts the leading runes shared with the previous chunk
// of the same fragment.
type TextChunk struct {
	Text                string
	Index               int
	SourceFragmentIndex int
	OverlapWithPrevious int
}

// EmbeddedChunk pairs a chunk with its embedding vector.
type EmbeddedChunk struct {
	Chunk  TextChunk
	Vector []float32
}

// FragmentTexts returns the text of every fragment.
func FragmentTexts(fragments []ContentFragment) []string {
	texts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		texts = append(texts, f.Text)
	}
	return texts
}

// ChunkTexts returns the text of every chunk.
func ChunkTexts(chunks []TextChunk) []string {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return texts
}

// ReassembleChunks concatenates the non-overlapping part of each chunk
// belonging to fragmentIndex.
func ReassembleChunks(chunks []TextChunk, fragmentIndex int) string {
	var sb strings.Builder
	for _, c := range chunks {
		if c.SourceFragmentIndex != fragmentIndex {
			continue
		}
		runes := []rune(c.Text)
		if c.OverlapWithPrevious > len(runes) {
			continue
		}
		sb.WriteString(string(runes[c.OverlapWithPrevious:]))
	}
	return sb.String()
}
